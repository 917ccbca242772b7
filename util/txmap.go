package util

import (
	"fmt"
	"sync"

	"github.com/dolthub/swiss"
)

type SwissMap struct {
	mu     sync.RWMutex
	m      *swiss.Map[[32]byte, struct{}]
	length int
}

func NewSwissMap(length int) *SwissMap {
	return &SwissMap{
		m: swiss.NewMap[[32]byte, struct{}](uint32(length)),
	}
}

func (s *SwissMap) Exists(hash [32]byte) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.m.Get(hash)
	return ok
}

func (s *SwissMap) Get(hash [32]byte) (uint64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.m.Get(hash)

	return 0, ok
}

func (s *SwissMap) Put(hash [32]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.length++

	s.m.Put(hash, struct{}{})
	return nil
}

func (s *SwissMap) Delete(hash [32]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.length--

	s.m.Delete(hash)
	return nil
}

func (s *SwissMap) Length() int {
	return s.length
}

// Range calls fn for every hash currently in the map, stopping early if fn
// returns false. Used by callers that need to walk a watch-set rather than
// just test membership (mempool's per-category eviction, for instance).
func (s *SwissMap) Range(fn func(hash [32]byte) bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	s.m.Iter(func(k [32]byte, _ struct{}) bool {
		return !fn(k)
	})
}

type SwissMapUint64 struct {
	mu     sync.Mutex
	m      *swiss.Map[[32]byte, uint64]
	length int
}

func NewSwissMapUint64(length int) *SwissMapUint64 {
	return &SwissMapUint64{
		m: swiss.NewMap[[32]byte, uint64](uint32(length)),
	}
}

func (s *SwissMapUint64) Exists(hash [32]byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.m.Get(hash)
	return ok
}

func (s *SwissMapUint64) Put(hash [32]byte, n uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	exists := s.m.Has(hash)
	if exists {
		return fmt.Errorf("hash already exists in map")
	}

	s.m.Put(hash, n)
	s.length++

	return nil
}

func (s *SwissMapUint64) Get(hash [32]byte) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.m.Get(hash)
	if !ok {
		return 0, false
	}

	return n, true
}

func (s *SwissMapUint64) Length() int {
	return s.length
}

// Delete removes hash from the map, if present.
func (s *SwissMapUint64) Delete(hash [32]byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.m.Get(hash); ok {
		s.m.Delete(hash)
		s.length--
	}
}

// Range calls fn for every (hash, value) pair currently in the map, stopping
// early if fn returns false.
func (s *SwissMapUint64) Range(fn func(hash [32]byte, n uint64) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.m.Iter(func(k [32]byte, v uint64) bool {
		return !fn(k, v)
	})
}
