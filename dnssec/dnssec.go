// Package dnssec declares the DNSSEC chain-validation interface the CLAIM
// admission path depends on (spec.md §1: "DNSSEC chain validation for claim
// proofs (assumed to expose verify/decode returning a canonical
// ProofData)"). No DNSSEC resolver is implemented here; callers supply a
// Verifier backed by a real resolver.
package dnssec

import (
	"time"

	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/crypto/blake2b"
)

// Verifier validates a DNSSEC proof chain for a claimed name and decodes it
// into a canonical ProofData the engine can reason about without knowing
// anything about DNS record types or signature algorithms.
type Verifier interface {
	// Verify checks proof's signature chain against name's delegation
	// path and, on success, decodes the embedded claim payload.
	Verify(name string, proof []byte) (*ProofData, error)
}

// CachingVerifier wraps a Verifier with a short-lived dedup cache, following
// blockvalidation's processSubtreeNotify pattern of avoiding repeat work on
// a proof a flood of relaying peers all resubmit (a CLAIM's proof is
// resubmitted with every mempool re-announce until it mines).
type CachingVerifier struct {
	inner Verifier
	cache *ttlcache.Cache[[32]byte, *ProofData]
}

// NewCachingVerifier returns a CachingVerifier memoizing inner's results for
// ttl per distinct (name, proof) pair.
func NewCachingVerifier(inner Verifier, ttl time.Duration) *CachingVerifier {
	c := ttlcache.New[[32]byte, *ProofData](ttlcache.WithTTL[[32]byte, *ProofData](ttl))
	go c.Start()
	return &CachingVerifier{inner: inner, cache: c}
}

// Verify returns the cached result for (name, proof) if still fresh,
// otherwise delegates to inner and caches a successful result; an error
// from inner is returned and not cached.
func (v *CachingVerifier) Verify(name string, proof []byte) (*ProofData, error) {
	key := cacheKey(name, proof)

	if item := v.cache.Get(key); item != nil {
		return item.Value(), nil
	}

	data, err := v.inner.Verify(name, proof)
	if err != nil {
		return nil, err
	}

	v.cache.Set(key, data, ttlcache.DefaultTTL)
	return data, nil
}

// Stop releases the cache's background eviction goroutine.
func (v *CachingVerifier) Stop() {
	v.cache.Stop()
}

func cacheKey(name string, proof []byte) [32]byte {
	h := blake2b.Sum256(append([]byte(name+"\x00"), proof...))
	return h
}

// ProofData is the canonical result of resolving a claim's DNSSEC chain,
// the shape spec.md §4.8 describes parseData as ultimately returning once
// target resolution and alias mapping are folded in.
type ProofData struct {
	Name       string
	Target     string
	Weak       bool
	Forked     bool
	Rollover   bool
	Inception  uint32
	Expiration uint32
	Fee        int64
	Value      int64
	Version    uint8
	Hash       []byte
}
