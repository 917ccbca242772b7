// Package reserved implements the static, binary-searched table of names
// reserved at genesis (spec.md §3, §4.1). The table is read-only once
// constructed and safe for concurrent readers without synchronization, per
// spec.md §5's "Global mutable reserved table → loaded-once, immutable
// shared handle" design note.
package reserved

import (
	"bytes"
	"encoding/binary"
	"sort"

	"github.com/handshake-labs/nsd/errors"
	"github.com/handshake-labs/nsd/namehash"
)

// Flag bits on a reserved-name entry (spec.md §4.1).
const (
	FlagRootTLD    byte = 0x01
	FlagTop100     byte = 0x02
	FlagCustom     byte = 0x04
	FlagZeroValue  byte = 0x08
)

// Entry is one row of the reserved-name table.
type Entry struct {
	Hash   [32]byte
	Target string
	Flags  byte

	// entryValue is the per-entry custom value, only meaningful when
	// FlagCustom is set.
	entryValue uint64
}

// Value computes the entry's effective reward value against the table's
// header-level constants, per spec.md §4.1's formula. A zero-flagged entry
// (used for embargoed jurisdictions) always reports zero regardless of its
// other flags.
func (e Entry) Value(t *Table) uint64 {
	if e.Flags&FlagZeroValue != 0 {
		return 0
	}

	v := t.nameValue
	if e.Flags&FlagRootTLD != 0 {
		v += t.rootValue
	}
	if e.Flags&FlagTop100 != 0 {
		v += t.topValue
	}
	if e.Flags&FlagCustom != 0 {
		v += e.entryValue
	}
	return v
}

// Table is the immutable, hash-sorted reserved-name table.
type Table struct {
	entries   []Entry
	byName    map[string]int
	nameValue uint64
	rootValue uint64
	topValue  uint64
}

// NewTable builds a Table from already-decoded entries, sorting them by hash
// and indexing them by name. Used both by Parse and directly by tests and
// network-specific genesis tables.
func NewTable(nameValue, rootValue, topValue uint64, entries []Entry) *Table {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return bytes.Compare(sorted[i].Hash[:], sorted[j].Hash[:]) < 0
	})

	byName := make(map[string]int, len(sorted))
	for i, e := range sorted {
		byName[e.Target] = i
	}

	return &Table{
		entries:   sorted,
		byName:    byName,
		nameValue: nameValue,
		rootValue: rootValue,
		topValue:  topValue,
	}
}

// Has reports whether hash belongs to a reserved name.
func (t *Table) Has(hash [32]byte) bool {
	_, ok := t.find(hash)
	return ok
}

// Get returns the entry for hash, if any.
func (t *Table) Get(hash [32]byte) (Entry, bool) {
	idx, ok := t.find(hash)
	if !ok {
		return Entry{}, false
	}
	return t.entries[idx], true
}

// HasByName reports whether name is reserved, hashing it first.
func (t *Table) HasByName(name string) bool {
	return t.Has(namehash.Hash([]byte(name)))
}

// GetByName returns the entry for name, if reserved.
func (t *Table) GetByName(name string) (Entry, bool) {
	return t.Get(namehash.Hash([]byte(name)))
}

// Len returns the number of reserved entries.
func (t *Table) Len() int {
	return len(t.entries)
}

// All returns every entry in hash-sorted order. Callers must not mutate the
// returned slice's elements by reference; Entry is a value type so copies
// returned here cannot corrupt the table.
func (t *Table) All() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t *Table) find(hash [32]byte) (int, bool) {
	i := sort.Search(len(t.entries), func(i int) bool {
		return bytes.Compare(t.entries[i].Hash[:], hash[:]) >= 0
	})
	if i < len(t.entries) && t.entries[i].Hash == hash {
		return i, true
	}
	return 0, false
}

// Parse decodes the packed binary layout of spec.md §4.1:
//
//	header:  size u32, nameValue u64, rootValue u64, topValue u64           (28 bytes)
//	index:   size * {sha3 32, ptr u32}                                      (36 bytes each)
//	section: {len u8, target bytes, flags u8, nameStart u8, value u64}      (variable, pointed to by ptr)
func Parse(data []byte) (*Table, error) {
	if len(data) < 28 {
		return nil, errors.NewStorageError("reserved table: truncated header")
	}

	size := binary.LittleEndian.Uint32(data[0:4])
	nameValue := binary.LittleEndian.Uint64(data[4:12])
	rootValue := binary.LittleEndian.Uint64(data[12:20])
	topValue := binary.LittleEndian.Uint64(data[20:28])

	indexStart := 28
	indexEnd := indexStart + int(size)*36
	if len(data) < indexEnd {
		return nil, errors.NewStorageError("reserved table: truncated index")
	}

	entries := make([]Entry, 0, size)
	for i := 0; i < int(size); i++ {
		off := indexStart + i*36
		var hash [32]byte
		copy(hash[:], data[off:off+32])
		ptr := binary.LittleEndian.Uint32(data[off+32 : off+36])

		entry, err := parseSectionEntry(data, int(ptr), hash)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return NewTable(nameValue, rootValue, topValue, entries), nil
}

func parseSectionEntry(data []byte, ptr int, hash [32]byte) (Entry, error) {
	if ptr < 0 || ptr >= len(data) {
		return Entry{}, errors.NewStorageError("reserved table: bad section pointer")
	}

	cur := data[ptr:]
	if len(cur) < 1 {
		return Entry{}, errors.NewStorageError("reserved table: truncated section entry")
	}

	targetLen := int(cur[0])
	cur = cur[1:]
	if len(cur) < targetLen+1+1+8 {
		return Entry{}, errors.NewStorageError("reserved table: truncated section entry body")
	}

	target := string(cur[:targetLen])
	cur = cur[targetLen:]

	flags := cur[0]
	// nameStart (cur[1]) marks where, within target, the bare label
	// begins (e.g. skipping a "www." prefix); the table only needs the
	// full target for lookups, so it is consumed but not retained here.
	cur = cur[2:]

	value := binary.LittleEndian.Uint64(cur[:8])

	return Entry{
		Hash:       hash,
		Target:     target,
		Flags:      flags,
		entryValue: value,
	}, nil
}
