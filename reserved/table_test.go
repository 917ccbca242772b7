package reserved

import (
	"testing"

	"github.com/handshake-labs/nsd/namehash"
	"github.com/stretchr/testify/require"
)

func hashFor(b byte) [32]byte {
	var h [32]byte
	h[0] = b
	return h
}

func TestTableHasAndGetByHash(t *testing.T) {
	table := NewTable(100, 10, 5, []Entry{
		{Hash: hashFor(3), Target: "c.com."},
		{Hash: hashFor(1), Target: "a.com."},
		{Hash: hashFor(2), Target: "b.com."},
	})

	require.Equal(t, 3, table.Len())

	for _, b := range []byte{1, 2, 3} {
		require.True(t, table.Has(hashFor(b)))
		entry, ok := table.Get(hashFor(b))
		require.True(t, ok)
		require.Equal(t, hashFor(b), entry.Hash)
	}

	require.False(t, table.Has(hashFor(9)))
	_, ok := table.Get(hashFor(9))
	require.False(t, ok)
}

func TestTableGetByName(t *testing.T) {
	table := NewTable(0, 0, 0, []Entry{
		{Hash: namehash.Hash([]byte("cloudflare")), Target: "cloudflare.com."},
	})

	require.True(t, table.HasByName("cloudflare"))
	entry, ok := table.GetByName("cloudflare")
	require.True(t, ok)
	require.Equal(t, "cloudflare.com.", entry.Target)

	require.False(t, table.HasByName("nowhere"))
}

func TestEntryValueFormula(t *testing.T) {
	table := NewTable(100, 50, 25, []Entry{
		{Hash: hashFor(1), Flags: 0},
		{Hash: hashFor(2), Flags: FlagRootTLD},
		{Hash: hashFor(3), Flags: FlagTop100},
		{Hash: hashFor(4), Flags: FlagRootTLD | FlagTop100},
		{Hash: hashFor(5), Flags: FlagCustom, entryValue: 1000},
		{Hash: hashFor(6), Flags: FlagRootTLD | FlagZeroValue},
	})

	get := func(b byte) uint64 {
		e, ok := table.Get(hashFor(b))
		require.True(t, ok)
		return e.Value(table)
	}

	require.EqualValues(t, 100, get(1))
	require.EqualValues(t, 150, get(2))
	require.EqualValues(t, 125, get(3))
	require.EqualValues(t, 175, get(4))
	require.EqualValues(t, 1100, get(5))
	require.EqualValues(t, 0, get(6), "zero flag always reports zero regardless of other flags")
}

func TestParseRoundtripsAgainstBuiltTable(t *testing.T) {
	// Build a packed binary blob matching the layout documented in
	// spec.md §4.1 / reserved/table.go's Parse doc comment, and confirm
	// Parse reconstructs an equivalent table.
	entries := []struct {
		hash  [32]byte
		flags byte
		value uint64
		name  string
	}{
		{hashFor(1), FlagRootTLD, 0, "a.com."},
		{hashFor(2), FlagCustom, 42, "b.com."},
	}

	const nameValue, rootValue, topValue = 1000, 500, 250

	header := make([]byte, 28)
	putU32 := func(buf []byte, off int, v uint32) {
		buf[off] = byte(v)
		buf[off+1] = byte(v >> 8)
		buf[off+2] = byte(v >> 16)
		buf[off+3] = byte(v >> 24)
	}
	putU64 := func(buf []byte, off int, v uint64) {
		for i := 0; i < 8; i++ {
			buf[off+i] = byte(v >> (8 * i))
		}
	}

	putU32(header, 0, uint32(len(entries)))
	putU64(header, 4, nameValue)
	putU64(header, 12, rootValue)
	putU64(header, 20, topValue)

	indexSize := len(entries) * 36
	var section []byte
	index := make([]byte, indexSize)

	sectionBase := 28 + indexSize
	for i, e := range entries {
		ptr := sectionBase + len(section)

		off := i * 36
		copy(index[off:off+32], e.hash[:])
		putU32(index[off+32:off+36], 0, uint32(ptr))

		entryBytes := []byte{byte(len(e.name))}
		entryBytes = append(entryBytes, []byte(e.name)...)
		entryBytes = append(entryBytes, e.flags, 0)
		var valBuf [8]byte
		putU64(valBuf[:], 0, e.value)
		entryBytes = append(entryBytes, valBuf[:]...)

		section = append(section, entryBytes...)
	}

	blob := append(header, index...)
	blob = append(blob, section...)

	table, err := Parse(blob)
	require.NoError(t, err)
	require.Equal(t, len(entries), table.Len())

	for _, e := range entries {
		got, ok := table.Get(e.hash)
		require.True(t, ok)
		require.Equal(t, e.name, got.Target)
		require.Equal(t, e.flags, got.Flags)
	}
}

func TestParseRejectsTruncatedInput(t *testing.T) {
	_, err := Parse([]byte{1, 2, 3})
	require.Error(t, err)
}
