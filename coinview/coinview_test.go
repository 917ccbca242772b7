package coinview

import (
	"testing"

	"github.com/handshake-labs/nsd/auction"
	"github.com/stretchr/testify/require"
)

type fakeLoader struct {
	records map[[32]byte]*auction.Record
	calls   int
}

func (f *fakeLoader) GetAuction(nameHash [32]byte) (*auction.Record, error) {
	f.calls++
	return f.records[nameHash], nil
}

func TestTxnLoadsOnceAndReturnsSameTxnOnRepeatedTouch(t *testing.T) {
	loader := &fakeLoader{records: make(map[[32]byte]*auction.Record)}
	v := New(loader)

	var hash [32]byte
	hash[0] = 1

	first, err := v.Txn(hash)
	require.NoError(t, err)
	second, err := v.Txn(hash)
	require.NoError(t, err)

	require.Same(t, first, second)
	require.Equal(t, 1, loader.calls, "a second touch within the same view must not reload from the loader")
}

func TestTxnOfAbsentNameStartsFromNullRecord(t *testing.T) {
	loader := &fakeLoader{records: make(map[[32]byte]*auction.Record)}
	v := New(loader)

	var hash [32]byte
	txn, err := v.Txn(hash)
	require.NoError(t, err)
	require.True(t, txn.Record().IsNull())
}

func TestPeekDoesNotCreateAnEntry(t *testing.T) {
	loader := &fakeLoader{records: make(map[[32]byte]*auction.Record)}
	v := New(loader)

	var hash [32]byte
	_, err := v.Peek(hash)
	require.NoError(t, err)

	require.Empty(t, v.Flush(), "Peek alone must not register the name as touched")
}

func TestFlushReturnsTouchedNamesInTouchOrder(t *testing.T) {
	loader := &fakeLoader{records: make(map[[32]byte]*auction.Record)}
	v := New(loader)

	var a, b [32]byte
	a[0], b[0] = 1, 2

	txnA, err := v.Txn(a)
	require.NoError(t, err)
	txnA.SetHeight(5)

	txnB, err := v.Txn(b)
	require.NoError(t, err)
	txnB.SetHeight(10)

	touched := v.Flush()
	require.Len(t, touched, 2)
	require.Equal(t, a, touched[0].NameHash)
	require.Equal(t, b, touched[1].NameHash)
	require.Len(t, touched[0].Ops, 1)
}

func TestDiscardDropsAllAccumulatedMutations(t *testing.T) {
	loader := &fakeLoader{records: make(map[[32]byte]*auction.Record)}
	v := New(loader)

	var hash [32]byte
	_, err := v.Txn(hash)
	require.NoError(t, err)

	v.Discard()
	require.Empty(t, v.Flush())
}
