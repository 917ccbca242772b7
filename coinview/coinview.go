// Package coinview implements the per-block auction accumulator of
// spec.md §4.6: a mutable mapping nameHash -> auction record that every
// transaction in a block shares while it connects, discarded wholesale if
// the block is rejected and flushed wholesale once it is accepted. It plays
// the role the teacher's stores/utxo/memory.Memory plays for UTXOs, with
// the same mutex-protected get-or-create shape, but keyed by name and
// backed by a loader instead of an always-present in-memory set.
package coinview

import (
	"sync"

	"github.com/handshake-labs/nsd/auction"
)

// Loader fetches a name's on-disk record, returning (nil, nil) if absent.
// namedb.NameDB implements this.
type Loader interface {
	GetAuction(nameHash [32]byte) (*auction.Record, error)
}

// entry pairs a name's working record with the AuctionTxn accumulating this
// block's mutations to it.
type entry struct {
	txn *auction.AuctionTxn
}

// View is one block's worth of touched auction records.
type View struct {
	mu      sync.Mutex
	loader  Loader
	entries map[[32]byte]*entry
	order   []([32]byte)
}

// New returns an empty View reading through to loader for names not yet
// touched this block.
func New(loader Loader) *View {
	return &View{
		loader:  loader,
		entries: make(map[[32]byte]*entry),
	}
}

// Txn returns the AuctionTxn for nameHash, loading (or creating a fresh
// null record for) it on first touch within this block.
func (v *View) Txn(nameHash [32]byte) (*auction.AuctionTxn, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if e, ok := v.entries[nameHash]; ok {
		return e.txn, nil
	}

	rec, err := v.loader.GetAuction(nameHash)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		rec = &auction.Record{Value: -1, Highest: -1, Transfer: -1, Revoked: -1}
	}

	txn := auction.NewTxn(rec)
	v.entries[nameHash] = &entry{txn: txn}
	v.order = append(v.order, nameHash)

	return txn, nil
}

// Peek returns the current record for nameHash without creating an entry,
// for read-only lookups (covenant contextual checks that only inspect
// phase, not mutate).
func (v *View) Peek(nameHash [32]byte) (*auction.Record, error) {
	v.mu.Lock()
	if e, ok := v.entries[nameHash]; ok {
		v.mu.Unlock()
		return e.txn.Record(), nil
	}
	v.mu.Unlock()

	return v.loader.GetAuction(nameHash)
}

// TouchedName is one name's final record plus the ops needed to undo it,
// as Flush returns them (in touch order).
type TouchedName struct {
	NameHash [32]byte
	Record   *auction.Record
	Ops      []auction.Op
}

// Flush commits every touched name's AuctionTxn and returns the results in
// touch order, for saveView to persist and undo.Log to serialize. Calling
// Flush more than once on the same View is a programming error; the View is
// meant to be discarded afterward.
func (v *View) Flush() []TouchedName {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := make([]TouchedName, 0, len(v.order))
	for _, hash := range v.order {
		e := v.entries[hash]
		rec, ops := e.txn.Commit()
		out = append(out, TouchedName{NameHash: hash, Record: rec, Ops: ops})
	}

	return out
}

// Discard drops every accumulated mutation; used when a transaction or
// block is rejected mid-connect (spec.md §4.6's all-or-nothing rule).
func (v *View) Discard() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.entries = make(map[[32]byte]*entry)
	v.order = nil
}
