// Package namedb implements the name database of spec.md §4.5: the
// component that applies a block's covenant-driven auction mutations to
// persistent storage and the authenticated tree, and exactly reverses them
// on disconnect. It plays the role the teacher's stores/utxo packages play
// for UTXOs — a badger-backed store fronted by a small, focused interface —
// but keyed by nameHash instead of outpoint, and paired with the trie
// collaborator spec.md §1 treats as external.
package namedb

import (
	"encoding/binary"

	badger "github.com/dgraph-io/badger/v2"
	"github.com/handshake-labs/nsd/auction"
	"github.com/handshake-labs/nsd/chaincfg"
	"github.com/handshake-labs/nsd/coinview"
	"github.com/handshake-labs/nsd/dnssec"
	"github.com/handshake-labs/nsd/errors"
	"github.com/handshake-labs/nsd/reserved"
	"github.com/handshake-labs/nsd/trie"
	"github.com/handshake-labs/nsd/ulogger"
	"github.com/libsv/go-bt/v2/chainhash"
)

// Storage key prefixes (spec.md §4.5): "a" for auction records, "u" for
// undo blobs. The authenticated tree's own "t" subspace is internal to the
// Tree implementation and never touched directly here.
const (
	prefixAuction byte = 'a'
	prefixUndo    byte = 'u'
)

func auctionKey(nameHash [32]byte) []byte {
	key := make([]byte, 1+32)
	key[0] = prefixAuction
	copy(key[1:], nameHash[:])
	return key
}

func undoKey(height uint32) []byte {
	key := make([]byte, 1+4)
	key[0] = prefixUndo
	binary.BigEndian.PutUint32(key[1:], height)
	return key
}

// HeaderIndex resolves a renewal commitment's block hash to its main-chain
// height (spec.md §4.5's "Renewal verification"). Block storage and
// chain-header indexing are external collaborators per spec.md §1; a real
// chain index satisfies this with a handful of lines over its header
// store.
type HeaderIndex interface {
	// HeightOf returns hash's height on the current main chain, or false
	// if hash is unknown or has since been reorganized off the main chain.
	HeightOf(hash chainhash.Hash) (uint32, bool)
}

// NameDB is the name database: a badger-backed record/undo store plus the
// authenticated tree, committed together so the two can never drift apart.
type NameDB struct {
	db       *badger.DB
	tree     trie.Tree
	params   *chaincfg.Params
	table    *reserved.Table
	headers  HeaderIndex
	verifier dnssec.Verifier
	log      ulogger.Logger
}

// New builds a NameDB over an already-open badger database and an
// authenticated tree. headers and verifier may be nil in contexts that
// never process RENEW/UPDATE renewal commitments or CLAIM covenants (e.g.
// a read-only light client); every other operation is unaffected.
func New(db *badger.DB, tree trie.Tree, params *chaincfg.Params, table *reserved.Table, headers HeaderIndex, verifier dnssec.Verifier, log ulogger.Logger) *NameDB {
	return &NameDB{
		db:       db,
		tree:     tree,
		params:   params,
		table:    table,
		headers:  headers,
		verifier: verifier,
		log:      log,
	}
}

// GetAuction loads nameHash's on-disk record, or (nil, nil) if absent. This
// satisfies coinview.Loader, so a NameDB can be passed directly to
// coinview.New.
func (d *NameDB) GetAuction(nameHash [32]byte) (*auction.Record, error) {
	var rec *auction.Record

	err := d.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(auctionKey(nameHash))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			r, err := auction.Unmarshal(val)
			if err != nil {
				return err
			}
			rec = r
			return nil
		})
	})
	if err != nil {
		d.log.Errorf("namedb: load auction %x: %v", nameHash, err)
		return nil, errors.New(errors.ERR_STORAGE_RECORD_CORRUPT, "namedb: load auction %x: %v", nameHash, err)
	}

	return rec, nil
}

// NewView returns a per-block coin-view reading through to this NameDB,
// the construction connectBlock callers use at the start of each block
// (spec.md §4.6).
func (d *NameDB) NewView() *coinview.View {
	return coinview.New(d)
}
