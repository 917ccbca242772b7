package namedb

import (
	badger "github.com/dgraph-io/badger/v2"
	"github.com/handshake-labs/nsd/auction"
	"github.com/handshake-labs/nsd/auction/undo"
	"github.com/handshake-labs/nsd/coinview"
	"github.com/handshake-labs/nsd/errors"
	"github.com/handshake-labs/nsd/names"
	"github.com/handshake-labs/nsd/trie"
)

// SaveView commits every name view touched this block to badger and the
// authenticated tree in one pass, writing the block's undo log alongside so
// Revert can exactly reverse it (spec.md §4.5/§4.6). A null result record is
// deleted rather than stored, per spec.md §3's "absent record" rule.
func (d *NameDB) SaveView(view *coinview.View, height uint32) error {
	touched := view.Flush()
	if len(touched) == 0 {
		return nil
	}

	entries := make([]undo.Entry, 0, len(touched))

	err := d.db.Update(func(txn *badger.Txn) error {
		for _, t := range touched {
			key := auctionKey(t.NameHash)

			if t.Record.IsNull() {
				if err := txn.Delete(key); err != nil && err != badger.ErrKeyNotFound {
					return err
				}
				if err := d.tree.Remove(t.NameHash); err != nil {
					return err
				}
			} else {
				if err := txn.Set(key, t.Record.Marshal()); err != nil {
					return err
				}
				if err := d.tree.Insert(t.NameHash, t.Record.Marshal()); err != nil {
					return err
				}
			}

			entries = append(entries, undo.Entry{NameHash: t.NameHash, Ops: auction.Reverse(t.Ops)})
		}

		log := &undo.Log{Entries: entries}
		return txn.Set(undoKey(height), log.Marshal())
	})
	if err != nil {
		d.log.Errorf("namedb: save view at height %d: %v", height, err)
		return errors.New(errors.ERR_STORAGE_RECORD_CORRUPT, "namedb: save view at height %d: %v", height, err)
	}

	if _, err := d.tree.Commit(); err != nil {
		d.log.Errorf("namedb: commit tree at height %d: %v", height, err)
		return errors.New(errors.ERR_STORAGE_ROOT_MISMATCH, "namedb: commit tree at height %d: %v", height, err)
	}

	d.log.Debugf("namedb: connected %d touched name(s) at height %d", len(touched), height)
	return nil
}

// Revert replays height's undo log backward against both badger and the
// tree, restoring every touched name's pre-block record exactly (spec.md
// §4.4's reorg-safety guarantee) and removing the consumed undo blob.
func (d *NameDB) Revert(height uint32) error {
	var blob []byte

	err := d.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(undoKey(height))
		if err == badger.ErrKeyNotFound {
			return errors.ErrUndoMissing
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			blob = append([]byte(nil), val...)
			return nil
		})
	})
	if err != nil {
		d.log.Errorf("namedb: load undo log at height %d: %v", height, err)
		return err
	}

	log, err := undo.Unmarshal(blob)
	if err != nil {
		return err
	}

	err = d.db.Update(func(txn *badger.Txn) error {
		for _, e := range log.Entries {
			rec, err := d.loadOrNull(txn, e.NameHash)
			if err != nil {
				return err
			}

			auction.Apply(rec, e.Ops)

			key := auctionKey(e.NameHash)
			if rec.IsNull() {
				if err := txn.Delete(key); err != nil && err != badger.ErrKeyNotFound {
					return err
				}
				if err := d.tree.Remove(e.NameHash); err != nil {
					return err
				}
			} else {
				if err := txn.Set(key, rec.Marshal()); err != nil {
					return err
				}
				if err := d.tree.Insert(e.NameHash, rec.Marshal()); err != nil {
					return err
				}
			}
		}

		return txn.Delete(undoKey(height))
	})
	if err != nil {
		d.log.Errorf("namedb: revert height %d: %v", height, err)
		return errors.New(errors.ERR_STORAGE_RECORD_CORRUPT, "namedb: revert height %d: %v", height, err)
	}

	if _, err := d.tree.Commit(); err != nil {
		d.log.Errorf("namedb: commit tree reverting height %d: %v", height, err)
		return errors.New(errors.ERR_STORAGE_ROOT_MISMATCH, "namedb: commit tree reverting height %d: %v", height, err)
	}

	d.log.Debugf("namedb: disconnected %d entries at height %d", len(log.Entries), height)
	return nil
}

func (d *NameDB) loadOrNull(txn *badger.Txn, nameHash [32]byte) (*auction.Record, error) {
	item, err := txn.Get(auctionKey(nameHash))
	if err == badger.ErrKeyNotFound {
		return &auction.Record{Value: -1, Highest: -1, Transfer: -1, Revoked: -1}, nil
	}
	if err != nil {
		return nil, err
	}

	var rec *auction.Record
	err = item.Value(func(val []byte) error {
		r, err := auction.Unmarshal(val)
		if err != nil {
			return err
		}
		rec = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	return rec, nil
}

// ProveName returns a light-client proof of name's presence or absence in
// the authenticated tree as of root, which need not be the current tip
// (spec.md §4.5's proveName).
func (d *NameDB) ProveName(root [32]byte, name []byte) ([32]byte, trie.Proof, error) {
	hash, err := names.HashName(name)
	if err != nil {
		return [32]byte{}, nil, err
	}

	snap, err := d.tree.Snapshot(root)
	if err != nil {
		return hash, nil, err
	}

	proof, err := snap.Prove(hash)
	if err != nil {
		return hash, nil, err
	}

	return hash, proof, nil
}
