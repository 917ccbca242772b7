// Package trie declares the authenticated-tree interface namedb depends on
// (spec.md §1: "the underlying authenticated radix tree (assumed to expose
// insert(key,value), remove(key), root(), snapshot(root), prove(key),
// commit(batch))"). This module treats the tree as an external collaborator
// and implements no tree of its own; a real urkel-style tree store is
// expected to satisfy this interface.
package trie

// Tree is the authenticated tree namedb mutates during saveView and
// inverts during revert.
type Tree interface {
	// Root returns the tree's current root hash.
	Root() [32]byte

	// Insert upserts key -> value, staging the change in the currently
	// open batch.
	Insert(key [32]byte, value []byte) error

	// Remove deletes key, staging the change in the currently open batch.
	Remove(key [32]byte) error

	// Snapshot returns a read-only view of the tree as of historical root
	// (used by proveName, which must be able to prove against any
	// previously committed root, not just the current tip).
	Snapshot(root [32]byte) (Snapshot, error)

	// Commit flushes the currently staged inserts/removes, returning the
	// tree's new root.
	Commit() ([32]byte, error)
}

// Snapshot is a read-only view of the tree at a fixed root.
type Snapshot interface {
	// Get returns the value stored at key in this snapshot, if any.
	Get(key [32]byte) ([]byte, bool, error)

	// Prove returns a compact proof that key is (or is not) present in
	// this snapshot, suitable for light-client verification.
	Prove(key [32]byte) (Proof, error)
}

// Proof is an opaque inclusion or exclusion proof against a Tree root. Its
// internal representation belongs to the tree implementation; namedb only
// ever passes it through.
type Proof []byte
