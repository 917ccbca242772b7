package primitives

import (
	"bytes"

	"github.com/libsv/go-bt/v2/chainhash"
)

// Outpoint identifies an unspent output: the transaction that created it and
// the output index within that transaction. There is never a pointer to an
// Output here — ownership is always expressed as this value pair, per
// spec.md §9's "arena-free" design note.
type Outpoint struct {
	Hash  chainhash.Hash
	Index uint32
}

// IsNull reports whether the outpoint is the zero value, used as the "no
// owner" / "no prevout" sentinel.
func (o Outpoint) IsNull() bool {
	return o.Index == 0 && o.Hash == (chainhash.Hash{})
}

// Less implements the tie-break order of spec.md §5: lexicographic compare
// of (txHash, index), used when two REVEALs in the same block bid the same
// value.
func (o Outpoint) Less(other Outpoint) bool {
	if c := bytes.Compare(o.Hash[:], other.Hash[:]); c != 0 {
		return c < 0
	}
	return o.Index < other.Index
}

// Input references a prior output being spent.
type Input struct {
	Prevout Outpoint
}

// Output is a single transaction output: a value, a destination address,
// and an optional covenant.
type Output struct {
	Value    int64
	Address  []byte
	Covenant Covenant
}

// Transaction is the unit the engine validates and applies. IsCoinbase
// transactions carry no real inputs; the engine treats Inputs as airdrop
// witnesses in that case (spec.md §4.2).
type Transaction struct {
	Hash       chainhash.Hash
	Inputs     []Input
	Outputs    []Output
	IsCoinbase bool
}

// Output index helpers used throughout connect/verify so call sites read as
// "the output linked to input i" rather than raw indexing.

// LinkedOutput returns the output at the same index as input i ("the link"
// in spec.md's glossary), or false if the transaction has no such output.
func (tx *Transaction) LinkedOutput(inputIndex int) (Output, bool) {
	if inputIndex < 0 || inputIndex >= len(tx.Outputs) {
		return Output{}, false
	}
	return tx.Outputs[inputIndex], true
}
