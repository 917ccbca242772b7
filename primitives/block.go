package primitives

import "github.com/libsv/go-bt/v2/chainhash"

// BlockHeader is the subset of header fields the name auction engine reads
// from the (externally owned) chain-header index; see spec.md §1's
// out-of-scope collaborators.
type BlockHeader struct {
	Hash     chainhash.Hash
	Prev     chainhash.Hash
	Height   uint32
	TreeRoot chainhash.Hash
}

// Block is the unit connectBlock/disconnectBlock operate on. Transactions[0]
// is the coinbase; it is excluded from covenant connect/disconnect (spec.md
// §4.5), including its CLAIM/NONE covenants, which are only checked by the
// sanity and contextual rules (spec.md §4.2).
type Block struct {
	Header       BlockHeader
	Transactions []*Transaction
}

// NonCoinbase returns every transaction after the coinbase, in block order,
// the set connectBlock iterates per spec.md §2's data-flow description.
func (b *Block) NonCoinbase() []*Transaction {
	if len(b.Transactions) == 0 {
		return nil
	}
	return b.Transactions[1:]
}

// Coinbase returns the block's coinbase transaction, or nil for an empty block.
func (b *Block) Coinbase() *Transaction {
	if len(b.Transactions) == 0 {
		return nil
	}
	return b.Transactions[0]
}
