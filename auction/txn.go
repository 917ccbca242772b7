package auction

import (
	"bytes"

	"github.com/handshake-labs/nsd/primitives"
)

// Field tags identify which Record field an Op restores. Tags 0..7 line up
// with the on-disk record's optional-field flag bits (spec.md §6) so the
// two bit assignments can be cross-checked by the same stability test;
// Height, Renewal and Name are unconditionally serialized on the record
// itself but still need tags here since they can still be mutated and
// therefore still need an undo entry.
type FieldTag byte

const (
	FieldOwner FieldTag = iota
	FieldValue
	FieldHighest
	FieldData
	FieldTransfer
	FieldRevoked
	FieldClaimed
	FieldWeak
	FieldHeight
	FieldRenewal
	FieldName
)

// Op is one recorded "restore field X to its old value" instruction,
// accumulated by an AuctionTxn and persisted as part of a block's undo log
// (spec.md §4.4).
type Op struct {
	Field FieldTag

	OldHasOwner bool
	OldOwner    primitives.Outpoint
	OldValue    int64
	OldHighest  int64
	OldData     []byte
	OldTransfer int64
	OldRevoked  int64
	OldClaimed  bool
	OldWeak     bool
	OldHeight   uint32
	OldRenewal  uint32
	OldName     []byte
}

// AuctionTxn owns one record's working copy plus its accumulating op list
// for the duration of a single block's connect pass (spec.md §9's "explicit
// transaction builder" design note). Set* methods record the field's old
// value into an Op the first time that field changes in this transaction;
// later changes to the same field within the same AuctionTxn are silent, so
// that replaying the ops in reverse order restores the pre-block record
// exactly once.
type AuctionTxn struct {
	rec     *Record
	touched map[FieldTag]bool
	ops     []Op
}

// NewTxn begins a transaction over rec. rec is not copied; callers that
// need to retain the pre-transaction value should Clone it first.
func NewTxn(rec *Record) *AuctionTxn {
	return &AuctionTxn{rec: rec, touched: make(map[FieldTag]bool)}
}

// Record returns the transaction's working copy for reads.
func (t *AuctionTxn) Record() *Record {
	return t.rec
}

func (t *AuctionTxn) mark(field FieldTag, op Op) {
	if t.touched[field] {
		return
	}
	t.touched[field] = true
	op.Field = field
	t.ops = append(t.ops, op)
}

func (t *AuctionTxn) SetHeight(v uint32) {
	if t.rec.Height == v {
		return
	}
	t.mark(FieldHeight, Op{OldHeight: t.rec.Height})
	t.rec.Height = v
}

func (t *AuctionTxn) SetRenewal(v uint32) {
	if t.rec.Renewal == v {
		return
	}
	t.mark(FieldRenewal, Op{OldRenewal: t.rec.Renewal})
	t.rec.Renewal = v
}

func (t *AuctionTxn) SetName(v []byte) {
	if bytes.Equal(t.rec.Name, v) {
		return
	}
	t.mark(FieldName, Op{OldName: append([]byte(nil), t.rec.Name...)})
	t.rec.Name = append([]byte(nil), v...)
}

func (t *AuctionTxn) SetOwner(owner primitives.Outpoint, has bool) {
	if t.rec.HasOwner == has && t.rec.Owner == owner {
		return
	}
	t.mark(FieldOwner, Op{OldHasOwner: t.rec.HasOwner, OldOwner: t.rec.Owner})
	t.rec.HasOwner = has
	t.rec.Owner = owner
}

func (t *AuctionTxn) ClearOwner() {
	t.SetOwner(primitives.Outpoint{}, false)
}

func (t *AuctionTxn) SetValue(v int64) {
	if t.rec.Value == v {
		return
	}
	t.mark(FieldValue, Op{OldValue: t.rec.Value})
	t.rec.Value = v
}

func (t *AuctionTxn) SetHighest(v int64) {
	if t.rec.Highest == v {
		return
	}
	t.mark(FieldHighest, Op{OldHighest: t.rec.Highest})
	t.rec.Highest = v
}

func (t *AuctionTxn) SetData(v []byte) {
	if bytes.Equal(t.rec.Data, v) {
		return
	}
	t.mark(FieldData, Op{OldData: append([]byte(nil), t.rec.Data...)})
	if v == nil {
		t.rec.Data = nil
	} else {
		t.rec.Data = append([]byte(nil), v...)
	}
}

func (t *AuctionTxn) SetTransfer(v int64) {
	if t.rec.Transfer == v {
		return
	}
	t.mark(FieldTransfer, Op{OldTransfer: t.rec.Transfer})
	t.rec.Transfer = v
}

func (t *AuctionTxn) SetRevoked(v int64) {
	if t.rec.Revoked == v {
		return
	}
	t.mark(FieldRevoked, Op{OldRevoked: t.rec.Revoked})
	t.rec.Revoked = v
}

func (t *AuctionTxn) SetClaimed(v bool) {
	if t.rec.Claimed == v {
		return
	}
	t.mark(FieldClaimed, Op{OldClaimed: t.rec.Claimed})
	t.rec.Claimed = v
}

func (t *AuctionTxn) SetWeak(v bool) {
	if t.rec.Weak == v {
		return
	}
	t.mark(FieldWeak, Op{OldWeak: t.rec.Weak})
	t.rec.Weak = v
}

// Commit returns the mutated record and the ops needed to undo this
// transaction, oldest change first. Callers that append these ops to a
// block-level undo entry must store them in reverse (most recent first) so
// that replaying front-to-back restores the pre-block record; Reverse does
// that conversion.
func (t *AuctionTxn) Commit() (*Record, []Op) {
	return t.rec, t.ops
}

// Reverse returns ops in last-applied-first order, the order the undo log
// wire format replays them in (spec.md §6).
func Reverse(ops []Op) []Op {
	out := make([]Op, len(ops))
	for i, op := range ops {
		out[len(ops)-1-i] = op
	}
	return out
}

// Apply installs every op's old value back onto rec, undoing a
// transaction's worth of mutations in the order the caller supplies them
// (normally Reverse(ops) of what Commit returned).
func Apply(rec *Record, ops []Op) {
	for _, op := range ops {
		switch op.Field {
		case FieldHeight:
			rec.Height = op.OldHeight
		case FieldRenewal:
			rec.Renewal = op.OldRenewal
		case FieldName:
			rec.Name = op.OldName
		case FieldOwner:
			rec.HasOwner = op.OldHasOwner
			rec.Owner = op.OldOwner
		case FieldValue:
			rec.Value = op.OldValue
		case FieldHighest:
			rec.Highest = op.OldHighest
		case FieldData:
			rec.Data = op.OldData
		case FieldTransfer:
			rec.Transfer = op.OldTransfer
		case FieldRevoked:
			rec.Revoked = op.OldRevoked
		case FieldClaimed:
			rec.Claimed = op.OldClaimed
		case FieldWeak:
			rec.Weak = op.OldWeak
		}
	}
}
