// Package auction implements the per-name auction state machine of
// spec.md §3/§4.3: the Record a nameHash owns, the phase it derives from
// height, and the reversible delta/undo machinery (spec.md §4.4) that lets
// a block's worth of mutations be applied and, on reorg, exactly undone.
package auction

import (
	"github.com/handshake-labs/nsd/chaincfg"
	"github.com/handshake-labs/nsd/primitives"
)

// Phase is a point-in-time classification of a Record's position in its
// auction cycle.
type Phase int

const (
	Opening Phase = iota
	Bidding
	Reveal
	Closed
	Revoked
)

func (p Phase) String() string {
	switch p {
	case Opening:
		return "OPENING"
	case Bidding:
		return "BIDDING"
	case Reveal:
		return "REVEAL"
	case Closed:
		return "CLOSED"
	case Revoked:
		return "REVOKED"
	default:
		return "UNKNOWN"
	}
}

// absent is the sentinel for Value, Highest, Transfer and Revoked when the
// field carries no value.
const absent = -1

// Record is one name's auction state (spec.md §3's "Auction record"). The
// nameHash key is not part of the struct; callers key records by it
// externally (the coin-view map, the namedb store).
type Record struct {
	Name     []byte
	Height   uint32
	Renewal  uint32
	HasOwner bool
	Owner    primitives.Outpoint
	Value    int64
	Highest  int64
	Data     []byte
	Transfer int64
	Revoked  int64
	Claimed  bool
	Weak     bool
}

// NewRecord returns a freshly opened record: Value/Highest/Transfer/Revoked
// absent, Height and Renewal both set to openHeight.
func NewRecord(name []byte, openHeight uint32) *Record {
	return &Record{
		Name:     append([]byte(nil), name...),
		Height:   openHeight,
		Renewal:  openHeight,
		Value:    absent,
		Highest:  absent,
		Transfer: absent,
		Revoked:  absent,
	}
}

// IsNull reports whether every field is at its zero/absent default, the
// condition under which spec.md §3 says the record is removed from
// storage rather than written.
func (r *Record) IsNull() bool {
	if r == nil {
		return true
	}
	return len(r.Name) == 0 && r.Height == 0 && r.Renewal == 0 && !r.HasOwner &&
		r.Value == absent && r.Highest == absent && len(r.Data) == 0 &&
		r.Transfer == absent && r.Revoked == absent && !r.Claimed && !r.Weak
}

// Clone returns a deep copy, used when a record enters a per-block
// coin-view or a mempool shadow snapshot so mutations never alias shared
// storage.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	c.Name = append([]byte(nil), r.Name...)
	if r.Data != nil {
		c.Data = append([]byte(nil), r.Data...)
	}
	return &c
}

// State derives the record's phase at height h, per spec.md §4.3: each
// period's end is the prior period's end plus its own length, so revealEnd
// is the full cumulative Height + OpenPeriod + BiddingPeriod + RevealPeriod.
func (r *Record) State(h uint32, params *chaincfg.Params) Phase {
	if r.Revoked != absent {
		return Revoked
	}
	if r.Claimed {
		return Closed
	}

	openEnd := r.Height + params.OpenPeriod()
	if h < openEnd {
		return Opening
	}

	biddingEnd := openEnd + params.BiddingPeriod
	if h < biddingEnd {
		return Bidding
	}

	revealEnd := biddingEnd + params.RevealPeriod
	if h < revealEnd {
		return Reveal
	}

	return Closed
}

// IsExpired reports whether the record should be treated as vacated at
// height h: a revocation that has matured past auctionMaturity, or a
// CLOSED record whose renewal window has lapsed, or a CLOSED record with
// no owner (an auction that never registered).
func (r *Record) IsExpired(h uint32, params *chaincfg.Params) bool {
	if r.Revoked != absent && int64(h) >= r.Revoked+int64(params.AuctionMaturity) {
		return true
	}

	if r.State(h, params) == Closed {
		if h >= r.Renewal+params.RenewalWindow {
			return true
		}
		if !r.HasOwner {
			return true
		}
	}

	return false
}

// IsWeak reports whether the record's claim-derived weak lockup is still
// in force at height h.
func (r *Record) IsWeak(h uint32, params *chaincfg.Params) bool {
	return r.Weak && h < r.Height+params.WeakLockup
}
