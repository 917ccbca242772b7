// Package mempool implements the mempool auction shadow-state of
// spec.md §4.7: the bookkeeping that lets a mempool evict transactions a
// phase transition at the next block height would make inadmissible,
// without re-deriving every watched name's state from scratch on every
// tip change. It follows util/txmap.go's swiss.Map-backed per-hash-set
// shape, repurposed from UTXO outpoint sets to name watch-lists.
package mempool

import (
	"bytes"
	"sync"

	"github.com/handshake-labs/nsd/auction"
	"github.com/handshake-labs/nsd/chaincfg"
	"github.com/handshake-labs/nsd/primitives"
	"github.com/handshake-labs/nsd/ulogger"
	"github.com/handshake-labs/nsd/util"
)

// Category buckets a watched transaction by which phase of its name's
// auction it belongs to, so invalidate can evict exactly the bucket a
// phase transition retires (spec.md §4.7).
type Category int

const (
	CategoryOpen Category = iota
	CategoryBid
	CategoryReveal
	CategoryUpdate
	numCategories
)

func (c Category) String() string {
	switch c {
	case CategoryOpen:
		return "OPEN"
	case CategoryBid:
		return "BID"
	case CategoryReveal:
		return "REVEAL"
	case CategoryUpdate:
		return "UPDATE"
	default:
		return "UNKNOWN"
	}
}

// categoryOf maps a covenant type to the watch category it belongs to.
// REGISTER, REDEEM and REVOKE are not watched here: their admissibility
// depends only on the current tip, not on a queued phase transition, so
// they need no shadow bookkeeping.
func categoryOf(t primitives.CovenantType) (Category, bool) {
	switch t {
	case primitives.CovenantOpen:
		return CategoryOpen, true
	case primitives.CovenantBid:
		return CategoryBid, true
	case primitives.CovenantReveal:
		return CategoryReveal, true
	case primitives.CovenantUpdate, primitives.CovenantRenew, primitives.CovenantTransfer, primitives.CovenantFinalize:
		return CategoryUpdate, true
	default:
		return 0, false
	}
}

// Loader resolves a name's on-chain auction record; namedb.NameDB satisfies
// this (coinview.View satisfies View below, not Loader).
type Loader interface {
	GetAuction(nameHash [32]byte) (*auction.Record, error)
}

// View additionally exposes the per-block working record for a name still
// being connected, the "view" Track clones its pre-mempool snapshot from
// (spec.md §4.7).
type View interface {
	Peek(nameHash [32]byte) (*auction.Record, error)
}

type touch struct {
	nameHash [32]byte
	category Category
}

type nameState struct {
	refcount uint32
	snapshot *auction.Record
	watched  [numCategories]*util.SwissMap
}

func newNameState() *nameState {
	ns := &nameState{}
	for i := range ns.watched {
		ns.watched[i] = util.NewSwissMap(4)
	}
	return ns
}

// Shadow is the mempool's per-name auction bookkeeping: which pending
// transactions touch which names in which phase, and the pre-mempool
// snapshot invalidate() re-derives phase transitions against.
type Shadow struct {
	mu     sync.Mutex
	loader Loader
	params *chaincfg.Params
	log    ulogger.Logger

	names map[[32]byte]*nameState
	txs   map[[32]byte][]touch

	seq   uint64
	order *util.SwissMapUint64

	claims *util.SwissMapUint64 // txid -> DNSSEC commitHeight
}

// New returns an empty Shadow reading through to loader for names not yet
// snapshotted.
func New(loader Loader, params *chaincfg.Params, log ulogger.Logger) *Shadow {
	return &Shadow{
		loader: loader,
		params: params,
		log:    log,
		names:  make(map[[32]byte]*nameState),
		txs:    make(map[[32]byte][]touch),
		order:  util.NewSwissMapUint64(64),
		claims: util.NewSwissMapUint64(64),
	}
}

// Track registers every name-touching, non-CLAIM output of tx as pending.
// ops, if non-nil, are the field deltas a trial connect of tx against view
// produced for a touched name; Track applies them in reverse to recover
// the on-chain, pre-mempool snapshot the first time that name is touched,
// per spec.md §4.7's "clone the auction from view, apply the inverse
// delta" recipe. Callers with no trial-connect ops to offer may pass nil,
// in which case the snapshot is simply the view's (or, failing that, the
// loader's) current record.
func (s *Shadow) Track(tx *primitives.Transaction, view View, ops map[[32]byte][]auction.Op) {
	txid := [32]byte(tx.Hash)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.order.Exists(txid) {
		s.seq++
		_ = s.order.Put(txid, s.seq)
	}

	for _, out := range tx.Outputs {
		c := out.Covenant
		if c.Type == primitives.CovenantClaim {
			continue
		}

		cat, ok := categoryOf(c.Type)
		if !ok {
			continue
		}

		nameHash := c.NameHash()
		ns, ok := s.names[nameHash]
		if !ok {
			ns = newNameState()
			s.names[nameHash] = ns
			s.loadSnapshot(ns, nameHash, view, ops[nameHash])
		}

		if !ns.watched[cat].Exists(txid) {
			_ = ns.watched[cat].Put(txid)
			ns.refcount++
			s.txs[txid] = append(s.txs[txid], touch{nameHash: nameHash, category: cat})
		}
	}
}

func (s *Shadow) loadSnapshot(ns *nameState, nameHash [32]byte, view View, ops []auction.Op) {
	var rec *auction.Record

	if view != nil {
		if r, err := view.Peek(nameHash); err == nil && r != nil {
			rec = r.Clone()
		}
	}

	if rec == nil {
		if r, err := s.loader.GetAuction(nameHash); err != nil {
			s.log.Warnf("mempool: snapshot load for %x failed, treating as absent: %v", nameHash, err)
			rec = &auction.Record{Value: -1, Highest: -1, Transfer: -1, Revoked: -1}
		} else if r == nil {
			rec = &auction.Record{Value: -1, Highest: -1, Transfer: -1, Revoked: -1}
		} else {
			rec = r.Clone()
		}
	}

	if len(ops) > 0 {
		auction.Apply(rec, auction.Reverse(ops))
	}

	ns.snapshot = rec
}

// TrackClaim registers a CLAIM transaction's admission path separately
// (spec.md §4.7's last paragraph): claims have no phase-transition
// eviction, only a claim-period cutoff.
func (s *Shadow) TrackClaim(tx *primitives.Transaction, commitHeight uint32) {
	txid := [32]byte(tx.Hash)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.claims.Exists(txid) {
		s.claims.Delete(txid)
	}
	_ = s.claims.Put(txid, uint64(commitHeight))
}

// Untrack removes every watch this txid holds, freeing a name's snapshot
// once its last watcher is gone.
func (s *Shadow) Untrack(txid [32]byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.untrackLocked(txid)
}

func (s *Shadow) untrackLocked(txid [32]byte) {
	touches := s.txs[txid]
	delete(s.txs, txid)
	s.claims.Delete(txid)
	s.order.Delete(txid)

	for _, t := range touches {
		ns, ok := s.names[t.nameHash]
		if !ok {
			continue
		}
		if ns.watched[t.category].Exists(txid) {
			_ = ns.watched[t.category].Delete(txid)
			if ns.refcount > 0 {
				ns.refcount--
			}
		}
		if ns.refcount == 0 {
			delete(s.names, t.nameHash)
		}
	}
}

// Invalidate re-derives, for every watched name, whether the step from
// height to height+1 retires one of its watched categories, and evicts
// every transaction in a retired category (spec.md §4.7):
//
//   - BIDDING starting next block retires pending OPENs for the name.
//   - REVEAL starting next block retires pending BIDs.
//   - CLOSED starting next block retires pending REVEALs.
//   - The name expiring (per auction.Record.IsExpired) retires pending
//     UPDATE-family transactions (UPDATE/RENEW/TRANSFER/FINALIZE).
//   - A weak lockup ending retires pending UPDATE-family transactions too
//     (hardened mode re-evaluates them against the now-non-weak record).
//
// Within OPENING, at most one OPEN per name may remain queued at a time;
// Invalidate also evicts every OPEN but the first-seen (lowest Track
// sequence number) for a name still in OPENING.
func (s *Shadow) Invalidate(height uint32) map[[32]byte]bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := make(map[[32]byte]bool)
	next := height + 1

	for nameHash, ns := range s.names {
		if ns.snapshot == nil {
			continue
		}

		curPhase := ns.snapshot.State(height, s.params)
		nextPhase := ns.snapshot.State(next, s.params)
		wasExpired := ns.snapshot.IsExpired(height, s.params)
		willExpire := ns.snapshot.IsExpired(next, s.params)
		wasWeak := ns.snapshot.IsWeak(height, s.params)
		willBeWeak := ns.snapshot.IsWeak(next, s.params)

		switch {
		case curPhase == auction.Opening && nextPhase != auction.Opening:
			s.evictCategory(ns, CategoryOpen, evicted)
		case curPhase == auction.Bidding && nextPhase != auction.Bidding:
			s.evictCategory(ns, CategoryBid, evicted)
		case curPhase == auction.Reveal && nextPhase != auction.Reveal:
			s.evictCategory(ns, CategoryReveal, evicted)
		}

		if curPhase == auction.Opening {
			s.evictAllButFirstSeen(ns, nameHash, CategoryOpen, evicted)
		}

		if !wasExpired && willExpire {
			s.evictCategory(ns, CategoryUpdate, evicted)
		}
		if wasWeak && !willBeWeak {
			s.evictCategory(ns, CategoryUpdate, evicted)
		}
	}

	for txid := range evicted {
		s.untrackLocked(txid)
	}

	return evicted
}

// InvalidateClaims evicts every queued claim once height+1 reaches the
// claim-period cutoff (spec.md §4.7).
func (s *Shadow) InvalidateClaims(height uint32) map[[32]byte]bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := make(map[[32]byte]bool)
	if height+1 < s.params.AuctionStart+s.params.ClaimPeriod-1 {
		return evicted
	}

	var due [][32]byte
	s.claims.Range(func(txid [32]byte, _ uint64) bool {
		due = append(due, txid)
		return true
	})

	for _, txid := range due {
		evicted[txid] = true
		s.claims.Delete(txid)
		s.order.Delete(txid)
	}

	return evicted
}

func (s *Shadow) evictCategory(ns *nameState, cat Category, evicted map[[32]byte]bool) {
	ns.watched[cat].Range(func(txid [32]byte) bool {
		evicted[txid] = true
		return true
	})
}

// evictAllButFirstSeen keeps only the lowest-sequence (first Tracked)
// transaction in cat for nameHash, evicting the rest — the queued-OPEN
// uniqueness rule spec.md §4.7 calls out explicitly.
func (s *Shadow) evictAllButFirstSeen(ns *nameState, nameHash [32]byte, cat Category, evicted map[[32]byte]bool) {
	set := ns.watched[cat]
	if set.Length() <= 1 {
		return
	}

	var keep [32]byte
	best := ^uint64(0)
	set.Range(func(txid [32]byte) bool {
		seq, _ := s.order.Get(txid)
		if seq < best || (seq == best && bytes.Compare(txid[:], keep[:]) < 0) {
			best = seq
			keep = txid
		}
		return true
	})

	set.Range(func(txid [32]byte) bool {
		if txid != keep {
			evicted[txid] = true
		}
		return true
	})
}

// Watchers returns how many distinct pending transactions currently touch
// nameHash, for admission-policy callers deciding whether to accept
// another competing transaction for the same name.
func (s *Shadow) Watchers(nameHash [32]byte) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	ns, ok := s.names[nameHash]
	if !ok {
		return 0
	}
	return ns.refcount
}
