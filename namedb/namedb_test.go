package namedb

import (
	"sync"
	"testing"

	badger "github.com/dgraph-io/badger/v2"
	"github.com/handshake-labs/nsd/auction"
	"github.com/handshake-labs/nsd/chaincfg"
	"github.com/handshake-labs/nsd/dnssec"
	nsderrors "github.com/handshake-labs/nsd/errors"
	"github.com/handshake-labs/nsd/names"
	"github.com/handshake-labs/nsd/primitives"
	"github.com/handshake-labs/nsd/reserved"
	"github.com/handshake-labs/nsd/trie"
	"github.com/handshake-labs/nsd/ulogger"
	"github.com/libsv/go-bt/v2/chainhash"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"
)

// fakeTree is a trivial in-memory trie.Tree, standing in for the real
// authenticated tree this module treats as an external collaborator.
type fakeTree struct {
	mu      sync.Mutex
	entries map[[32]byte][]byte
	staged  map[[32]byte][]byte // nil value means "staged for removal"
}

func newFakeTree() *fakeTree {
	return &fakeTree{
		entries: make(map[[32]byte][]byte),
		staged:  make(map[[32]byte][]byte),
	}
}

func (t *fakeTree) Root() [32]byte { return [32]byte{} }

func (t *fakeTree) Insert(key [32]byte, value []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	cp := append([]byte(nil), value...)
	t.staged[key] = cp
	return nil
}

func (t *fakeTree) Remove(key [32]byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.staged[key] = nil
	return nil
}

func (t *fakeTree) Commit() ([32]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for k, v := range t.staged {
		if v == nil {
			delete(t.entries, k)
		} else {
			t.entries[k] = v
		}
	}
	t.staged = make(map[[32]byte][]byte)
	return t.Root(), nil
}

func (t *fakeTree) Snapshot(_ [32]byte) (trie.Snapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	cp := make(map[[32]byte][]byte, len(t.entries))
	for k, v := range t.entries {
		cp[k] = v
	}
	return &fakeSnapshot{entries: cp}, nil
}

type fakeSnapshot struct{ entries map[[32]byte][]byte }

func (s *fakeSnapshot) Get(key [32]byte) ([]byte, bool, error) {
	v, ok := s.entries[key]
	return v, ok, nil
}

func (s *fakeSnapshot) Prove(key [32]byte) (trie.Proof, error) {
	if v, ok := s.entries[key]; ok {
		return trie.Proof(v), nil
	}
	return trie.Proof(nil), nil
}

type fakeHeaders struct {
	heights map[chainhash.Hash]uint32
}

func (h *fakeHeaders) HeightOf(hash chainhash.Hash) (uint32, bool) {
	v, ok := h.heights[hash]
	return v, ok
}

func testParams() *chaincfg.Params {
	return &chaincfg.Params{
		Name:            "regtest",
		MaxMoney:        1 << 40,
		MaxResourceSize: 512,
		MaxCovenantSize: 1024,
		TreeInterval:    4, // OpenPeriod == 5
		BiddingPeriod:   5,
		RevealPeriod:    10,
		RenewalWindow:   1000,
		AuctionMaturity: 50,
		WeakLockup:      400,
		TransferLockup:  10,
		RenewalMaturity: 400,
		RenewalPeriod:   1000,
		RolloutInterval: 7,
		AuctionStart:    0,
		ClaimPeriod:     100,
		NoRollout:       true,
		NoReserved:      true,
	}
}

func newTestDB(t *testing.T, headers HeaderIndex) (*NameDB, *fakeTree, func()) {
	t.Helper()

	opts := badger.DefaultOptions("").WithInMemory(true)
	db, err := badger.Open(opts)
	require.NoError(t, err)

	tree := newFakeTree()
	table := reserved.NewTable(100, 100, 100, nil)
	log := ulogger.New("namedb-test", "error")

	ndb := New(db, tree, testParams(), table, headers, nil, log)

	cleanup := func() { _ = db.Close() }
	return ndb, tree, cleanup
}

func outpoint(b byte, index uint32) primitives.Outpoint {
	var h chainhash.Hash
	h[0] = b
	return primitives.Outpoint{Hash: h, Index: index}
}

func TestConnectOpenRejectsReservedName(t *testing.T) {
	ndb, _, cleanup := newTestDB(t, nil)
	defer cleanup()
	ndb.params.NoReserved = false

	nameHash, err := names.HashName([]byte("reserved-name"))
	require.NoError(t, err)
	table := reserved.NewTable(0, 0, 0, []reserved.Entry{{Hash: nameHash, Target: "reserved-name"}})
	ndb.table = table

	view := ndb.NewView()
	tx := &primitives.Transaction{
		Hash: chainhash.Hash{1},
		Outputs: []primitives.Output{
			{Covenant: primitives.Covenant{Type: primitives.CovenantOpen, Items: [][]byte{nameHash[:]}}},
		},
	}

	err = ndb.connectTx(tx, view, 10)
	require.Error(t, err)
}

func TestConnectBidThenRevealVickreySecondPrice(t *testing.T) {
	ndb, _, cleanup := newTestDB(t, nil)
	defer cleanup()

	nameHash, err := names.HashName([]byte("alpha"))
	require.NoError(t, err)

	view := ndb.NewView()

	openTx := &primitives.Transaction{
		Hash:    chainhash.Hash{1},
		Outputs: []primitives.Output{{Covenant: primitives.Covenant{Type: primitives.CovenantOpen, Items: [][]byte{nameHash[:]}}}},
	}
	require.NoError(t, ndb.connectTx(openTx, view, 0))

	bidTx := &primitives.Transaction{
		Hash: chainhash.Hash{2},
		Outputs: []primitives.Output{
			{Value: 1000, Covenant: primitives.Covenant{Type: primitives.CovenantBid, Items: [][]byte{nameHash[:], []byte("alpha"), make([]byte, 32)}}},
		},
	}
	require.NoError(t, ndb.connectTx(bidTx, view, 2))

	revealOut1 := outpoint(2, 0)
	revealOut2 := outpoint(3, 0)

	txn, err := view.Txn(nameHash)
	require.NoError(t, err)
	require.NoError(t, ndb.connectReveal(txn, 10, 1000, revealOut1))
	require.NoError(t, ndb.connectReveal(txn, 10, 500, revealOut2))

	rec := txn.Record()
	require.True(t, rec.HasOwner)
	require.Equal(t, revealOut1, rec.Owner)
	require.EqualValues(t, 1000, rec.Highest)
	require.EqualValues(t, 500, rec.Value)
}

func TestConnectRevealTieBreakEarlierOutpointWins(t *testing.T) {
	ndb, _, cleanup := newTestDB(t, nil)
	defer cleanup()

	rec := &auction.Record{Value: -1, Highest: -1, Transfer: -1, Revoked: -1, Height: 0}
	txn := auction.NewTxn(rec)

	later := outpoint(9, 0)
	earlier := outpoint(1, 0)

	require.NoError(t, ndb.connectReveal(txn, 10, 1000, later))
	require.NoError(t, ndb.connectReveal(txn, 10, 1000, earlier))

	require.Equal(t, earlier, txn.Record().Owner)
	require.EqualValues(t, 1000, txn.Record().Highest)
	require.EqualValues(t, 1000, txn.Record().Value)
}

func TestConnectRegisterRequiresWinningPrevout(t *testing.T) {
	ndb, _, cleanup := newTestDB(t, nil)
	defer cleanup()

	winner := outpoint(5, 0)
	rec := &auction.Record{Value: 500, Highest: 1000, Transfer: -1, Revoked: -1, HasOwner: true, Owner: winner}
	txn := auction.NewTxn(rec)

	wrongPrevout := outpoint(6, 0)
	err := ndb.connectRegister(txn, wrongPrevout, 500, primitives.Covenant{Items: [][]byte{nil, []byte("data")}}, outpoint(7, 0), 20)
	require.Error(t, err)

	err = ndb.connectRegister(txn, winner, 500, primitives.Covenant{Items: [][]byte{nil, []byte("data")}}, outpoint(7, 0), 20)
	require.NoError(t, err)
	want := blake2b.Sum256([]byte("data"))
	require.Equal(t, want[:], txn.Record().Data)
}

func TestConnectRegisterRejectsWrongValue(t *testing.T) {
	ndb, _, cleanup := newTestDB(t, nil)
	defer cleanup()

	winner := outpoint(5, 0)
	rec := &auction.Record{Value: 500, Highest: 1000, Transfer: -1, Revoked: -1, HasOwner: true, Owner: winner}
	txn := auction.NewTxn(rec)

	err := ndb.connectRegister(txn, winner, 501, primitives.Covenant{Items: [][]byte{nil, []byte("data")}}, outpoint(7, 0), 20)
	require.ErrorIs(t, err, nsderrors.ErrBadRegisterValue)
}

func TestRenewalCommitmentMaturityBounds(t *testing.T) {
	var commitHash chainhash.Hash
	commitHash[0] = 0xAB

	headers := &fakeHeaders{heights: map[chainhash.Hash]uint32{commitHash: 240}}
	ndb, _, cleanup := newTestDB(t, headers)
	defer cleanup()
	ndb.params.RenewalMaturity = 400
	ndb.params.RenewalPeriod = 1000

	err := ndb.verifyRenewalCommitment(commitHash[:], 241)
	require.ErrorIs(t, err, nsderrors.ErrBadRenewalPremature)

	err = ndb.verifyRenewalCommitment(commitHash[:], 640)
	require.NoError(t, err)

	err = ndb.verifyRenewalCommitment(commitHash[:], 1241)
	require.ErrorIs(t, err, nsderrors.ErrBadRenewalStale)
}

func TestConnectFinalizeMaturityBoundary(t *testing.T) {
	ndb, _, cleanup := newTestDB(t, nil)
	defer cleanup()

	owner := outpoint(1, 0)
	rec := &auction.Record{Value: -1, Highest: -1, Revoked: -1, HasOwner: true, Owner: owner, Transfer: 100}
	txn := auction.NewTxn(rec)

	err := ndb.connectFinalize(txn, owner, outpoint(2, 0), 100+ndb.params.TransferLockup-1)
	require.Error(t, err)

	txn2 := auction.NewTxn(rec.Clone())
	err = ndb.connectFinalize(txn2, owner, outpoint(2, 0), 100+ndb.params.TransferLockup)
	require.NoError(t, err)
}

func TestSaveViewAndRevertRoundTrip(t *testing.T) {
	ndb, tree, cleanup := newTestDB(t, nil)
	defer cleanup()

	nameHash, err := names.HashName([]byte("roundtrip"))
	require.NoError(t, err)

	rec0, err := ndb.GetAuction(nameHash)
	require.NoError(t, err)
	require.Nil(t, rec0)

	view := ndb.NewView()
	openTx := &primitives.Transaction{
		Hash:    chainhash.Hash{4},
		Outputs: []primitives.Output{{Covenant: primitives.Covenant{Type: primitives.CovenantOpen, Items: [][]byte{nameHash[:]}}}},
	}
	require.NoError(t, ndb.connectTx(openTx, view, 5))
	require.NoError(t, ndb.SaveView(view, 5))

	loaded, err := ndb.GetAuction(nameHash)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.EqualValues(t, 5, loaded.Height)
	require.NotEmpty(t, tree.entries)

	require.NoError(t, ndb.Revert(5))

	after, err := ndb.GetAuction(nameHash)
	require.NoError(t, err)
	require.Nil(t, after)
	require.Empty(t, tree.entries)
}

func TestConnectClaimUsesVerifier(t *testing.T) {
	ndb, _, cleanup := newTestDB(t, nil)
	defer cleanup()
	ndb.verifier = stubVerifier{proof: &dnssec.ProofData{Rollover: true}}

	nameHash, err := names.HashName([]byte("claimed"))
	require.NoError(t, err)

	view := ndb.NewView()
	tx := &primitives.Transaction{
		Hash: chainhash.Hash{6},
		Outputs: []primitives.Output{
			{Covenant: primitives.Covenant{Type: primitives.CovenantClaim, Items: [][]byte{nameHash[:], []byte("claimed"), []byte("proof")}}},
		},
	}
	require.NoError(t, ndb.connectTx(tx, view, 1))

	rec, err := view.Peek(nameHash)
	require.NoError(t, err)
	require.True(t, rec.Claimed)
	require.False(t, rec.Weak)
}

type stubVerifier struct {
	proof *dnssec.ProofData
	err   error
}

func (s stubVerifier) Verify(name string, proof []byte) (*dnssec.ProofData, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.proof, nil
}

