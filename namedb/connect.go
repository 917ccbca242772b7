package namedb

import (
	"github.com/handshake-labs/nsd/auction"
	"github.com/handshake-labs/nsd/coinview"
	"github.com/handshake-labs/nsd/errors"
	"github.com/handshake-labs/nsd/names"
	"github.com/handshake-labs/nsd/primitives"
	"github.com/libsv/go-bt/v2/chainhash"
	"golang.org/x/crypto/blake2b"
)

// ConnectBlock applies block's covenant outputs to view in block order,
// per spec.md §4.5/§4.6. The coinbase is skipped: its CLAIM/NONE covenants
// are checked by names.VerifyCovenants but create no auction record here;
// only CLAIM outputs of non-coinbase transactions reach connectClaim.
func (d *NameDB) ConnectBlock(block *primitives.Block, view *coinview.View, height uint32) error {
	for _, tx := range block.NonCoinbase() {
		if err := d.connectTx(tx, view, height); err != nil {
			return err
		}
	}
	return nil
}

func (d *NameDB) connectTx(tx *primitives.Transaction, view *coinview.View, height uint32) error {
	for i, out := range tx.Outputs {
		c := out.Covenant
		if c.Type == primitives.CovenantNone || c.Type == primitives.CovenantRedeem {
			continue
		}

		nameHash := c.NameHash()

		txn, err := view.Txn(nameHash)
		if err != nil {
			return err
		}

		var prevout primitives.Outpoint
		if i < len(tx.Inputs) {
			prevout = tx.Inputs[i].Prevout
		}
		newOwner := primitives.Outpoint{Hash: tx.Hash, Index: uint32(i)}

		switch c.Type {
		case primitives.CovenantOpen:
			err = d.connectOpenOrBid(txn, nameHash, nil, height)
		case primitives.CovenantBid:
			err = d.connectOpenOrBid(txn, nameHash, c.Items[primitives.ItemBidName], height)
		case primitives.CovenantClaim:
			err = d.connectClaim(txn, c, height)
		case primitives.CovenantReveal:
			err = d.connectReveal(txn, height, out.Value, newOwner)
		case primitives.CovenantRegister:
			err = d.connectRegister(txn, prevout, out.Value, c, newOwner, height)
		case primitives.CovenantUpdate:
			err = d.connectUpdate(txn, prevout, newOwner, c, height)
		case primitives.CovenantRenew:
			err = d.connectRenew(txn, prevout, newOwner, c, height)
		case primitives.CovenantTransfer:
			err = d.connectTransfer(txn, prevout, newOwner, height)
		case primitives.CovenantFinalize:
			err = d.connectFinalize(txn, prevout, newOwner, height)
		case primitives.CovenantRevoke:
			err = d.connectRevoke(txn, prevout, height)
		}

		if err != nil {
			return err
		}
	}

	return nil
}

// resetRecord reinitializes txn's record as a freshly opened auction,
// clearing every field an earlier cycle may have left behind.
func resetRecord(txn *auction.AuctionTxn, height uint32, claimed, weak bool) {
	txn.SetHeight(height)
	txn.SetRenewal(height)
	txn.ClearOwner()
	txn.SetValue(-1)
	txn.SetHighest(-1)
	txn.SetData(nil)
	txn.SetTransfer(-1)
	txn.SetRevoked(-1)
	txn.SetClaimed(claimed)
	txn.SetWeak(weak)
}

// connectOpenOrBid handles OPEN and BID: both may (re)open an absent or
// expired auction, subject to the reserved-name and rollout gates (spec.md
// §4.2's isAvailable, checked here by hash since OPEN never carries the
// plaintext name). BID additionally commits the plaintext name the moment
// it is first revealed on-chain; name is nil for OPEN.
func (d *NameDB) connectOpenOrBid(txn *auction.AuctionTxn, nameHash [32]byte, name []byte, height uint32) error {
	rec := txn.Record()

	if rec.IsNull() || rec.IsExpired(height, d.params) {
		if names.IsReserved(nameHash, height, d.params, d.table) {
			return errors.New(errors.ERR_CONTEXTUAL_AUCTION_NOT_AVAILABLE, "name %x is reserved", nameHash)
		}
		if !d.params.NoRollout {
			start, _ := names.Rollout(nameHash, d.params)
			if height < start {
				return errors.New(errors.ERR_CONTEXTUAL_AUCTION_NOT_AVAILABLE, "name %x has not reached its rollout window", nameHash)
			}
		}
		resetRecord(txn, height, false, false)
	}

	if name != nil {
		txn.SetName(name)
	}

	return nil
}

// connectClaim handles CLAIM: a DNSSEC-proven assertion of an existing
// name, bypassing the auction cycle entirely (spec.md §4.8).
func (d *NameDB) connectClaim(txn *auction.AuctionTxn, c primitives.Covenant, height uint32) error {
	rec := txn.Record()

	if !rec.IsNull() && !rec.IsExpired(height, d.params) {
		return errors.New(errors.ERR_CONTEXTUAL_AUCTION_NOT_AVAILABLE, "name is already under auction")
	}
	if height >= d.params.AuctionStart+d.params.ClaimPeriod {
		return errors.New(errors.ERR_CONTEXTUAL_AUCTION_NOT_AVAILABLE, "claim period has elapsed")
	}
	if d.verifier == nil {
		return errors.New(errors.ERR_CONTEXTUAL_BAD_CLAIM_PROOF, "no DNSSEC verifier configured")
	}

	name := c.Items[primitives.ItemClaimName]
	proof, err := d.verifier.Verify(string(name), c.Items[primitives.ItemClaimProof])
	if err != nil {
		return errors.New(errors.ERR_CONTEXTUAL_BAD_CLAIM_PROOF, "claim proof for %q: %v", string(name), err)
	}

	resetRecord(txn, height, true, !proof.Rollover)
	txn.SetName(name)

	return nil
}

// connectReveal folds one REVEAL into the running second-price election
// (spec.md §4.3/§5): Owner tracks the current top bidder, Highest its bid,
// Value the eventual REGISTER price. Ties at the top are broken by the
// earlier outpoint, per primitives.Outpoint.Less.
func (d *NameDB) connectReveal(txn *auction.AuctionTxn, height uint32, value int64, out primitives.Outpoint) error {
	rec := txn.Record()

	if rec.State(height, d.params) != auction.Reveal {
		return errors.New(errors.ERR_CONTEXTUAL_WRONG_PHASE, "REVEAL outside the reveal phase")
	}

	switch {
	case !rec.HasOwner:
		txn.SetOwner(out, true)
		txn.SetHighest(value)

	case value > rec.Highest:
		txn.SetValue(rec.Highest)
		txn.SetHighest(value)
		txn.SetOwner(out, true)

	case value == rec.Highest:
		if rec.Value != rec.Highest {
			txn.SetValue(rec.Highest)
		}
		if out.Less(rec.Owner) {
			txn.SetOwner(out, true)
		}

	default: // value < rec.Highest
		if value > rec.Value {
			txn.SetValue(value)
		}
	}

	return nil
}

// connectRegister handles REGISTER: the auction winner claims ownership at
// the second-price value already tallied by connectReveal (spec.md §4.3's
// vickrey rule). The output paying for the REGISTER must carry exactly
// Record.Value — any other amount is rejected here, since names.VerifyCovenants
// has no access to the auction record and can only check the name hash.
func (d *NameDB) connectRegister(txn *auction.AuctionTxn, prevout primitives.Outpoint, value int64, c primitives.Covenant, newOwner primitives.Outpoint, height uint32) error {
	rec := txn.Record()
	if !rec.HasOwner || prevout != rec.Owner {
		return errors.New(errors.ERR_CONTEXTUAL_NOT_OWNER, "REGISTER prevout does not match the auction winner")
	}
	if value != rec.Value {
		return errors.NewContextualError(errors.ERR_CONTEXTUAL_BAD_REGISTER_VALUE, "REGISTER pays %d, want the second price %d", value, rec.Value)
	}

	txn.SetOwner(newOwner, true)
	txn.SetData(commitResourceData(c.Items[primitives.ItemRegisterData]))
	txn.SetRenewal(height)

	return nil
}

// commitResourceData stores a name's resource record as its blake2b-256
// commitment rather than the raw bytes: Record.Data then has a fixed size
// regardless of maxResourceSize, and REGISTER/UPDATE agree on the one thing
// a committed resource can mean.
func commitResourceData(resource []byte) []byte {
	if resource == nil {
		return nil
	}
	sum := blake2b.Sum256(resource)
	return sum[:]
}

// connectUpdate handles UPDATE: requires prevout = owner, replaces data,
// and — when the renewal-commitment item is present — re-anchors the
// renewal window the same way RENEW does.
func (d *NameDB) connectUpdate(txn *auction.AuctionTxn, prevout, newOwner primitives.Outpoint, c primitives.Covenant, height uint32) error {
	rec := txn.Record()
	if !rec.HasOwner || prevout != rec.Owner {
		return errors.New(errors.ERR_CONTEXTUAL_NOT_OWNER, "UPDATE prevout does not match the current owner")
	}

	txn.SetOwner(newOwner, true)
	txn.SetData(commitResourceData(c.Items[primitives.ItemUpdateData]))

	if len(c.Items) > primitives.ItemUpdateRenewalHash {
		if err := d.verifyRenewalCommitment(c.Items[primitives.ItemUpdateRenewalHash], height); err != nil {
			return err
		}
		txn.SetRenewal(height)
	}

	return nil
}

// connectRenew handles RENEW: requires prevout = owner and a valid renewal
// commitment, re-anchoring the renewal window without touching data.
func (d *NameDB) connectRenew(txn *auction.AuctionTxn, prevout, newOwner primitives.Outpoint, c primitives.Covenant, height uint32) error {
	rec := txn.Record()
	if !rec.HasOwner || prevout != rec.Owner {
		return errors.New(errors.ERR_CONTEXTUAL_NOT_OWNER, "RENEW prevout does not match the current owner")
	}

	if err := d.verifyRenewalCommitment(c.Items[primitives.ItemRenewRenewalHash], height); err != nil {
		return err
	}

	txn.SetOwner(newOwner, true)
	txn.SetRenewal(height)

	return nil
}

// connectTransfer handles TRANSFER: requires prevout = owner, marking the
// height a committed-address change began maturing toward FINALIZE.
func (d *NameDB) connectTransfer(txn *auction.AuctionTxn, prevout, newOwner primitives.Outpoint, height uint32) error {
	rec := txn.Record()
	if !rec.HasOwner || prevout != rec.Owner {
		return errors.New(errors.ERR_CONTEXTUAL_NOT_OWNER, "TRANSFER prevout does not match the current owner")
	}

	txn.SetOwner(newOwner, true)
	txn.SetTransfer(int64(height))

	return nil
}

// connectFinalize handles FINALIZE: requires prevout = owner, a prior
// TRANSFER, and transferLockup blocks of maturity since it started.
func (d *NameDB) connectFinalize(txn *auction.AuctionTxn, prevout, newOwner primitives.Outpoint, height uint32) error {
	rec := txn.Record()
	if !rec.HasOwner || prevout != rec.Owner {
		return errors.New(errors.ERR_CONTEXTUAL_NOT_OWNER, "FINALIZE prevout does not match the current owner")
	}
	if rec.Transfer < 0 {
		return errors.New(errors.ERR_CONTEXTUAL_COVENANT_TRANSITION, "FINALIZE without a pending TRANSFER")
	}
	if int64(height) < rec.Transfer+int64(d.params.TransferLockup) {
		return errors.ErrBadFinalizeMaturity
	}

	txn.SetOwner(newOwner, true)
	txn.SetTransfer(-1)
	txn.SetRenewal(height)

	return nil
}

// connectRevoke handles REVOKE: requires prevout = owner, permanently
// burning the name until auctionMaturity elapses (spec.md §4.3).
func (d *NameDB) connectRevoke(txn *auction.AuctionTxn, prevout primitives.Outpoint, height uint32) error {
	rec := txn.Record()
	if !rec.HasOwner || prevout != rec.Owner {
		return errors.New(errors.ERR_CONTEXTUAL_NOT_OWNER, "REVOKE prevout does not match the current owner")
	}

	txn.SetRevoked(int64(height))
	txn.ClearOwner()
	txn.SetData(nil)
	txn.SetTransfer(-1)

	return nil
}

// verifyRenewalCommitment enforces spec.md §4.5's renewal-commitment
// window: the committed header must be old enough to have matured
// (renewalMaturity) but not so old it has fallen out of the renewal
// period. The bounds are computed in int64 so a chain height below
// renewalMaturity simply pushes maxCommit negative instead of underflowing;
// that correctly rejects any real (non-negative) commit height as premature
// rather than skipping the check.
func (d *NameDB) verifyRenewalCommitment(hashBytes []byte, height uint32) error {
	if d.headers == nil {
		return nil
	}

	var h chainhash.Hash
	copy(h[:], hashBytes)

	commitHeight, ok := d.headers.HeightOf(h)
	if !ok {
		return errors.New(errors.ERR_CONTEXTUAL_COVENANT_TRANSITION, "renewal commitment references an unknown header")
	}

	maxCommit := int64(height) - int64(d.params.RenewalMaturity)
	minCommit := int64(height) - int64(d.params.RenewalPeriod)

	if int64(commitHeight) > maxCommit {
		return errors.ErrBadRenewalPremature
	}
	if int64(commitHeight) < minCommit {
		return errors.ErrBadRenewalStale
	}

	return nil
}
