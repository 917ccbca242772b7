package names

import (
	"bytes"

	"github.com/handshake-labs/nsd/chaincfg"
	"github.com/handshake-labs/nsd/claim"
	"github.com/handshake-labs/nsd/errors"
	"github.com/handshake-labs/nsd/namehash"
	"github.com/handshake-labs/nsd/primitives"
	"github.com/handshake-labs/nsd/reserved"
)

// OutputView resolves the output an input spends. The engine's block-connect
// path supplies this from the per-block coin view plus whatever external
// UTXO index holds already-confirmed outputs (spec.md §1: block/UTXO
// storage is an external collaborator referenced only by interface).
type OutputView interface {
	Output(outpoint primitives.Outpoint) (primitives.Output, bool)
}

// transitions enumerates, for each spent covenant type, the set of new
// covenant types a linked output may carry (spec.md §4.2's table). A type
// absent from this map (REVOKE) permits no linked output at all.
var transitions = map[primitives.CovenantType]map[primitives.CovenantType]bool{
	primitives.CovenantNone: {
		primitives.CovenantNone: true, primitives.CovenantOpen: true, primitives.CovenantBid: true,
	},
	primitives.CovenantOpen: {
		primitives.CovenantNone: true, primitives.CovenantOpen: true, primitives.CovenantBid: true,
	},
	primitives.CovenantRedeem: {
		primitives.CovenantNone: true, primitives.CovenantOpen: true, primitives.CovenantBid: true,
	},
	primitives.CovenantBid: {
		primitives.CovenantReveal: true,
	},
	primitives.CovenantClaim: {
		primitives.CovenantRegister: true, primitives.CovenantRedeem: true,
	},
	primitives.CovenantReveal: {
		primitives.CovenantRegister: true, primitives.CovenantRedeem: true,
	},
	primitives.CovenantRegister: {
		primitives.CovenantUpdate: true, primitives.CovenantRenew: true,
		primitives.CovenantTransfer: true, primitives.CovenantRevoke: true,
	},
	primitives.CovenantUpdate: {
		primitives.CovenantUpdate: true, primitives.CovenantRenew: true,
		primitives.CovenantTransfer: true, primitives.CovenantRevoke: true,
	},
	primitives.CovenantRenew: {
		primitives.CovenantUpdate: true, primitives.CovenantRenew: true,
		primitives.CovenantTransfer: true, primitives.CovenantRevoke: true,
	},
	primitives.CovenantFinalize: {
		primitives.CovenantUpdate: true, primitives.CovenantRenew: true,
		primitives.CovenantTransfer: true, primitives.CovenantRevoke: true,
	},
	primitives.CovenantTransfer: {
		primitives.CovenantUpdate: true, primitives.CovenantRenew: true,
		primitives.CovenantRevoke: true, primitives.CovenantFinalize: true,
	},
	// CovenantRevoke: permanent burn, no entry => no linked output allowed.
}

// VerifyCovenants is the contextual-legality check of spec.md §4.2. It
// returns the coinbase's conjured subsidy (airdrop + DNSSEC-claim value) for
// a coinbase transaction, or 0 for an ordinary transaction. A non-nil error
// means the caller must reject the transaction (and the containing block,
// if this runs during connect).
func VerifyCovenants(tx *primitives.Transaction, view OutputView, height uint32, params *chaincfg.Params, table *reserved.Table) (int64, error) {
	if tx.IsCoinbase {
		return verifyCoinbase(tx, height, params, table)
	}

	for i, in := range tx.Inputs {
		coin, ok := view.Output(in.Prevout)
		if !ok {
			return 0, errors.New(errors.ERR_CONTEXTUAL_COVENANT_TRANSITION, "input %d: spent output not found", i)
		}

		nc, hasLinked := tx.LinkedOutput(i)
		if !hasLinked {
			// Spending into a plain payment with no same-index output is
			// only legal where NONE is an allowed destination.
			if allowed := transitions[coin.Covenant.Type]; allowed == nil || !allowed[primitives.CovenantNone] {
				return 0, errors.New(errors.ERR_CONTEXTUAL_COVENANT_TRANSITION, "input %d: covenant %s requires a linked output", i, coin.Covenant.Type)
			}
			continue
		}

		if err := verifyTransition(coin, nc, params); err != nil {
			return 0, err
		}
	}

	return 0, nil
}

func verifyTransition(coin, nc primitives.Output, params *chaincfg.Params) error {
	uc := coin.Covenant

	allowed := transitions[uc.Type]
	if allowed == nil || !allowed[nc.Covenant.Type] {
		return errors.New(errors.ERR_CONTEXTUAL_COVENANT_TRANSITION, "%s cannot transition to %s", uc.Type, nc.Covenant.Type)
	}

	switch nc.Covenant.Type {
	case primitives.CovenantReveal:
		return verifyReveal(coin, nc)

	case primitives.CovenantRegister, primitives.CovenantRedeem:
		if nc.Covenant.Type == primitives.CovenantRedeem && uc.Type == primitives.CovenantClaim {
			return errors.New(errors.ERR_CONTEXTUAL_COVENANT_TRANSITION, "a CLAIM cannot be REDEEMed")
		}
		if uc.NameHash() != nc.Covenant.NameHash() {
			return errors.New(errors.ERR_CONTEXTUAL_COVENANT_TRANSITION, "name hash changed across %s->%s", uc.Type, nc.Covenant.Type)
		}
		return nil

	case primitives.CovenantUpdate, primitives.CovenantRenew:
		return verifyPreserved(coin, nc)

	case primitives.CovenantTransfer:
		return verifyPreserved(coin, nc)

	case primitives.CovenantRevoke:
		return nil

	case primitives.CovenantFinalize:
		return verifyFinalize(coin, nc)

	default:
		return nil
	}
}

// verifyReveal checks the BID->REVEAL step: the bidder must reveal the
// (value, nonce) preimage of their blind, and the coin (the BID output)
// must have locked at least as much as the revealed value; the remainder
// returns to the bidder as change.
func verifyReveal(coin, nc primitives.Output) error {
	if len(nc.Covenant.Items) <= primitives.ItemRevealNonce {
		return errors.NewSaneError("REVEAL: missing nonce item")
	}

	var nonce [32]byte
	copy(nonce[:], nc.Covenant.Items[primitives.ItemRevealNonce])

	if nc.Value < 0 {
		return errors.New(errors.ERR_CONTEXTUAL_BLIND_MISMATCH, "REVEAL: negative value")
	}

	got := Blind(uint64(nc.Value), nonce)

	if len(coin.Covenant.Items) <= primitives.ItemBidBlind {
		return errors.NewSaneError("BID: missing blind item")
	}
	var want [32]byte
	copy(want[:], coin.Covenant.Items[primitives.ItemBidBlind])

	if got != want {
		return errors.New(errors.ERR_CONTEXTUAL_BLIND_MISMATCH, "REVEAL: blind does not match bid commitment")
	}

	if coin.Value < nc.Value {
		return errors.New(errors.ERR_CONTEXTUAL_BLIND_MISMATCH, "REVEAL: locked value %d less than revealed value %d", coin.Value, nc.Value)
	}

	return nil
}

// verifyPreserved checks that a simple state-advancing transition (UPDATE,
// RENEW, TRANSFER) keeps the coin's value and destination address intact.
func verifyPreserved(coin, nc primitives.Output) error {
	if coin.Value != nc.Value {
		return errors.New(errors.ERR_CONTEXTUAL_COVENANT_TRANSITION, "%s->%s: value not preserved", coin.Covenant.Type, nc.Covenant.Type)
	}
	if !bytes.Equal(coin.Address, nc.Address) {
		return errors.New(errors.ERR_CONTEXTUAL_COVENANT_TRANSITION, "%s->%s: address not preserved", coin.Covenant.Type, nc.Covenant.Type)
	}
	return nil
}

// verifyFinalize checks TRANSFER->FINALIZE: the output's address must equal
// the address the TRANSFER covenant committed to, bit for bit.
func verifyFinalize(coin, nc primitives.Output) error {
	if coin.Covenant.Type != primitives.CovenantTransfer {
		return errors.New(errors.ERR_CONTEXTUAL_COVENANT_TRANSITION, "FINALIZE must follow TRANSFER")
	}
	if len(coin.Covenant.Items) <= primitives.ItemTransferAddress {
		return errors.NewSaneError("TRANSFER: missing address item")
	}

	committed := coin.Covenant.Items[primitives.ItemTransferAddress]
	if !bytes.Equal(committed, nc.Address) {
		return errors.ErrBadFinalizeAddress
	}
	return nil
}

// verifyCoinbase sums airdrop-proof values (one witness item per extra
// input, each bounded by MaxMoney) and DNSSEC-claim values from CLAIM
// outputs, per spec.md §4.2's "Coinbase conjuration". A claim's value is
// the reserved-table value of the name it establishes (table lookup, since
// this module does not resolve the DNSSEC chain itself); its reward is that
// value minus the proof's declared fee.
func verifyCoinbase(tx *primitives.Transaction, height uint32, params *chaincfg.Params, table *reserved.Table) (int64, error) {
	var total int64

	for i, in := range tx.Inputs {
		if len(in.Prevout.Hash) == 0 {
			continue
		}
		v := airdropValue(in, params)
		if v < 0 || v > params.MaxMoney {
			return 0, errors.New(errors.ERR_SANE_COINBASE, "coinbase airdrop witness %d out of range", i)
		}
		total += v
	}

	for _, out := range tx.Outputs {
		if out.Covenant.Type != primitives.CovenantClaim {
			continue
		}
		if len(out.Covenant.Items) <= primitives.ItemClaimProof {
			return 0, errors.NewSaneError("CLAIM: missing proof item")
		}

		result, err := claim.ParseData(out.Covenant.Items[primitives.ItemClaimProof], params.ClaimPrefix, params.MaxReward())
		if err != nil {
			return 0, errors.New(errors.ERR_CONTEXTUAL_BAD_CLAIM_PROOF, "CLAIM: %v", err)
		}

		name := out.Covenant.Items[primitives.ItemClaimName]
		var value uint64
		if table != nil {
			if entry, ok := table.Get(namehash.Hash(name)); ok {
				value = entry.Value(table)
			}
		}

		reward := int64(value) - result.Fee
		if reward < 0 || reward > params.MaxReward() {
			return 0, errors.New(errors.ERR_CONTEXTUAL_BAD_CLAIM_PROOF, "CLAIM: reward out of range")
		}

		total += reward
	}

	return total, nil
}

// airdropValue is a placeholder extraction point for the airdrop-proof
// witness format; this module does not implement the airdrop merkle-proof
// scheme itself (out of scope, spec.md §1), so it treats every extra input
// as contributing zero until a concrete airdrop verifier is wired in.
func airdropValue(_ primitives.Input, _ *chaincfg.Params) int64 {
	return 0
}
