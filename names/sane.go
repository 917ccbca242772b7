package names

import (
	"github.com/handshake-labs/nsd/chaincfg"
	"github.com/handshake-labs/nsd/errors"
	"github.com/handshake-labs/nsd/namehash"
	"github.com/handshake-labs/nsd/primitives"
)

// linkRequired is the set of covenant types that move an existing name
// record forward and therefore require a same-index input (spec.md §4.2:
// "the input index exists where a predecessor input is required").
var linkRequired = map[primitives.CovenantType]bool{
	primitives.CovenantReveal:   true,
	primitives.CovenantRegister: true,
	primitives.CovenantRedeem:   true,
	primitives.CovenantUpdate:   true,
	primitives.CovenantRenew:    true,
	primitives.CovenantTransfer: true,
	primitives.CovenantFinalize: true,
	primitives.CovenantRevoke:   true,
}

// HasSaneCovenants is the structural (sanity) check of spec.md §4.2: it
// inspects tx alone, with no reference to chain state. A false return means
// the caller must reject the transaction outright.
func HasSaneCovenants(tx *primitives.Transaction, params *chaincfg.Params) bool {
	return CheckSaneCovenants(tx, params) == nil
}

// CheckSaneCovenants is HasSaneCovenants with a diagnostic error instead of
// a bare boolean, for logging and testing.
func CheckSaneCovenants(tx *primitives.Transaction, params *chaincfg.Params) error {
	if tx.IsCoinbase {
		return checkCoinbaseSane(tx, params)
	}

	for i, out := range tx.Outputs {
		if err := checkOutputSane(tx, i, out, params); err != nil {
			return err
		}
	}

	return nil
}

func checkCoinbaseSane(tx *primitives.Transaction, params *chaincfg.Params) error {
	for i, out := range tx.Outputs {
		switch out.Covenant.Type {
		case primitives.CovenantNone:
			if err := checkItemCount(out.Covenant, 0); err != nil {
				return err
			}
		case primitives.CovenantClaim:
			if err := checkClaimItems(out.Covenant, params); err != nil {
				return err
			}
		default:
			return errors.NewSaneError("coinbase output %d: covenant %s not allowed in coinbase", i, out.Covenant.Type)
		}
	}
	return nil
}

func checkOutputSane(tx *primitives.Transaction, i int, out primitives.Output, params *chaincfg.Params) error {
	c := out.Covenant

	if linkRequired[c.Type] && i >= len(tx.Inputs) {
		return errors.NewSaneError("output %d: covenant %s requires a linked input at the same index", i, c.Type)
	}

	switch c.Type {
	case primitives.CovenantNone:
		return checkItemCount(c, 0)

	case primitives.CovenantOpen:
		return checkItemCount(c, 1)

	case primitives.CovenantBid:
		if err := checkItemCount(c, 3); err != nil {
			return err
		}
		return checkNameMatchesHash(c, primitives.ItemBidNameHash, primitives.ItemBidName, func() error {
			return checkLen(c.Items[primitives.ItemBidBlind], 32, 32, "blind")
		})

	case primitives.CovenantReveal:
		if err := checkItemCount(c, 2); err != nil {
			return err
		}
		return checkLen(c.Items[primitives.ItemRevealNonce], 32, 32, "nonce")

	case primitives.CovenantClaim:
		return checkClaimItems(c, params)

	case primitives.CovenantRegister:
		if err := checkItemCount(c, 2); err != nil {
			return err
		}
		return checkLen(c.Items[primitives.ItemRegisterData], 0, params.MaxResourceSize, "data")

	case primitives.CovenantRedeem:
		return checkItemCount(c, 1)

	case primitives.CovenantUpdate:
		if len(c.Items) != 2 && len(c.Items) != 3 {
			return errors.NewSaneError("output %d: UPDATE requires 2 or 3 items, got %d", i, len(c.Items))
		}
		if err := checkLen(c.Items[primitives.ItemUpdateData], 0, params.MaxResourceSize, "data"); err != nil {
			return err
		}
		if len(c.Items) == 3 {
			return checkLen(c.Items[primitives.ItemUpdateRenewalHash], 32, 32, "renewal hash")
		}
		return nil

	case primitives.CovenantRenew:
		if err := checkItemCount(c, 2); err != nil {
			return err
		}
		return checkLen(c.Items[primitives.ItemRenewRenewalHash], 32, 32, "renewal hash")

	case primitives.CovenantTransfer:
		if err := checkItemCount(c, 2); err != nil {
			return err
		}
		return checkLen(c.Items[primitives.ItemTransferAddress], 0, 40, "address")

	case primitives.CovenantFinalize:
		if err := checkItemCount(c, 3); err != nil {
			return err
		}
		return checkNameMatchesHash(c, primitives.ItemFinalizeNameHash, primitives.ItemFinalizeName, nil)

	case primitives.CovenantRevoke:
		return checkItemCount(c, 1)

	default:
		return errors.NewSaneError("output %d: unknown covenant type %d", i, c.Type)
	}
}

func checkClaimItems(c primitives.Covenant, params *chaincfg.Params) error {
	if err := checkItemCount(c, 3); err != nil {
		return err
	}
	if err := checkLen(c.Items[primitives.ItemClaimProof], 1, params.MaxCovenantSize, "proof"); err != nil {
		return err
	}
	return checkNameMatchesHash(c, primitives.ItemClaimNameHash, primitives.ItemClaimName, nil)
}

func checkItemCount(c primitives.Covenant, want int) error {
	if len(c.Items) != want {
		return errors.NewSaneError("covenant %s: expected %d items, got %d", c.Type, want, len(c.Items))
	}
	return nil
}

func checkLen(b []byte, min, max int, field string) error {
	if len(b) < min || len(b) > max {
		return errors.NewSaneError("%s: length %d outside [%d,%d]", field, len(b), min, max)
	}
	return nil
}

// checkNameMatchesHash verifies items[nameIdx] is a valid name whose
// SHA3-256 hash equals the 32-byte items[hashIdx], then runs extra (if
// non-nil) for any further field checks specific to the caller.
func checkNameMatchesHash(c primitives.Covenant, hashIdx, nameIdx int, extra func() error) error {
	if err := checkLen(c.Items[hashIdx], 32, 32, "name hash"); err != nil {
		return err
	}

	name := c.Items[nameIdx]
	if !VerifyName(name) {
		return errors.NewNameError("covenant %s: invalid name %q", c.Type, string(name))
	}

	var want [32]byte
	copy(want[:], c.Items[hashIdx])
	if namehash.Hash(name) != want {
		return errors.New(errors.ERR_SANE_COVENANT_HASH_MISMATCH, "covenant %s: name does not match stored hash", c.Type)
	}

	if extra != nil {
		return extra()
	}
	return nil
}
