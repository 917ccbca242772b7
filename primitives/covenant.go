// Package primitives defines the transaction-level data model the name
// auction engine reasons about: outpoints, covenants, outputs and
// transactions. It plays the role the teacher's model package plays for
// blocks and bt.Tx, but the shape here follows spec.md §3/§4 instead of the
// Bitcoin transaction model — a covenant is carried directly on an output,
// not encoded inside a locking script.
package primitives

// CovenantType tags how an output constrains its own future spend. The
// eleven-member superset of spec.md §9's Open Question is implemented here;
// RENEW and FINALIZE are first-class rather than disabled.
type CovenantType uint8

const (
	CovenantNone CovenantType = iota
	CovenantClaim
	CovenantOpen
	CovenantBid
	CovenantReveal
	CovenantRegister
	CovenantRedeem
	CovenantUpdate
	CovenantRenew
	CovenantTransfer
	CovenantFinalize
	CovenantRevoke
)

func (t CovenantType) String() string {
	switch t {
	case CovenantNone:
		return "NONE"
	case CovenantClaim:
		return "CLAIM"
	case CovenantOpen:
		return "OPEN"
	case CovenantBid:
		return "BID"
	case CovenantReveal:
		return "REVEAL"
	case CovenantRegister:
		return "REGISTER"
	case CovenantRedeem:
		return "REDEEM"
	case CovenantUpdate:
		return "UPDATE"
	case CovenantRenew:
		return "RENEW"
	case CovenantTransfer:
		return "TRANSFER"
	case CovenantFinalize:
		return "FINALIZE"
	case CovenantRevoke:
		return "REVOKE"
	default:
		return "UNKNOWN"
	}
}

// Covenant item indices by type, per spec.md §4.2's sanity-check item
// counts. Items are opaque byte strings; names/sane.go, names/contextual.go
// and namedb/connect.go interpret them positionally.
const (
	// OPEN: [nameHash]
	ItemOpenNameHash = 0

	// BID: [nameHash, name, blind]
	ItemBidNameHash = 0
	ItemBidName     = 1
	ItemBidBlind     = 2

	// REVEAL: [nameHash, nonce]
	ItemRevealNameHash = 0
	ItemRevealNonce    = 1

	// CLAIM: [nameHash, name, proof]
	ItemClaimNameHash = 0
	ItemClaimName     = 1
	ItemClaimProof    = 2

	// REGISTER: [nameHash, data]
	ItemRegisterNameHash = 0
	ItemRegisterData     = 1

	// REDEEM: [nameHash]
	ItemRedeemNameHash = 0

	// UPDATE: [nameHash, data] or [nameHash, data, renewalBlockHash]
	ItemUpdateNameHash    = 0
	ItemUpdateData        = 1
	ItemUpdateRenewalHash = 2

	// RENEW: [nameHash, renewalBlockHash]
	ItemRenewNameHash    = 0
	ItemRenewRenewalHash = 1

	// TRANSFER: [nameHash, address]
	ItemTransferNameHash = 0
	ItemTransferAddress  = 1

	// FINALIZE: [nameHash, name, flags]
	ItemFinalizeNameHash = 0
	ItemFinalizeName     = 1

	// REVOKE: [nameHash]
	ItemRevokeNameHash = 0
)

// Covenant is the structured annotation an Output carries constraining how
// it may be spent.
type Covenant struct {
	Type  CovenantType
	Items [][]byte
}

// NameHash returns the covenant's first item, which is the name hash for
// every non-NONE covenant type.
func (c Covenant) NameHash() [32]byte {
	var h [32]byte
	if len(c.Items) > 0 {
		copy(h[:], c.Items[0])
	}
	return h
}
