package names

import (
	"testing"

	"github.com/handshake-labs/nsd/primitives"
	"github.com/stretchr/testify/require"
)

type fakeOutputView map[primitives.Outpoint]primitives.Output

func (v fakeOutputView) Output(o primitives.Outpoint) (primitives.Output, bool) {
	out, ok := v[o]
	return out, ok
}

func TestVerifyCovenantsAllowsNoneToBid(t *testing.T) {
	prevout := primitives.Outpoint{Index: 0}
	view := fakeOutputView{
		prevout: {Covenant: primitives.Covenant{Type: primitives.CovenantNone}},
	}
	tx := &primitives.Transaction{
		Inputs:  []primitives.Input{{Prevout: prevout}},
		Outputs: []primitives.Output{{Covenant: primitives.Covenant{Type: primitives.CovenantBid}}},
	}

	_, err := VerifyCovenants(tx, view, 0, nil, nil)
	require.NoError(t, err)
}

func TestVerifyCovenantsRejectsIllegalTransition(t *testing.T) {
	prevout := primitives.Outpoint{Index: 0}
	view := fakeOutputView{
		prevout: {Covenant: primitives.Covenant{Type: primitives.CovenantRevoke}},
	}
	tx := &primitives.Transaction{
		Inputs:  []primitives.Input{{Prevout: prevout}},
		Outputs: []primitives.Output{{Covenant: primitives.Covenant{Type: primitives.CovenantUpdate}}},
	}

	_, err := VerifyCovenants(tx, view, 0, nil, nil)
	require.Error(t, err, "REVOKE is a permanent burn, no transition is ever legal")
}

func TestVerifyCovenantsRejectsMissingSpentOutput(t *testing.T) {
	tx := &primitives.Transaction{
		Inputs: []primitives.Input{{Prevout: primitives.Outpoint{Index: 99}}},
	}
	_, err := VerifyCovenants(tx, fakeOutputView{}, 0, nil, nil)
	require.Error(t, err)
}

func TestVerifyRevealAcceptsMatchingBlindAndSufficientValue(t *testing.T) {
	var nonce [32]byte
	nonce[0] = 0x42
	blind := Blind(1000, nonce)

	coin := primitives.Output{
		Value:    1500,
		Covenant: primitives.Covenant{Type: primitives.CovenantBid, Items: [][]byte{{}, {}, blind[:]}},
	}
	nc := primitives.Output{
		Value:    1000,
		Covenant: primitives.Covenant{Type: primitives.CovenantReveal, Items: [][]byte{{}, nonce[:]}},
	}

	require.NoError(t, verifyReveal(coin, nc))
}

func TestVerifyRevealRejectsWrongNonce(t *testing.T) {
	var nonce [32]byte
	nonce[0] = 0x42
	blind := Blind(1000, nonce)

	coin := primitives.Output{
		Value:    1500,
		Covenant: primitives.Covenant{Type: primitives.CovenantBid, Items: [][]byte{{}, {}, blind[:]}},
	}
	var wrongNonce [32]byte
	wrongNonce[0] = 0x99
	nc := primitives.Output{
		Value:    1000,
		Covenant: primitives.Covenant{Type: primitives.CovenantReveal, Items: [][]byte{{}, wrongNonce[:]}},
	}

	require.Error(t, verifyReveal(coin, nc))
}

func TestVerifyRevealRejectsUnderlockedValue(t *testing.T) {
	var nonce [32]byte
	blind := Blind(1000, nonce)

	coin := primitives.Output{
		Value:    500, // less than the revealed value
		Covenant: primitives.Covenant{Type: primitives.CovenantBid, Items: [][]byte{{}, {}, blind[:]}},
	}
	nc := primitives.Output{
		Value:    1000,
		Covenant: primitives.Covenant{Type: primitives.CovenantReveal, Items: [][]byte{{}, nonce[:]}},
	}

	require.Error(t, verifyReveal(coin, nc))
}

func TestVerifyPreservedRejectsValueOrAddressChange(t *testing.T) {
	coin := primitives.Output{Value: 1000, Address: []byte("addrA")}

	sameValueDifferentAddr := primitives.Output{Value: 1000, Address: []byte("addrB")}
	require.Error(t, verifyPreserved(coin, sameValueDifferentAddr))

	differentValueSameAddr := primitives.Output{Value: 999, Address: []byte("addrA")}
	require.Error(t, verifyPreserved(coin, differentValueSameAddr))

	unchanged := primitives.Output{Value: 1000, Address: []byte("addrA")}
	require.NoError(t, verifyPreserved(coin, unchanged))
}

func TestVerifyFinalizeRequiresCommittedAddress(t *testing.T) {
	coin := primitives.Output{
		Covenant: primitives.Covenant{
			Type:  primitives.CovenantTransfer,
			Items: [][]byte{{}, []byte("committed-address")},
		},
	}

	matching := primitives.Output{Address: []byte("committed-address")}
	require.NoError(t, verifyFinalize(coin, matching))

	mismatched := primitives.Output{Address: []byte("other-address")}
	require.Error(t, verifyFinalize(coin, mismatched))
}

func TestVerifyFinalizeRejectsNonTransferPredecessor(t *testing.T) {
	coin := primitives.Output{Covenant: primitives.Covenant{Type: primitives.CovenantRegister}}
	nc := primitives.Output{Address: []byte("addr")}
	require.Error(t, verifyFinalize(coin, nc))
}

func TestVerifyCovenantsRejectsClaimRedeemedByNonClaim(t *testing.T) {
	prevout := primitives.Outpoint{Index: 0}
	view := fakeOutputView{
		prevout: {Covenant: primitives.Covenant{Type: primitives.CovenantClaim}},
	}
	tx := &primitives.Transaction{
		Inputs:  []primitives.Input{{Prevout: prevout}},
		Outputs: []primitives.Output{{Covenant: primitives.Covenant{Type: primitives.CovenantRedeem}}},
	}

	_, err := VerifyCovenants(tx, view, 0, nil, nil)
	require.Error(t, err)
}
