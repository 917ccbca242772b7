// Package names implements the name-rules component of spec.md §4.2: the
// character-set and hashing rules every name must satisfy, the rollout
// schedule gating when a name becomes biddable, and the covenant sanity and
// contextual-legality checks applied to every name-touching transaction.
//
// The split between sane.go (structural checks on a transaction alone) and
// contextual.go (checks requiring the spent outputs and current height)
// mirrors the teacher's TxValidator.go/Validator.go split between
// policy-free structural checks and state-dependent ones.
package names

import (
	"encoding/binary"

	"github.com/handshake-labs/nsd/chaincfg"
	"github.com/handshake-labs/nsd/errors"
	"github.com/handshake-labs/nsd/namehash"
	"github.com/handshake-labs/nsd/reserved"
	"golang.org/x/crypto/blake2b"
)

// blacklist holds ICANN/overlay-reserved labels that may never be
// registered, regardless of rollout or reservation status.
var blacklist = map[string]bool{
	"localhost": true,
	"local":     true,
	"example":   true,
	"invalid":   true,
	"test":      true,
	"onion":     true,
}

// VerifyName enforces spec.md §3's character-set rules: length 1..63,
// digits/lowercase/hyphen/underscore only, no leading or trailing hyphen or
// underscore, and not a blacklisted label. Uppercase and any high-bit byte
// are rejected by the character-set scan.
func VerifyName(name []byte) bool {
	n := len(name)
	if n == 0 || n > 63 {
		return false
	}

	for i, b := range name {
		switch {
		case b >= '0' && b <= '9':
		case b >= 'a' && b <= 'z':
		case b == '-' || b == '_':
			if i == 0 || i == n-1 {
				return false
			}
		default:
			return false
		}
	}

	if blacklist[string(name)] {
		return false
	}

	return true
}

// HashName returns the SHA3-256 digest of name after verifying it.
func HashName(name []byte) ([32]byte, error) {
	if !VerifyName(name) {
		return [32]byte{}, errors.NewNameError("invalid name: %q", string(name))
	}
	return namehash.Hash(name), nil
}

// Blind computes a bidder's commitment to value under nonce: BLAKE2b-256 of
// LE64(value) ‖ nonce.
func Blind(value uint64, nonce [32]byte) [32]byte {
	var buf [40]byte
	binary.LittleEndian.PutUint64(buf[0:8], value)
	copy(buf[8:], nonce[:])
	return blake2b.Sum256(buf[:])
}

// Rollout returns the height at which nameHash's weekly rollout window
// opens, and the week index (0..51) that was assigned to it. week =
// nameHash mod 52, computed digit-by-digit over the hash bytes using the
// `256 mod n` identity so no big-integer division is needed.
func Rollout(nameHash [32]byte, params *chaincfg.Params) (startHeight uint32, week uint32) {
	week = modByte(nameHash[:], 52)
	startHeight = params.AuctionStart + week*params.RolloutInterval
	return startHeight, week
}

// modByte computes (big-endian unsigned integer represented by b) mod n.
func modByte(b []byte, n uint32) uint32 {
	var r uint32
	for _, digit := range b {
		r = (r*256 + uint32(digit)) % n
	}
	return r
}

// IsReserved reports whether nameHash is present in the reserved-name table
// and the claim period during which reservations are honored has not yet
// elapsed.
func IsReserved(nameHash [32]byte, height uint32, params *chaincfg.Params, table *reserved.Table) bool {
	if params.NoReserved || table == nil {
		return false
	}
	if height >= params.AuctionStart+params.ClaimPeriod {
		return false
	}
	return table.Has(nameHash)
}

// IsAvailable reports whether name may be OPENed or BID on at height: it
// must verify, must not be reserved, and its weekly rollout window must
// have opened.
func IsAvailable(name []byte, height uint32, params *chaincfg.Params, table *reserved.Table) bool {
	if !VerifyName(name) {
		return false
	}

	hash := namehash.Hash(name)
	if IsReserved(hash, height, params, table) {
		return false
	}

	if params.NoRollout {
		return true
	}

	start, _ := Rollout(hash, params)
	return height >= start
}
