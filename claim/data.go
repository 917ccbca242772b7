// Package claim implements the ownership-claim data format of spec.md §4.8
// and §6: a compact binary payload, base32-encoded and prefixed for
// transport inside a DNS TXT record, that lets an existing DNS name's owner
// establish the equivalent name in this engine without an auction. Parsing
// an embedded proof here is the covenant-sanity/coinbase-conjuration half of
// the job; resolving the proof's DNSSEC chain and alias-mapped target is the
// external collaborator named in spec.md §1 and is not implemented by this
// package.
package claim

import (
	"encoding/binary"
	"strings"

	"github.com/handshake-labs/nsd/errors"
	base32 "github.com/multiformats/go-base32"
	"golang.org/x/crypto/blake2b"
)

// maxVersion is the highest claim-data version this engine understands.
const maxVersion = 31

const checksumSize = 4

// ProofData is the canonical, decoded form of a claim proof (spec.md §4.8).
// Name, Target, Weak, Rollover, Inception and Expiration are populated by
// the DNSSEC-resolution step and are left zero-valued when ParseData is
// used standalone, as it is from the covenant-validation path.
type ProofData struct {
	Version    uint8
	Hash       []byte
	Fee        int64
	Forked     bool
	Value      int64
	Name       string
	Target     string
	Weak       bool
	Rollover   bool
	Inception  uint32
	Expiration uint32
}

// CreateData encodes a claim proof body: version ‖ hashLen ‖ hash ‖
// varint(fee) ‖ forkedFlag ‖ checksum, base32-encoded and prefixed, per
// spec.md §6's textual format.
func CreateData(hash []byte, fee int64, forked bool, prefix string) (string, error) {
	if len(hash) < 2 || len(hash) > 40 {
		return "", errors.NewInvalidArgumentError("claim data: hash length %d outside [2,40]", len(hash))
	}
	if fee < 0 {
		return "", errors.NewInvalidArgumentError("claim data: negative fee")
	}
	if forked && fee != 0 {
		return "", errors.NewInvalidArgumentError("claim data: forked claims must carry zero fee")
	}

	var body []byte
	body = append(body, 0) // version
	body = append(body, byte(len(hash)))
	body = append(body, hash...)

	var feeBuf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(feeBuf[:], uint64(fee))
	body = append(body, feeBuf[:n]...)

	if forked {
		body = append(body, 1)
	} else {
		body = append(body, 0)
	}

	sum := checksum(body)
	body = append(body, sum...)

	return prefix + claimEncoding.EncodeToString(body), nil
}

// claimEncoding is unpadded, so claim data fits in a DNS TXT record with no
// wasted bytes. go-base32's StdEncoding decodes case-insensitively, which
// lets createData's output be typed in by hand without case errors.
var claimEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// ParseData is CreateData's inverse. It verifies the prefix, version,
// hash-length, fee cap, forked/fee consistency and checksum, and returns
// the decoded fields. maxReward bounds the proof's fee (spec.md §4.8's
// fee ≤ MAX_REWARD = 0.075·MAX_MONEY); pass 0 for no cap. It does not verify
// the DNSSEC chain or resolve the claim's target name; a higher layer must
// do that before trusting Name or Target on the returned ProofData.
func ParseData(proof []byte, prefix string, maxReward int64) (*ProofData, error) {
	text := string(proof)
	if !strings.HasPrefix(text, prefix) {
		return nil, errors.NewInvalidArgumentError("claim data: missing prefix %q", prefix)
	}
	text = text[len(prefix):]

	body, err := claimEncoding.DecodeString(text)
	if err != nil {
		return nil, errors.NewInvalidArgumentError("claim data: bad base32 encoding: %v", err)
	}

	if len(body) < 1+1+2+1+1+checksumSize {
		return nil, errors.NewInvalidArgumentError("claim data: truncated")
	}

	body, sum := body[:len(body)-checksumSize], body[len(body)-checksumSize:]
	if string(checksum(body)) != string(sum) {
		return nil, errors.NewInvalidArgumentError("claim data: checksum mismatch")
	}

	version := body[0]
	if version > maxVersion {
		return nil, errors.NewInvalidArgumentError("claim data: version %d exceeds max %d", version, maxVersion)
	}

	hashLen := int(body[1])
	if hashLen < 2 || hashLen > 40 {
		return nil, errors.NewInvalidArgumentError("claim data: hash length %d outside [2,40]", hashLen)
	}

	rest := body[2:]
	if len(rest) < hashLen {
		return nil, errors.NewInvalidArgumentError("claim data: truncated hash")
	}
	hash := rest[:hashLen]
	rest = rest[hashLen:]

	fee, n := binary.Uvarint(rest)
	if n <= 0 {
		return nil, errors.NewInvalidArgumentError("claim data: bad fee varint")
	}
	rest = rest[n:]

	if len(rest) < 1 {
		return nil, errors.NewInvalidArgumentError("claim data: missing forked flag")
	}
	forked := rest[0] != 0

	if forked && fee != 0 {
		return nil, errors.NewInvalidArgumentError("claim data: forked claim carries nonzero fee")
	}
	if maxReward > 0 && int64(fee) > maxReward {
		return nil, errors.NewInvalidArgumentError("claim data: fee %d exceeds cap %d", fee, maxReward)
	}

	return &ProofData{
		Version: version,
		Hash:    append([]byte(nil), hash...),
		Fee:     int64(fee),
		Forked:  forked,
	}, nil
}

func checksum(body []byte) []byte {
	sum := blake2b.Sum256(body)
	return sum[:checksumSize]
}
