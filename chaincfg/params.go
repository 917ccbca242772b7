// Package chaincfg defines the network-parameter surface consumed by the
// name auction consensus engine, following the per-network Params struct
// layout of pkg/go-chaincfg/params.go.
package chaincfg

// Params holds every consensus constant the name auction engine reads from
// outside itself (spec.md §6, "Network-parameter surface"). A Params value
// is immutable once constructed and is shared read-only across goroutines.
type Params struct {
	// Name is a human-readable identifier for the network ("main", "testnet", ...).
	Name string

	// MaxMoney is the maximum number of base units that can ever exist.
	MaxMoney int64

	// MaxScriptStack bounds script interpreter stack depth during covenant
	// item validation.
	MaxScriptStack int

	// MaxCovenantSize bounds the serialized size of a single covenant.
	MaxCovenantSize int

	// MaxResourceSize bounds the `data` field of an auction record.
	MaxResourceSize int

	// MaxNameSize bounds a name's length in octets.
	MaxNameSize int

	// MaxRewardFraction * MaxMoney yields MaxReward, the cap on a single
	// DNSSEC claim's reward (spec.md §4.8).
	MaxRewardFraction float64

	// TreeInterval is the tree-commitment interval; OpenPeriod =
	// TreeInterval + 1 (spec.md §3).
	TreeInterval uint32

	// BiddingPeriod is the length, in blocks, of the BIDDING phase.
	BiddingPeriod uint32

	// RevealPeriod is the length, in blocks, of the REVEAL phase.
	RevealPeriod uint32

	// RenewalWindow is how long after the most recent renewal a CLOSED,
	// owned name may go before it is considered expired.
	RenewalWindow uint32

	// AuctionMaturity is how long after revocation a name stays REVOKED
	// before it is considered expired and may be reopened.
	AuctionMaturity uint32

	// WeakLockup is the extended post-claim lock window for claims that
	// relied on a non-rolled-over trust anchor.
	WeakLockup uint32

	// TransferLockup is the number of blocks a TRANSFER must mature before
	// FINALIZE is accepted.
	TransferLockup uint32

	// RenewalMaturity is the minimum age, in blocks, a renewal-commitment
	// header must have relative to the current height.
	RenewalMaturity uint32

	// RenewalPeriod bounds how stale a renewal-commitment header may be.
	RenewalPeriod uint32

	// RolloutInterval is the number of blocks between successive weekly
	// rollout windows.
	RolloutInterval uint32

	// AuctionStart is the height at which non-reserved names begin rolling
	// out.
	AuctionStart uint32

	// ClaimPeriod is the height (relative to AuctionStart) after which
	// DNSSEC claims are no longer admissible and reserved-name status
	// lapses for any name not yet claimed.
	ClaimPeriod uint32

	// ClaimPrefix is the network-specific short string prefixed to
	// base32-encoded claim data in a DNS TXT record (spec.md §6).
	ClaimPrefix string

	// NoRollout disables the weekly rollout gate entirely (regtest/simnet
	// convenience).
	NoRollout bool

	// NoReserved disables reserved-name lookups entirely (regtest/simnet
	// convenience).
	NoReserved bool
}

// OpenPeriod is TreeInterval + 1, per spec.md §3.
func (p *Params) OpenPeriod() uint32 {
	return p.TreeInterval + 1
}

// MaxReward is the cap on a single DNSSEC claim's reward, in base units.
func (p *Params) MaxReward() int64 {
	return int64(float64(p.MaxMoney) * p.MaxRewardFraction)
}
