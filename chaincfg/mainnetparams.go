package chaincfg

// MainNetParams are the consensus parameters for the production network.
var MainNetParams = Params{
	Name:              "main",
	MaxMoney:          2_041_882_899 * 1_000_000,
	MaxScriptStack:    1000,
	MaxCovenantSize:   579,
	MaxResourceSize:   512,
	MaxNameSize:       63,
	MaxRewardFraction: 0.075,

	TreeInterval:    36,
	BiddingPeriod:   5 * 144,
	RevealPeriod:    10 * 144,
	RenewalWindow:   365 * 144,
	AuctionMaturity: 14 * 144,
	WeakLockup:      365 * 144,
	TransferLockup:  288,
	RenewalMaturity: 30 * 144,
	RenewalPeriod:   180 * 144,
	RolloutInterval: 7 * 144,
	AuctionStart:    0,
	ClaimPeriod:     52 * 7 * 144,
	ClaimPrefix:     "hns",

	NoRollout:  false,
	NoReserved: false,
}
