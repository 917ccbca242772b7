package chaincfg

// SimNetParams disable the rollout gate and reserved-name lookups entirely,
// for simulation harnesses that want every name immediately biddable.
var SimNetParams = Params{
	Name:              "simnet",
	MaxMoney:          MainNetParams.MaxMoney,
	MaxScriptStack:    MainNetParams.MaxScriptStack,
	MaxCovenantSize:   MainNetParams.MaxCovenantSize,
	MaxResourceSize:   MainNetParams.MaxResourceSize,
	MaxNameSize:       MainNetParams.MaxNameSize,
	MaxRewardFraction: MainNetParams.MaxRewardFraction,

	TreeInterval:    2,
	BiddingPeriod:   2,
	RevealPeriod:    2,
	RenewalWindow:   50,
	AuctionMaturity: 10,
	WeakLockup:      20,
	TransferLockup:  2,
	RenewalMaturity: 10,
	RenewalPeriod:   1000,
	RolloutInterval: 1,
	AuctionStart:    0,
	ClaimPeriod:     200,
	ClaimPrefix:     "sns",

	NoRollout:  true,
	NoReserved: true,
}
