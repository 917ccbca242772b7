package chaincfg

// RegTestParams match the literal parameter set used by spec.md §8's
// end-to-end scenarios, so tests built against those scenarios can use this
// network directly: treeInterval=5, biddingPeriod=5, revealPeriod=10,
// renewalWindow=200, auctionMaturity=50, weakLockup=400,
// rolloutInterval=50, auctionStart=0.
var RegTestParams = Params{
	Name:              "regtest",
	MaxMoney:          MainNetParams.MaxMoney,
	MaxScriptStack:    MainNetParams.MaxScriptStack,
	MaxCovenantSize:   MainNetParams.MaxCovenantSize,
	MaxResourceSize:   MainNetParams.MaxResourceSize,
	MaxNameSize:       MainNetParams.MaxNameSize,
	MaxRewardFraction: MainNetParams.MaxRewardFraction,

	TreeInterval:    5,
	BiddingPeriod:   5,
	RevealPeriod:    10,
	RenewalWindow:   200,
	AuctionMaturity: 50,
	WeakLockup:      400,
	TransferLockup:  10,
	RenewalMaturity: 400,
	RenewalPeriod:   10_000,
	RolloutInterval: 50,
	AuctionStart:    0,
	ClaimPeriod:     2000,
	ClaimPrefix:     "rns",

	NoRollout:  false,
	NoReserved: false,
}
