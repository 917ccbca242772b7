package chaincfg

// TestNetParams are the consensus parameters for the long-running public
// test network. Window lengths are shortened relative to MainNetParams so
// auctions complete quickly during interoperability testing.
var TestNetParams = Params{
	Name:              "testnet",
	MaxMoney:          MainNetParams.MaxMoney,
	MaxScriptStack:    MainNetParams.MaxScriptStack,
	MaxCovenantSize:   MainNetParams.MaxCovenantSize,
	MaxResourceSize:   MainNetParams.MaxResourceSize,
	MaxNameSize:       MainNetParams.MaxNameSize,
	MaxRewardFraction: MainNetParams.MaxRewardFraction,

	TreeInterval:    8,
	BiddingPeriod:   5 * 36,
	RevealPeriod:    10 * 36,
	RenewalWindow:   30 * 144,
	AuctionMaturity: 2 * 36,
	WeakLockup:      14 * 144,
	TransferLockup:  20,
	RenewalMaturity: 2 * 144,
	RenewalPeriod:   10 * 144,
	RolloutInterval: 36,
	AuctionStart:    0,
	ClaimPeriod:     4 * 7 * 144,
	ClaimPrefix:     "hnt",

	NoRollout:  false,
	NoReserved: false,
}
