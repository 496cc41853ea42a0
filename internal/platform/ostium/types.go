package ostium

// Pair is one trading pair from the Ostium subgraph. Rate and open-interest
// fields are 1e18 fixed-point integers serialized as decimal strings;
// curFundingLong/Short are per-second rates, rolloverFeePerBlock is per
// Arbitrum block.
type Pair struct {
	ID                  string    `json:"id"`
	From                string    `json:"from"`
	To                  string    `json:"to"`
	LongOI              string    `json:"longOI"`
	ShortOI             string    `json:"shortOI"`
	CurFundingLong      string    `json:"curFundingLong"`
	CurFundingShort     string    `json:"curFundingShort"`
	RolloverFeePerBlock string    `json:"rolloverFeePerBlock"`
	Group               PairGroup `json:"group"`
}

// PairGroup is the asset-group classification of a pair.
type PairGroup struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Price is one entry from the price feed: the latest published bid/mid/ask
// for a pair, keyed by its from/to legs.
type Price struct {
	From         string  `json:"from"`
	To           string  `json:"to"`
	Bid          float64 `json:"bid"`
	Mid          float64 `json:"mid"`
	Ask          float64 `json:"ask"`
	IsMarketOpen bool    `json:"isMarketOpen"`
}
