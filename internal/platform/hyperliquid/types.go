package hyperliquid

// PerpDex is one builder-deployed perp dex from the "perpDexs" info request.
// The main dex is not listed; it is addressed by the empty name.
type PerpDex struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	Deployer string `json:"deployer"`
}

// AssetMeta is one entry of the universe list in the metaAndAssetCtxs reply.
type AssetMeta struct {
	Name        string `json:"name"`
	MaxLeverage int    `json:"maxLeverage"`
	IsDelisted  bool   `json:"isDelisted,omitempty"`
}

// Meta is the first element of the metaAndAssetCtxs reply pair.
type Meta struct {
	Universe []AssetMeta `json:"universe"`
}

// AssetCtx is the per-asset market context, index-aligned with the universe.
// All numeric fields come over the wire as decimal strings.
type AssetCtx struct {
	Funding      string   `json:"funding"`
	DayNtlVlm    string   `json:"dayNtlVlm"`
	OpenInterest string   `json:"openInterest"`
	MarkPx       string   `json:"markPx"`
	MidPx        string   `json:"midPx"`
	OraclePx     string   `json:"oraclePx"`
	ImpactPxs    []string `json:"impactPxs"`
	Premium      string   `json:"premium"`
}

// Perpetual joins one universe entry with its market context, qualified by the
// dex it trades on. Builder-dex contracts get a "dex:COIN" symbol; main-dex
// contracts keep the bare coin name.
type Perpetual struct {
	Coin string
	Dex  string
	Ctx  AssetCtx
}

// Symbol is the dex-qualified symbol.
func (p Perpetual) Symbol() string {
	if p.Dex == "" {
		return p.Coin
	}
	return p.Dex + ":" + p.Coin
}
