// Package hyperliquid fetches perpetual metadata and market contexts from the
// Hyperliquid info API, covering the main dex and every builder-deployed dex,
// and normalizes them into instrument snapshots.
package hyperliquid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultBaseURL is the public Hyperliquid API root.
const DefaultBaseURL = "https://api.hyperliquid.xyz"

// Client is the REST client for the Hyperliquid info API. All reads go
// through the single POST /info endpoint, dispatched by a "type" field.
type Client struct {
	baseURL    string
	httpClient *http.Client

	// SkipBuilders restricts FetchAll to the main dex.
	SkipBuilders bool
}

// NewClient creates a new Hyperliquid info client.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// PerpDexs returns the builder-deployed perp dexes. The API pads the list
// with nulls, which are dropped here.
func (c *Client) PerpDexs(ctx context.Context) ([]PerpDex, error) {
	body, err := c.postInfo(ctx, map[string]any{"type": "perpDexs"})
	if err != nil {
		return nil, fmt.Errorf("hyperliquid: fetch perp dexs: %w", err)
	}

	var raw []*PerpDex
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("hyperliquid: decode perp dexs: %w", err)
	}

	dexs := make([]PerpDex, 0, len(raw))
	for _, d := range raw {
		if d != nil && d.Name != "" {
			dexs = append(dexs, *d)
		}
	}
	return dexs, nil
}

// MetaAndAssetCtxs returns the universe and the index-aligned market contexts
// for one dex. Pass the empty string for the main dex.
func (c *Client) MetaAndAssetCtxs(ctx context.Context, dex string) (Meta, []AssetCtx, error) {
	payload := map[string]any{"type": "metaAndAssetCtxs"}
	if dex != "" {
		payload["dex"] = dex
	}

	body, err := c.postInfo(ctx, payload)
	if err != nil {
		return Meta{}, nil, fmt.Errorf("hyperliquid: fetch meta for dex %q: %w", dex, err)
	}

	// The reply is a two-element heterogeneous array: [meta, assetCtxs].
	var parts []json.RawMessage
	if err := json.Unmarshal(body, &parts); err != nil {
		return Meta{}, nil, fmt.Errorf("hyperliquid: decode meta envelope: %w", err)
	}
	if len(parts) < 2 {
		return Meta{}, nil, fmt.Errorf("hyperliquid: meta reply has %d elements, want 2", len(parts))
	}

	var meta Meta
	if err := json.Unmarshal(parts[0], &meta); err != nil {
		return Meta{}, nil, fmt.Errorf("hyperliquid: decode universe: %w", err)
	}
	var ctxs []AssetCtx
	if err := json.Unmarshal(parts[1], &ctxs); err != nil {
		return Meta{}, nil, fmt.Errorf("hyperliquid: decode asset contexts: %w", err)
	}
	return meta, ctxs, nil
}

// FetchAll collects every perpetual across the main dex and all builder
// dexes. A builder dex that fails to fetch is skipped so one bad sub-market
// cannot take down the whole poll; the main dex failing is fatal.
func (c *Client) FetchAll(ctx context.Context) ([]Perpetual, error) {
	meta, ctxs, err := c.MetaAndAssetCtxs(ctx, "")
	if err != nil {
		return nil, err
	}
	perps := joinUniverse("", meta, ctxs)

	if c.SkipBuilders {
		return perps, nil
	}

	dexs, err := c.PerpDexs(ctx)
	if err != nil {
		return nil, err
	}
	for _, dex := range dexs {
		meta, ctxs, err := c.MetaAndAssetCtxs(ctx, dex.Name)
		if err != nil {
			continue
		}
		perps = append(perps, joinUniverse(dex.Name, meta, ctxs)...)
	}
	return perps, nil
}

func joinUniverse(dex string, meta Meta, ctxs []AssetCtx) []Perpetual {
	perps := make([]Perpetual, 0, len(meta.Universe))
	for i, asset := range meta.Universe {
		if asset.IsDelisted || asset.Name == "" {
			continue
		}
		var ctx AssetCtx
		if i < len(ctxs) {
			ctx = ctxs[i]
		}
		perps = append(perps, Perpetual{Coin: asset.Name, Dex: dex, Ctx: ctx})
	}
	return perps
}

func (c *Client) postInfo(ctx context.Context, payload map[string]any) ([]byte, error) {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/info", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
