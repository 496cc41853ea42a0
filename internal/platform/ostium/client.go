// Package ostium fetches trading pairs from the Ostium subgraph and prices
// from the Ostium metadata backend, and normalizes them into instrument
// snapshots. Ostium settles on Arbitrum; a chain probe is provided as a
// freshness check against the off-chain feed.
package ostium

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Default endpoints for Arbitrum mainnet.
const (
	DefaultSubgraphURL = "https://subgraph.satsuma-prod.com/ostium/mainnet/api"
	DefaultPricesURL   = "https://metadata-backend.ostium.io/PricePublish/latest-prices"
)

// Client queries the Ostium subgraph (GraphQL) and price feed (REST).
type Client struct {
	subgraphURL string
	pricesURL   string
	httpClient  *http.Client
}

// NewClient creates a new Ostium client. Empty URLs fall back to the mainnet
// defaults.
func NewClient(subgraphURL, pricesURL string) *Client {
	if subgraphURL == "" {
		subgraphURL = DefaultSubgraphURL
	}
	if pricesURL == "" {
		pricesURL = DefaultPricesURL
	}
	return &Client{
		subgraphURL: subgraphURL,
		pricesURL:   pricesURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// graphqlRequest is the standard GraphQL request envelope.
type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// graphqlResponse is the standard GraphQL response envelope.
type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// GetPairs returns every listed trading pair with its open interest and
// current carry rates.
func (c *Client) GetPairs(ctx context.Context) ([]Pair, error) {
	query := `
		query Pairs($first: Int!) {
			pairs(first: $first) {
				id
				from
				to
				longOI
				shortOI
				curFundingLong
				curFundingShort
				rolloverFeePerBlock
				group {
					id
					name
				}
			}
		}
	`

	respData, err := c.doQuery(ctx, query, map[string]any{"first": 500})
	if err != nil {
		return nil, fmt.Errorf("ostium: fetch pairs: %w", err)
	}

	var result struct {
		Pairs []Pair `json:"pairs"`
	}
	if err := json.Unmarshal(respData, &result); err != nil {
		return nil, fmt.Errorf("ostium: decode pairs: %w", err)
	}
	return result.Pairs, nil
}

// GetLatestPrices returns the most recently published price per pair.
func (c *Client) GetLatestPrices(ctx context.Context) ([]Price, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.pricesURL, nil)
	if err != nil {
		return nil, fmt.Errorf("ostium: create prices request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ostium: fetch prices: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ostium: read prices response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ostium: prices HTTP %d: %s", resp.StatusCode, string(body))
	}

	var prices []Price
	if err := json.Unmarshal(body, &prices); err != nil {
		return nil, fmt.Errorf("ostium: decode prices: %w", err)
	}
	return prices, nil
}

// doQuery executes a GraphQL query against the subgraph and returns the raw
// "data" field from the response.
func (c *Client) doQuery(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error) {
	jsonBody, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("marshal graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.subgraphURL, bytes.NewReader(jsonBody))
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

	var gqlResp graphqlResponse
	if err := json.Unmarshal(body, &gqlResp); err != nil {
		return nil, fmt.Errorf("decode graphql response: %w", err)
	}
	if len(gqlResp.Errors) > 0 {
		return nil, fmt.Errorf("graphql error: %s", gqlResp.Errors[0].Message)
	}
	return gqlResp.Data, nil
}
