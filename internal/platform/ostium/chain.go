package ostium

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/minglew/perpscope/internal/domain"
)

// Chain probes the Arbitrum chain Ostium settles on. A head block that stops
// advancing while the price feed keeps publishing points at a stale feed, not
// a quiet market.
type Chain struct {
	ec *ethclient.Client
}

var _ domain.ChainProbe = (*Chain)(nil)

// DialChain connects to an Arbitrum RPC endpoint.
func DialChain(ctx context.Context, rpcURL string) (*Chain, error) {
	ec, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("ostium: dial arbitrum rpc: %w", err)
	}
	return &Chain{ec: ec}, nil
}

// Head returns the current head block number and its timestamp.
func (c *Chain) Head(ctx context.Context) (uint64, time.Time, error) {
	header, err := c.ec.HeaderByNumber(ctx, nil)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("ostium: fetch head block: %w", err)
	}
	return header.Number.Uint64(), time.Unix(int64(header.Time), 0).UTC(), nil
}

// Close releases the underlying RPC connection.
func (c *Chain) Close() {
	c.ec.Close()
}
