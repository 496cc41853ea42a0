package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/minglew/perpscope/internal/domain"
)

// comparisonKey holds the latest published comparison as one JSON value.
// Whole-value SET keeps reads atomic: a reader never sees half of one pass
// and half of another.
const comparisonKey = "comparison:latest"

// ComparisonCache implements domain.ComparisonCache on a single Redis key.
type ComparisonCache struct {
	rdb *redis.Client
}

// NewComparisonCache creates a ComparisonCache backed by the given Client.
func NewComparisonCache(c *Client) *ComparisonCache {
	return &ComparisonCache{rdb: c.Underlying()}
}

// Set stores the comparison, replacing the previous pass.
func (cc *ComparisonCache) Set(ctx context.Context, c domain.Comparison) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("redis: marshal comparison %s: %w", c.PassID, err)
	}
	if err := cc.rdb.Set(ctx, comparisonKey, payload, 0).Err(); err != nil {
		return fmt.Errorf("redis: set comparison: %w", err)
	}
	return nil
}

// Get retrieves the latest comparison. It returns domain.ErrNoSnapshot when
// no pass has been published yet.
func (cc *ComparisonCache) Get(ctx context.Context) (domain.Comparison, error) {
	payload, err := cc.rdb.Get(ctx, comparisonKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Comparison{}, domain.ErrNoSnapshot
		}
		return domain.Comparison{}, fmt.Errorf("redis: get comparison: %w", err)
	}

	var c domain.Comparison
	if err := json.Unmarshal(payload, &c); err != nil {
		return domain.Comparison{}, fmt.Errorf("redis: decode comparison: %w", err)
	}
	return c, nil
}

// PublishComparison lets the cache act as an engine sink.
func (cc *ComparisonCache) PublishComparison(ctx context.Context, c domain.Comparison) error {
	return cc.Set(ctx, c)
}

// Compile-time interface check.
var _ domain.ComparisonCache = (*ComparisonCache)(nil)
