package domain

import (
	"context"
	"io"
	"time"
)

// ComparisonCache stores the latest published comparison for fast reads by
// the HTTP layer and late-joining WebSocket clients.
type ComparisonCache interface {
	Set(ctx context.Context, c Comparison) error
	Get(ctx context.Context) (Comparison, error)
}

// StreamMessage represents a single entry from a durable stream.
type StreamMessage struct {
	ID      string
	Payload []byte
}

// SignalBus provides pub/sub and durable streams for comparison events.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	StreamAppend(ctx context.Context, stream string, payload []byte) error
	StreamRead(ctx context.Context, stream string, lastID string, count int) ([]StreamMessage, error)
}

// AlertStore persists sent opportunity alerts for operational audit.
type AlertStore interface {
	Record(ctx context.Context, a Alert) error
	ListRecent(ctx context.Context, limit int) ([]Alert, error)
}

// BlobWriter uploads raw objects to cold storage.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
}

// ChainProbe checks the head of the chain a venue settles on, as a freshness
// sanity check for that venue's off-chain data feed.
type ChainProbe interface {
	Head(ctx context.Context) (blockNumber uint64, blockTime time.Time, err error)
}

// RateLimiter bounds request rates per key over a sliding window.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	Wait(ctx context.Context, key string) error
}

// LockManager provides distributed locks, used for monitor leadership so two
// replicas never alert on the same pass.
type LockManager interface {
	// Acquire obtains the lock or returns ErrLockHeld. The returned func
	// releases it and is safe to call more than once.
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error)
}
