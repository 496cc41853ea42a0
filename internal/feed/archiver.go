package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/minglew/perpscope/internal/domain"
)

// BatchArchiver writes each raw snapshot batch to cold storage, partitioned
// by venue and day so historical funding data can be replayed later.
type BatchArchiver struct {
	blob   domain.BlobWriter
	prefix string
	logger *slog.Logger
}

// NewBatchArchiver creates an archiver rooted at the given key prefix.
func NewBatchArchiver(blob domain.BlobWriter, prefix string, logger *slog.Logger) *BatchArchiver {
	return &BatchArchiver{
		blob:   blob,
		prefix: prefix,
		logger: logger.With(slog.String("component", "batch_archiver")),
	}
}

// Archive uploads one batch as a JSON object. The key layout is
// "<prefix>/<venue>/<yyyy-mm-dd>/<unix-nano>.json".
func (a *BatchArchiver) Archive(ctx context.Context, b domain.SnapshotBatch) error {
	if b.Empty() {
		return nil
	}

	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("marshal batch: %w", err)
	}

	key := fmt.Sprintf("%s/%s/%s/%d.json",
		a.prefix, b.Venue, b.Timestamp.Format("2006-01-02"), b.Timestamp.UnixNano())

	if err := a.blob.Put(ctx, key, bytes.NewReader(data), "application/json"); err != nil {
		return fmt.Errorf("upload batch %s: %w", key, err)
	}

	a.logger.Debug("batch archived",
		slog.String("key", key),
		slog.Int("instruments", len(b.Instruments)),
	)
	return nil
}
