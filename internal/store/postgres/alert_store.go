package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/minglew/perpscope/internal/domain"
)

// AlertStore implements domain.AlertStore using PostgreSQL. It is an
// operational audit trail of sent alerts, used for cooldown forensics and the
// recent-alerts API, not a market-data archive.
type AlertStore struct {
	pool *pgxpool.Pool
}

// NewAlertStore creates a new AlertStore backed by the given connection pool.
func NewAlertStore(pool *pgxpool.Pool) *AlertStore {
	return &AlertStore{pool: pool}
}

// Record appends one sent alert.
func (s *AlertStore) Record(ctx context.Context, a domain.Alert) error {
	const query = `
		INSERT INTO alerts (id, asset, execution, current_spread_usd, break_even_spread_usd, total_cost_usd, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.pool.Exec(ctx, query,
		a.ID, a.Asset, string(a.Execution),
		a.CurrentSpreadUSD, a.BreakEvenSpreadUSD, a.TotalCostUSD,
		a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: record alert %s: %w", a.ID, err)
	}
	return nil
}

// ListRecent returns the most recently sent alerts, newest first.
func (s *AlertStore) ListRecent(ctx context.Context, limit int) ([]domain.Alert, error) {
	if limit <= 0 {
		limit = 50
	}

	const query = `
		SELECT id, asset, execution, current_spread_usd, break_even_spread_usd, total_cost_usd, created_at
		FROM alerts
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list recent alerts: %w", err)
	}
	defer rows.Close()

	var alerts []domain.Alert
	for rows.Next() {
		var a domain.Alert
		var exec string
		if err := rows.Scan(&a.ID, &a.Asset, &exec,
			&a.CurrentSpreadUSD, &a.BreakEvenSpreadUSD, &a.TotalCostUSD,
			&a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan alert row: %w", err)
		}
		a.Execution = domain.Execution(exec)
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate alert rows: %w", err)
	}

	return alerts, nil
}

// Compile-time interface check.
var _ domain.AlertStore = (*AlertStore)(nil)
