package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/astrosignal/astroalert/internal/domain"
)

// AlertStore implements domain.AlertStore using PostgreSQL. It is a
// write-behind mirror of the bounded in-memory alert log: the in-memory log
// stays authoritative for API reads, while the store retains the full
// history for archival.
type AlertStore struct {
	pool *pgxpool.Pool
}

// NewAlertStore creates a new AlertStore backed by the given connection pool.
func NewAlertStore(pool *pgxpool.Pool) *AlertStore {
	return &AlertStore{pool: pool}
}

const alertSelectCols = `id, ts, severity, message, object_ids`

func scanAlertRows(rows pgx.Rows) ([]domain.Alert, error) {
	var alerts []domain.Alert
	for rows.Next() {
		var a domain.Alert
		if err := rows.Scan(&a.ID, &a.Timestamp, &a.Severity, &a.Message, &a.ObjectIDs); err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// Insert persists a single alert. Replays of an already stored ID are
// silently skipped via ON CONFLICT DO NOTHING.
func (s *AlertStore) Insert(ctx context.Context, alert domain.Alert) error {
	const query = `
		INSERT INTO alerts (id, ts, severity, message, object_ids)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING`

	_, err := s.pool.Exec(ctx, query,
		alert.ID, alert.Timestamp, alert.Severity, alert.Message, alert.ObjectIDs,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert alert %d: %w", alert.ID, err)
	}
	return nil
}

// ListRecent returns the most recent alerts, newest first, up to limit.
func (s *AlertStore) ListRecent(ctx context.Context, limit int) ([]domain.Alert, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM alerts
		ORDER BY ts DESC, id DESC
		LIMIT $1`, alertSelectCols)

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list recent alerts: %w", err)
	}
	defer rows.Close()

	alerts, err := scanAlertRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan recent alerts: %w", err)
	}
	return alerts, nil
}

// ListBefore returns all alerts emitted strictly before the cutoff, oldest
// first. The archiver uses it to page aged rows out to blob storage.
func (s *AlertStore) ListBefore(ctx context.Context, before time.Time) ([]domain.Alert, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM alerts
		WHERE ts < $1
		ORDER BY ts ASC, id ASC`, alertSelectCols)

	rows, err := s.pool.Query(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("postgres: list alerts before %s: %w", before.Format(time.RFC3339), err)
	}
	defer rows.Close()

	alerts, err := scanAlertRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan alerts before %s: %w", before.Format(time.RFC3339), err)
	}
	return alerts, nil
}

// DeleteBefore removes all alerts emitted strictly before the cutoff and
// returns the number of rows deleted.
func (s *AlertStore) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM alerts WHERE ts < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("postgres: delete alerts before %s: %w", before.Format(time.RFC3339), err)
	}
	return tag.RowsAffected(), nil
}

// Compile-time interface check.
var _ domain.AlertStore = (*AlertStore)(nil)
