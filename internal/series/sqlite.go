package series

import (
	"context"
	"fmt"
	"time"

	"github.com/m-adamski/timeseries-data-provider/internal/infrastructure/database"
	"github.com/m-adamski/timeseries-data-provider/migrations"
)

// SQLiteStore keeps samples in the embedded SQLite database.
//
// Timestamps are stored as Unix nanoseconds in UTC, so range bounds and
// retention cutoffs compare as integers.
type SQLiteStore struct {
	db *database.DB
}

// NewSQLiteStore wraps an open database connection.
func NewSQLiteStore(db *database.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// EnsureDatabase applies the embedded schema migrations.
func (s *SQLiteStore) EnsureDatabase(ctx context.Context) error {
	if err := s.db.Migrate(ctx, migrations.FS); err != nil {
		return fmt.Errorf("preparing sample schema: %w", err)
	}
	return nil
}

// Write inserts one sample.
func (s *SQLiteStore) Write(ctx context.Context, sample Sample) error {
	if sample.Measurement == "" {
		return ErrEmptyMeasurement
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO samples (measurement, value, ts) VALUES (?, ?, ?)",
		sample.Measurement, sample.Value, sample.Timestamp.UTC().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStoreWrite, err)
	}
	return nil
}

// Query returns rows of f.Measurement with From <= ts <= To, oldest first.
func (s *SQLiteStore) Query(ctx context.Context, f RangeFilter) ([]Row, error) {
	if f.Measurement == "" {
		return nil, ErrEmptyMeasurement
	}

	limit := f.Limit
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT value, ts FROM samples
		WHERE measurement = ? AND ts >= ? AND ts <= ?
		ORDER BY ts ASC, id ASC
		LIMIT ?`,
		f.Measurement, f.From.UTC().UnixNano(), f.To.UTC().UnixNano(), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreQuery, err)
	}
	defer rows.Close()

	result := make([]Row, 0)
	for rows.Next() {
		var (
			value float64
			ts    int64
		)
		if err := rows.Scan(&value, &ts); err != nil {
			return nil, fmt.Errorf("%w: scanning row: %w", ErrStoreQuery, err)
		}
		result = append(result, Row{Value: value, Time: time.Unix(0, ts).UTC()})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreQuery, err)
	}

	return result, nil
}

// Delete removes rows of measurement with ts strictly before cutoff.
func (s *SQLiteStore) Delete(ctx context.Context, measurement string, cutoff time.Time) error {
	if measurement == "" {
		return ErrEmptyMeasurement
	}

	_, err := s.db.ExecContext(ctx,
		"DELETE FROM samples WHERE measurement = ? AND ts < ?",
		measurement, cutoff.UTC().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStoreDelete, err)
	}
	return nil
}

// HealthCheck pings the database.
func (s *SQLiteStore) HealthCheck(ctx context.Context) error {
	return s.db.HealthCheck(ctx)
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
