package series

import (
	"context"
	"time"
)

// Sample is one ingested value.
type Sample struct {
	Measurement string
	Value       float64
	Timestamp   time.Time
}

// Row is a stored value as returned by a range query.
type Row struct {
	Value float64
	Time  time.Time
}

// RangeFilter selects rows of one measurement between From and To inclusive.
type RangeFilter struct {
	Measurement string
	From        time.Time
	To          time.Time

	// Limit caps the number of rows returned. Zero or negative means no cap.
	Limit int
}

// Store is the persistence contract shared by the storage backends.
//
// Implementations must be safe for concurrent use: the scheduler writes and
// deletes from background goroutines while the HTTP layer queries.
type Store interface {
	// EnsureDatabase creates the backing database, bucket or schema if it
	// does not exist. It is called once at startup.
	EnsureDatabase(ctx context.Context) error

	// Write persists one sample.
	Write(ctx context.Context, s Sample) error

	// Query returns rows matching f in ascending time order.
	Query(ctx context.Context, f RangeFilter) ([]Row, error)

	// Delete removes every row of measurement strictly older than cutoff.
	Delete(ctx context.Context, measurement string, cutoff time.Time) error

	// HealthCheck reports whether the backend is reachable.
	HealthCheck(ctx context.Context) error

	Close() error
}
