package series

import "errors"

// Sentinel errors for store operations.
//
// Backends wrap the underlying driver error:
//
//	return fmt.Errorf("%w: %w", series.ErrStoreWrite, err)
var (
	// ErrStoreWrite indicates a sample could not be persisted.
	ErrStoreWrite = errors.New("series: write failed")

	// ErrStoreQuery indicates a range query failed.
	ErrStoreQuery = errors.New("series: query failed")

	// ErrStoreDelete indicates a retention delete failed.
	ErrStoreDelete = errors.New("series: delete failed")

	// ErrEmptyMeasurement indicates a sample or filter without a measurement name.
	ErrEmptyMeasurement = errors.New("series: measurement name is required")
)
