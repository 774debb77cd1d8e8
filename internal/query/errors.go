package query

import "errors"

// Request errors. Both map to HTTP 400.
var (
	// ErrInvalidTargetType indicates a target type other than timeseries or table.
	ErrInvalidTargetType = errors.New("query: invalid target type")

	// ErrInvalidRange indicates a range whose end is before its start.
	ErrInvalidRange = errors.New("query: range end is before start")
)
