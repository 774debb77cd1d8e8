package influxdb

import "errors"

// Sentinel errors for InfluxDB connectivity.
//
// Store operations wrap the series package errors instead
// (series.ErrStoreWrite, series.ErrStoreQuery, series.ErrStoreDelete).
//
//	if errors.Is(err, influxdb.ErrNotConnected) {
//	    // Handle disconnected state
//	}
var (
	// ErrNotConnected indicates the client has been closed.
	ErrNotConnected = errors.New("influxdb: not connected")

	// ErrConnectionFailed indicates the initial connection attempt failed.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrOrgNotFound indicates the configured organisation does not exist.
	ErrOrgNotFound = errors.New("influxdb: organisation not found")
)
