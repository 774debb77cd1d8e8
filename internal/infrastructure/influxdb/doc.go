// Package influxdb is the InfluxDB v2 backend of series.Store.
//
// It wraps the official influxdb-client-go v2 library. Every source becomes
// a measurement holding a single "value" field; range queries are rendered
// as Flux and retention deletes go through the delete API with a
// measurement predicate.
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	if err := client.EnsureDatabase(ctx); err != nil {
//	    return err
//	}
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
//
// # Error Handling
//
// Writes are blocking so failures reach the caller, wrapped in
// series.ErrStoreWrite. Queries and deletes wrap series.ErrStoreQuery and
// series.ErrStoreDelete respectively.
package influxdb
