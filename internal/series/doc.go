// Package series defines the time-series store used for ingested samples.
//
// A sample is one numeric value recorded under a measurement name (the
// source name) at an instant. The Store interface has two implementations:
// the InfluxDB client in internal/infrastructure/influxdb and SQLiteStore in
// this package, selected by the storage.backend setting.
//
// Query results are always ordered by ascending time and bounded inclusively
// by the filter's From and To.
package series
