// Package query answers dashboard search and query requests from stored
// samples.
//
// The Translator turns a Request into one range query per target that names
// an active source, runs them concurrently and reshapes the rows:
//
//   - timeseries targets become one TimeseriesResult each, with
//     [value, epochMillis] datapoints
//   - table targets are merged into a single TableResult with the fixed
//     Target/Value/Time columns, emitted only when it has rows
//
// Targets naming unknown or inactive sources are dropped without error. A
// failing store query fails the whole request.
//
// The Searcher lists the names a dashboard can offer as targets.
package query
