// Package source holds the registry of configured remote sources.
//
// Each source is polled for a single numeric reading and maps one-to-one to
// a time-series measurement of the same name. The registry is built once at
// startup from the sources section of the configuration and is read-only
// afterwards; the scheduler, the query translator and the search endpoint
// all read from the same instance.
//
// A source is schedulable when it is active with a positive poll interval,
// and prunable when it is additionally configured with an active retention
// policy of positive age. Retention ages and check intervals are configured
// in seconds.
package source
