// Package ingest persists fetched values and prunes expired ones.
//
// The Ingestor writes one sample per successful fetch, using the source name
// as the measurement. When a Publisher is configured the stored sample is
// also published (MQTT); publish failures are logged and never undo the
// write. The Pruner deletes a source's samples older than a cutoff.
//
// Both log their own failures with a "source" attribute and return the
// error so callers can count or ignore it.
package ingest
