// Package scheduler decides when each source is fetched and pruned.
//
// A single coarse tick scans every schedulable source. A fetch is due when
// the source has never been fetched or at least PollInterval has passed
// since the last dispatch; a prune is due on the same rule against the
// retention CheckInterval. The last-dispatch time is stamped before the
// work is handed to its goroutine, so a source is never dispatched twice
// within one interval even if a previous fetch is still running.
//
// Timing drift is bounded by the tick: a source is fetched no more often
// than its interval and no less often than its interval plus one tick.
//
// Work is never retried and never cancelled by later ticks. Stop stops the
// tick and waits for in-flight work up to a grace period.
package scheduler
