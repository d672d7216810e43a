// Package metrics provides lock-free counters and a latency histogram for
// shelfgate observability.
//
// # Design
//
// Counters are stored in cache-line-padded uint64 slots and incremented
// atomically via [sync/atomic.AddUint64]. The single histogram (server
// verify-access round-trips) uses 8 fixed buckets (≤5ms … +Inf). Both are
// allocation-free on the write path.
//
// # Architecture boundaries
//
// This package owns metric storage and snapshot creation. Metric export
// (Prometheus text format) lives in metrics/export/ and reads Snapshot
// values. The root package re-exports the ID constants and value types.
//
// # What this package must NOT do
//
//   - Perform I/O or network calls.
//   - Import shelfgate or any sibling package.
//   - Expose global metric registries.
package metrics
