// Package store provides SQLite-backed storage for the step log of
// conformance runs.
//
// The log has three tables:
//   - runs: one row per invocation of the checker
//   - fixtures: the outcome of each fixture a run processed
//   - steps: every replayed step with its actual and expected results
//
// Ordering uses the seq column, a logical clock owned by the runner, and
// never wall time. States and arguments are stored as canonical ITF JSON
// so identical states always produce identical text.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Open(":memory:") gives a log that lives as long as the Store.
package store
