// Package history persists observed bus activity to SQLite.
//
// The journal records three event streams:
//   - Property value changes
//   - Device lifecycle transitions
//   - Alert raise and clear events
//
// Rows are append-only; Prune trims old entries according to the configured
// retention window. The journal is a sink for discovery actions, not a source
// of truth: the live picture of the bus lives in the in-memory stores.
package history
