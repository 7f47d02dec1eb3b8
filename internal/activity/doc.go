// Package activity implements the typing session lifecycle and the
// statistics built on top of it.
//
// A session is opened by Service.Start, kept alive by repeated Start calls
// (heartbeats) and terminated either explicitly by Service.End or by an
// auto-close once it has been idle for longer than the stale threshold.
// Auto-closed sessions are backdated: their ended_at equals the last
// heartbeat, not the moment the staleness was noticed.
//
// At most one open session exists per (owner, device id) pair, where a
// missing device id forms its own bucket. Stores enforce this twice: Atomic
// serializes callers per pair, and Create reports ErrConflict if an open
// session already exists. Service retries conflicts through the read path,
// so a losing concurrent Start becomes a heartbeat.
//
// Service.Stats aggregates sessions of a trailing window into per-day totals
// broken down by language and source. Open sessions count until now, so
// their duration grows between calls.
//
// Every operation uses the service clock, truncated to microseconds so that
// values written to PostgreSQL compare equal after a round trip.
package activity
