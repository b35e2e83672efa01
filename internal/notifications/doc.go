// Package notifications publishes rip events to ntfy.
//
// The ntfy topic comes from config.toml; with no topic configured NewService
// returns a no-op implementation, so callers never need to check whether
// notifications are enabled. Delivery failures are returned to the caller,
// which logs them and carries on.
package notifications
