// Package history records rip runs in SQLite.
//
// A run row is written when the workflow starts and updated once it
// finishes, together with one row per processed track. Disc IDs are
// deliberately absent: a run is keyed by its run ID and described by the
// resolved album. Schema changes bump schemaVersion in schema.go; users
// delete history.db to adopt the new schema.
package history
