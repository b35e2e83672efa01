// Package ripping turns a resolved album into FLAC files, one track at a time.
//
// Pipeline.Run folds over the album's tracks in order. Each track is read
// from the drive, written to <dir>/<sanitized title>.flac unless that file
// already exists, and tagged with the album metadata. Skips and per-track
// encode or tag failures become TrackResult outcomes; only a drive read
// failure or cancellation stops the run. Nothing here prints: callers render
// the Report or subscribe an Observer.
package ripping
