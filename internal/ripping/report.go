package ripping

import "time"

// Outcome classifies what happened to one album track.
type Outcome string

const (
	OutcomeWritten       Outcome = "written"
	OutcomeSkippedRange  Outcome = "skipped_range"
	OutcomeSkippedExists Outcome = "skipped_exists"
	OutcomeEncodeFailed  Outcome = "encode_failed"
	OutcomeTagFailed     Outcome = "tag_failed"
)

// HasAudio reports whether the outcome left a playable file on disk.
func (o Outcome) HasAudio() bool {
	return o == OutcomeWritten || o == OutcomeTagFailed
}

// TrackResult is the fold element for one album track.
type TrackResult struct {
	Number  uint32
	Title   string
	Outcome Outcome
	Path    string
	Detail  string
	Elapsed time.Duration
}

// Report aggregates the results of a pipeline run in album order.
type Report struct {
	Tracks []TrackResult
}

// Count returns how many tracks ended with the given outcome.
func (r Report) Count(outcome Outcome) int {
	n := 0
	for _, track := range r.Tracks {
		if track.Outcome == outcome {
			n++
		}
	}
	return n
}

// Counts returns the number of tracks per outcome.
func (r Report) Counts() map[Outcome]int {
	counts := make(map[Outcome]int, 5)
	for _, track := range r.Tracks {
		counts[track.Outcome]++
	}
	return counts
}

// WrittenPaths lists files created by this run, tagged or not.
func (r Report) WrittenPaths() []string {
	var paths []string
	for _, track := range r.Tracks {
		if track.Outcome.HasAudio() {
			paths = append(paths, track.Path)
		}
	}
	return paths
}
