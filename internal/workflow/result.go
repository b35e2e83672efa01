package workflow

import (
	"time"

	"cdrip/internal/album"
	"cdrip/internal/history"
	"cdrip/internal/notifications"
	"cdrip/internal/ripping"
)

// Result describes a finished or aborted run. Fields are filled as far as the
// run progressed.
type Result struct {
	RunID      string
	DiscID     string
	Album      album.Album
	Dir        string
	Report     ripping.Report
	CoverPath  string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration reports the wall time of the run.
func (r Result) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

func (r Result) summary() notifications.RipSummary {
	written := r.Report.Count(ripping.OutcomeWritten)
	skipped := r.Report.Count(ripping.OutcomeSkippedExists) + r.Report.Count(ripping.OutcomeSkippedRange)
	return notifications.RipSummary{
		Album:    r.Album.Title,
		Artist:   r.Album.Artist,
		Written:  written,
		Skipped:  skipped,
		Failed:   len(r.Report.Tracks) - written - skipped,
		Duration: r.Duration(),
	}
}

func (r Result) trackRecords() []history.TrackRecord {
	records := make([]history.TrackRecord, 0, len(r.Report.Tracks))
	for _, track := range r.Report.Tracks {
		records = append(records, history.TrackRecord{
			Number:  track.Number,
			Title:   track.Title,
			Outcome: string(track.Outcome),
			Path:    track.Path,
			Detail:  track.Detail,
			Elapsed: track.Elapsed,
		})
	}
	return records
}
