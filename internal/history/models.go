package history

import "time"

// Status is the lifecycle state of a run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Run is one invocation of the rip workflow.
type Run struct {
	ID         string
	AlbumTitle string
	Artist     string
	AlbumDir   string
	Status     Status
	Reason     string
	StartedAt  time.Time
	FinishedAt time.Time
	Tracks     []TrackRecord
}

// Duration reports how long a finished run took.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// TrackRecord is the stored outcome of one track.
type TrackRecord struct {
	Number  uint32
	Title   string
	Outcome string
	Path    string
	Detail  string
	Elapsed time.Duration
}
