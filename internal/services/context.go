package services

import "context"

type contextKey string

const (
	runIDKey contextKey = "run_id"
	stageKey contextKey = "stage"
	trackKey contextKey = "track"
)

// WithRunID annotates context with the rip run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the rip run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStage annotates context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(stageKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithTrack annotates context with the album track number being processed.
func WithTrack(ctx context.Context, number uint32) context.Context {
	return context.WithValue(ctx, trackKey, number)
}

// TrackFromContext returns the album track number if present.
func TrackFromContext(ctx context.Context) (uint32, bool) {
	v, ok := ctx.Value(trackKey).(uint32)
	return v, ok
}
