package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrRunNotFound is returned when a run ID has no row.
var ErrRunNotFound = errors.New("run not found")

const runColumns = "run_id, album_title, artist, album_dir, status, reason, started_at, finished_at"

// BeginRun records a run in the running state.
func (s *Store) BeginRun(ctx context.Context, run Run) error {
	if strings.TrimSpace(run.ID) == "" {
		return errors.New("run id is required")
	}
	started := run.StartedAt
	if started.IsZero() {
		started = time.Now()
	}
	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO runs (
            run_id, album_title, artist, album_dir, status, reason, started_at, finished_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		nullableString(run.AlbumTitle),
		nullableString(run.Artist),
		nullableString(run.AlbumDir),
		StatusRunning,
		nil,
		formatTime(started),
		nil,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// UpdateAlbum records the resolved album once it is known.
func (s *Store) UpdateAlbum(ctx context.Context, runID, title, artist, albumDir string) error {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE runs SET album_title = ?, artist = ?, album_dir = ? WHERE run_id = ?`,
		nullableString(title),
		nullableString(artist),
		nullableString(albumDir),
		runID,
	)
	if err != nil {
		return fmt.Errorf("update run album: %w", err)
	}
	return requireRow(res, runID)
}

// FinishRun stores the final status and the per-track records in one transaction.
func (s *Store) FinishRun(ctx context.Context, runID string, status Status, reason string, tracks []TrackRecord) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin finish tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		res, err := tx.ExecContext(ctx,
			`UPDATE runs SET status = ?, reason = ?, finished_at = ? WHERE run_id = ?`,
			status,
			nullableString(reason),
			formatTime(time.Now()),
			runID,
		)
		if err != nil {
			return fmt.Errorf("update run: %w", err)
		}
		if err := requireRow(res, runID); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM track_results WHERE run_id = ?`, runID); err != nil {
			return fmt.Errorf("clear track results: %w", err)
		}
		for i, track := range tracks {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO track_results (
                    run_id, position, track_number, title, outcome, path, detail, elapsed_ms
                ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				runID,
				i,
				int64(track.Number),
				nullableString(track.Title),
				track.Outcome,
				nullableString(track.Path),
				nullableString(track.Detail),
				track.Elapsed.Milliseconds(),
			); err != nil {
				return fmt.Errorf("insert track result: %w", err)
			}
		}
		return tx.Commit()
	})
}

// GetRun loads one run with its track records.
func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM runs WHERE run_id = ?", runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, err
	}
	tracks, err := s.tracksFor(ctx, runID)
	if err != nil {
		return nil, err
	}
	run.Tracks = tracks
	return run, nil
}

// ListRuns returns the most recent runs first. A limit <= 0 returns all runs.
// Track records are not loaded.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	ctx = ensureContext(ctx)
	query := "SELECT " + runColumns + " FROM runs ORDER BY started_at DESC, run_id"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// Clear removes every run and track record.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, "DELETE FROM runs")
	if err != nil {
		return 0, fmt.Errorf("clear runs: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) tracksFor(ctx context.Context, runID string) ([]TrackRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT track_number, title, outcome, path, detail, elapsed_ms
         FROM track_results WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("list track results: %w", err)
	}
	defer rows.Close()

	var tracks []TrackRecord
	for rows.Next() {
		var (
			number    int64
			title     sql.NullString
			outcome   string
			path      sql.NullString
			detail    sql.NullString
			elapsedMS int64
		)
		if err := rows.Scan(&number, &title, &outcome, &path, &detail, &elapsedMS); err != nil {
			return nil, fmt.Errorf("scan track result: %w", err)
		}
		tracks = append(tracks, TrackRecord{
			Number:  uint32(number),
			Title:   title.String,
			Outcome: outcome,
			Path:    path.String,
			Detail:  detail.String,
			Elapsed: time.Duration(elapsedMS) * time.Millisecond,
		})
	}
	return tracks, rows.Err()
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		id          string
		title       sql.NullString
		artist      sql.NullString
		albumDir    sql.NullString
		status      string
		reason      sql.NullString
		startedRaw  string
		finishedRaw sql.NullString
	)
	if err := scanner.Scan(&id, &title, &artist, &albumDir, &status, &reason, &startedRaw, &finishedRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	return &Run{
		ID:         id,
		AlbumTitle: title.String,
		Artist:     artist.String,
		AlbumDir:   albumDir.String,
		Status:     Status(status),
		Reason:     reason.String,
		StartedAt:  parseTime(startedRaw),
		FinishedAt: parseTime(finishedRaw.String),
	}, nil
}

func requireRow(res interface{ RowsAffected() (int64, error) }, runID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
