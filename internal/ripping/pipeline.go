package ripping

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"cdrip/internal/album"
	"cdrip/internal/disc"
	"cdrip/internal/flac"
	"cdrip/internal/logging"
	"cdrip/internal/services"
	"cdrip/internal/textutil"
)

const (
	stageRip      = "ripping"
	fileExtension = ".flac"
)

// Observer receives per-track progress. Implementations must not block.
type Observer interface {
	TrackStarted(index, total int, track album.Track)
	TrackFinished(index, total int, result TrackResult)
}

// EncodeFunc writes PCM to a new file at path.
type EncodeFunc func(path string, pcm []byte) error

// TagFunc writes the tag block of an encoded file.
type TagFunc func(path string, tags flac.Tags) error

// Pipeline rips album tracks from a drive.
type Pipeline struct {
	drive    disc.Drive
	logger   *slog.Logger
	observer Observer
	encode   EncodeFunc
	tag      TagFunc
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithObserver subscribes o to track progress.
func WithObserver(o Observer) Option {
	return func(p *Pipeline) {
		p.observer = o
	}
}

// WithEncoder replaces the FLAC encoder.
func WithEncoder(fn EncodeFunc) Option {
	return func(p *Pipeline) {
		if fn != nil {
			p.encode = fn
		}
	}
}

// WithTagWriter replaces the tag writer.
func WithTagWriter(fn TagFunc) Option {
	return func(p *Pipeline) {
		if fn != nil {
			p.tag = fn
		}
	}
}

// NewPipeline builds a pipeline reading from drive.
func NewPipeline(drive disc.Drive, logger *slog.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		drive:  drive,
		logger: logging.NewComponentLogger(logger, "ripper"),
		encode: flac.EncodeFile,
		tag:    flac.WriteTags,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run processes every album track in order. The returned Report holds the
// tracks handled so far even when err is non-nil; err wraps
// services.ErrDriveIO for read failures or is the context error.
func (p *Pipeline) Run(ctx context.Context, al album.Album, toc disc.TOC, dir string) (Report, error) {
	report := Report{Tracks: make([]TrackResult, 0, len(al.Tracks))}
	total := len(al.Tracks)

	for i, track := range al.Tracks {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		trackCtx := services.WithTrack(ctx, track.Number)
		if p.observer != nil {
			p.observer.TrackStarted(i, total, track)
		}

		result, err := p.processTrack(trackCtx, al, toc, dir, track)
		if err != nil {
			return report, err
		}
		report.Tracks = append(report.Tracks, result)
		if p.observer != nil {
			p.observer.TrackFinished(i, total, result)
		}
	}
	return report, nil
}

func (p *Pipeline) processTrack(ctx context.Context, al album.Album, toc disc.TOC, dir string, track album.Track) (TrackResult, error) {
	logger := logging.WithContext(ctx, p.logger).With(logging.String("title", track.Title))
	started := time.Now()
	result := TrackResult{Number: track.Number, Title: track.Title}
	finish := func(outcome Outcome, detail string) TrackResult {
		result.Outcome = outcome
		result.Detail = detail
		result.Elapsed = time.Since(started)
		return result
	}

	if track.Number == 0 || track.Number > math.MaxUint8 {
		logging.WarnWithContext(logger, "track number outside disc range", "track_skipped_range",
			logging.String(logging.FieldImpact, "track not ripped"),
			logging.String(logging.FieldErrorHint, "the release numbering does not match the physical disc"),
		)
		return finish(OutcomeSkippedRange, fmt.Sprintf("track number %d cannot address a disc track", track.Number)), nil
	}
	number := uint8(track.Number)

	pcm, err := p.drive.ReadTrack(ctx, toc, number)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return TrackResult{}, ctxErr
		}
		logging.ErrorWithContext(logger, "drive read failed", "drive_read_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "clean the disc and check the drive; remove the partial album directory before retrying"),
		)
		return TrackResult{}, services.Wrap(services.ErrDriveIO, stageRip, "read track", fmt.Sprintf("track %d", number), err)
	}

	result.Path = filepath.Join(dir, textutil.FileNameOr(track.Title, album.UnknownTrack)+fileExtension)
	logger = logger.With(logging.String("path", result.Path))

	if _, err := os.Lstat(result.Path); err == nil {
		logger.Info("track already ripped; skipping", logging.String(logging.FieldEventType, "track_skipped_exists"))
		return finish(OutcomeSkippedExists, "file exists"), nil
	}

	if err := p.encode(result.Path, pcm); err != nil {
		wrapped := services.Wrap(services.ErrEncoding, stageRip, "encode track", "", err)
		logging.WarnWithContext(logger, "track encoding failed", "track_encode_failed",
			logging.Error(wrapped),
			logging.String(logging.FieldImpact, "track missing from album"),
			logging.String(logging.FieldErrorHint, "check free space and permissions in the album directory"),
		)
		result.Path = ""
		return finish(OutcomeEncodeFailed, wrapped.Error()), nil
	}

	tags := flac.Tags{
		Title:       track.Title,
		Album:       al.Title,
		Artist:      al.Artist,
		TrackNumber: track.Number,
		Date:        al.Date,
		Country:     al.Country,
	}
	if err := p.tag(result.Path, tags); err != nil {
		wrapped := services.Wrap(services.ErrEncoding, stageRip, "write tags", "", err)
		logging.WarnWithContext(logger, "track tagging failed", "track_tag_failed",
			logging.Error(wrapped),
			logging.String(logging.FieldImpact, "audio kept without metadata"),
			logging.String(logging.FieldErrorHint, "retag the file manually or delete it and rerun"),
		)
		return finish(OutcomeTagFailed, wrapped.Error()), nil
	}

	logger.Info("track written",
		logging.String(logging.FieldEventType, "track_written"),
		logging.Int("pcm_bytes", len(pcm)),
		logging.Duration("elapsed", time.Since(started)),
	)
	return finish(OutcomeWritten, ""), nil
}
