package workflow

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"cdrip/internal/album"
	"cdrip/internal/coverart"
	"cdrip/internal/disc"
	"cdrip/internal/discid"
	"cdrip/internal/flac"
	"cdrip/internal/history"
	"cdrip/internal/logging"
	"cdrip/internal/notifications"
	"cdrip/internal/ripping"
	"cdrip/internal/services"
	"cdrip/internal/textutil"
)

const (
	stageTOC      = "toc"
	stageMetadata = "metadata"
	stagePrepare  = "prepare"
	stageRip      = "rip"
	stageCover    = "cover_art"

	fallbackAlbumDir = "Unknown album"
)

// Resolver looks up the album for a disc ID.
type Resolver interface {
	ResolveDetailed(ctx context.Context, discID string) (album.Album, error)
}

// CoverFetcher downloads the album cover into a directory.
type CoverFetcher interface {
	FetchImage(ctx context.Context, al album.Album, dir string) (coverart.Image, error)
}

// Recorder persists run history. *history.Store satisfies it.
type Recorder interface {
	BeginRun(ctx context.Context, run history.Run) error
	UpdateAlbum(ctx context.Context, runID, title, artist, albumDir string) error
	FinishRun(ctx context.Context, runID string, status history.Status, reason string, tracks []history.TrackRecord) error
}

// EmbedFunc adds a front cover picture to an encoded track.
type EmbedFunc func(path string, image []byte, mime string) error

// AlbumFunc is called once metadata is resolved, before anything is written.
type AlbumFunc func(discID string, al album.Album)

// Runner performs one rip per Run call.
type Runner struct {
	drive    disc.Drive
	resolver Resolver
	root     string
	logger   *slog.Logger

	cover      CoverFetcher
	embedCover bool
	embed      EmbedFunc
	notifier   notifications.Service
	recorder   Recorder
	onAlbum    AlbumFunc
	eject      bool
	dryRun     bool
	newRunID   func() string

	pipelineOpts []ripping.Option
	pipeline     *ripping.Pipeline
}

// Option configures a Runner.
type Option func(*Runner)

// WithCoverFetcher enables cover download; embed also adds it to each written track.
func WithCoverFetcher(fetcher CoverFetcher, embed bool) Option {
	return func(r *Runner) {
		r.cover = fetcher
		r.embedCover = embed
	}
}

// WithEmbedder replaces the picture embedder.
func WithEmbedder(fn EmbedFunc) Option {
	return func(r *Runner) {
		if fn != nil {
			r.embed = fn
		}
	}
}

// WithNotifier publishes run completion and failure.
func WithNotifier(n notifications.Service) Option {
	return func(r *Runner) {
		if n != nil {
			r.notifier = n
		}
	}
}

// WithRecorder records each run in the history store.
func WithRecorder(rec Recorder) Option {
	return func(r *Runner) {
		r.recorder = rec
	}
}

// WithAlbumHandler registers a callback for the resolved album.
func WithAlbumHandler(fn AlbumFunc) Option {
	return func(r *Runner) {
		r.onAlbum = fn
	}
}

// WithEject ejects the disc after a successful run.
func WithEject(enabled bool) Option {
	return func(r *Runner) {
		r.eject = enabled
	}
}

// WithDryRun stops after metadata resolution.
func WithDryRun(enabled bool) Option {
	return func(r *Runner) {
		r.dryRun = enabled
	}
}

// WithRoot overrides the destination root.
func WithRoot(root string) Option {
	return func(r *Runner) {
		if root != "" {
			r.root = root
		}
	}
}

// WithRunIDs overrides run ID generation.
func WithRunIDs(fn func() string) Option {
	return func(r *Runner) {
		if fn != nil {
			r.newRunID = fn
		}
	}
}

// WithPipelineOptions forwards options to the track pipeline.
func WithPipelineOptions(opts ...ripping.Option) Option {
	return func(r *Runner) {
		r.pipelineOpts = append(r.pipelineOpts, opts...)
	}
}

// NewRunner builds a runner that writes album directories under root.
func NewRunner(drive disc.Drive, resolver Resolver, root string, logger *slog.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	r := &Runner{
		drive:    drive,
		resolver: resolver,
		root:     root,
		logger:   logging.NewComponentLogger(logger, "workflow"),
		embed:    flac.EmbedPicture,
		notifier: notifications.NewNoop(),
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.pipeline = ripping.NewPipeline(drive, logger, r.pipelineOpts...)
	return r
}

// Run rips the disc currently in the drive. The Result is populated as far as
// the run got, also on error. Errors wrap ErrMetadataNotFound,
// ErrAlbumExists, a services marker, or the context error.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	result := Result{RunID: r.newRunID(), StartedAt: time.Now()}
	ctx = services.WithRunID(ctx, result.RunID)
	logger := logging.WithContext(ctx, r.logger)

	recording := r.beginHistory(ctx, logger, result)
	logger.Info("rip started", logging.String(logging.FieldEventType, "run_started"), logging.String("root", r.root))

	err := r.run(ctx, logger, &result)
	result.FinishedAt = time.Now()

	if recording {
		r.finishHistory(ctx, logger, result, err)
	}
	r.notify(ctx, logger, result, err)

	if err != nil {
		if ctx.Err() == nil {
			logging.ErrorWithContext(logger, "rip failed", "run_failed",
				logging.Error(err),
				logging.String("failure_kind", failureKind(err)),
				logging.String(logging.FieldErrorHint, failureHint(err)),
			)
		}
		return result, err
	}

	counts := result.Report.Counts()
	logger.Info("rip completed",
		logging.String(logging.FieldEventType, "run_completed"),
		logging.String("album", result.Album.Title),
		logging.String("dir", result.Dir),
		logging.Int("written", counts[ripping.OutcomeWritten]),
		logging.Int("skipped_exists", counts[ripping.OutcomeSkippedExists]),
		logging.Int("skipped_range", counts[ripping.OutcomeSkippedRange]),
		logging.Int("encode_failed", counts[ripping.OutcomeEncodeFailed]),
		logging.Int("tag_failed", counts[ripping.OutcomeTagFailed]),
		logging.Bool("cover_art", result.CoverPath != ""),
		logging.Duration("elapsed", result.Duration()),
	)
	return result, nil
}

func (r *Runner) run(ctx context.Context, logger *slog.Logger, result *Result) error {
	toc, err := r.drive.ReadTOC(services.WithStage(ctx, stageTOC))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return services.Wrap(services.ErrDriveIO, stageTOC, "read toc", "", err)
	}
	result.DiscID = discid.Compute(toc)
	logger.Info("disc identified",
		logging.String("disc_id", result.DiscID),
		logging.Int("disc_tracks", len(toc.Tracks)),
		logging.String("toc", toc.String()),
	)

	resolved, err := r.resolver.ResolveDetailed(services.WithStage(ctx, stageMetadata), result.DiscID)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: disc %s: %w", ErrMetadataNotFound, result.DiscID, err)
	}
	result.Album = resolved
	if r.onAlbum != nil {
		r.onAlbum(result.DiscID, resolved.Clone())
	}
	if r.dryRun {
		logger.Info("dry run; nothing written", logging.String("album", resolved.Title))
		return nil
	}

	dir, err := r.createAlbumDir(resolved)
	if err != nil {
		return err
	}
	result.Dir = dir
	if r.recorder != nil {
		if err := r.recorder.UpdateAlbum(ctx, result.RunID, resolved.Title, resolved.Artist, dir); err != nil {
			logger.Debug("history album update failed", logging.Error(err))
		}
	}

	report, err := r.pipeline.Run(services.WithStage(ctx, stageRip), resolved, toc, dir)
	result.Report = report
	if err != nil {
		return err
	}

	r.fetchCover(services.WithStage(ctx, stageCover), logger, result)

	if r.eject {
		if err := r.drive.Eject(ctx); err != nil {
			logging.WarnWithContext(logger, "eject failed", "eject_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "disc stays in the drive"),
			)
		}
	}
	return nil
}

func (r *Runner) createAlbumDir(al album.Album) (string, error) {
	if err := os.MkdirAll(r.root, 0o755); err != nil {
		return "", services.Wrap(services.ErrLocalIO, stagePrepare, "create root", r.root, err)
	}
	dir := filepath.Join(r.root, textutil.FileNameOr(al.Title, fallbackAlbumDir))
	if err := os.Mkdir(dir, 0o755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("%w: %s", ErrAlbumExists, dir)
		}
		return "", services.Wrap(services.ErrLocalIO, stagePrepare, "create album dir", dir, err)
	}
	return dir, nil
}

func (r *Runner) fetchCover(ctx context.Context, logger *slog.Logger, result *Result) {
	if r.cover == nil || !result.Album.HasCoverArt() {
		return
	}
	img, err := r.cover.FetchImage(ctx, result.Album, result.Dir)
	if err != nil {
		logging.WarnWithContext(logger, "cover art download failed", "cover_art_failed",
			logging.Error(err),
			logging.String("failure_kind", services.Kind(err)),
			logging.String(logging.FieldImpact, "album has no folder image"),
			logging.String(logging.FieldErrorHint, "add a cover manually; the audio is complete"),
		)
		return
	}
	result.CoverPath = img.Path
	if !r.embedCover || len(img.Data) == 0 {
		return
	}
	for _, track := range result.Report.Tracks {
		if track.Outcome != ripping.OutcomeWritten {
			continue
		}
		if err := r.embed(track.Path, img.Data, img.ContentType); err != nil {
			logging.WarnWithContext(logger, "cover embed failed", "cover_embed_failed",
				logging.Error(err),
				logging.String("path", track.Path),
				logging.String(logging.FieldImpact, "track has no embedded picture"),
			)
		}
	}
}

func (r *Runner) beginHistory(ctx context.Context, logger *slog.Logger, result Result) bool {
	if r.recorder == nil || r.dryRun {
		return false
	}
	if err := r.recorder.BeginRun(ctx, history.Run{ID: result.RunID, StartedAt: result.StartedAt}); err != nil {
		logging.WarnWithContext(logger, "history unavailable", "history_begin_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run will not appear in cdrip history"),
		)
		return false
	}
	return true
}

func (r *Runner) finishHistory(ctx context.Context, logger *slog.Logger, result Result, runErr error) {
	status, reason := history.StatusCompleted, ""
	if runErr != nil {
		status, reason = history.StatusFailed, runErr.Error()
	}
	// The run context may already be cancelled; the record should still land.
	if err := r.recorder.FinishRun(context.WithoutCancel(ctx), result.RunID, status, reason, result.trackRecords()); err != nil {
		logging.WarnWithContext(logger, "history update failed", "history_finish_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run stays marked as running in cdrip history"),
		)
	}
}

func (r *Runner) notify(ctx context.Context, logger *slog.Logger, result Result, runErr error) {
	if r.dryRun && runErr == nil {
		return
	}
	if errors.Is(runErr, context.Canceled) {
		return
	}
	ctx = context.WithoutCancel(ctx)
	var err error
	if runErr != nil {
		err = r.notifier.NotifyRipFailed(ctx, result.Album.Title, runErr)
	} else {
		err = r.notifier.NotifyRipCompleted(ctx, result.summary())
	}
	if err != nil {
		logger.Warn("notification failed", logging.Error(err))
	}
}

func failureKind(err error) string {
	switch {
	case errors.Is(err, ErrMetadataNotFound):
		return "metadata_not_found"
	case errors.Is(err, ErrAlbumExists):
		return "album_exists"
	default:
		return services.Kind(err)
	}
}

func failureHint(err error) string {
	switch {
	case errors.Is(err, ErrMetadataNotFound):
		return "run cdrip lookup to see why the disc did not resolve"
	case errors.Is(err, ErrAlbumExists):
		return "move or delete the existing album directory, or pick another --dir"
	case errors.Is(err, services.ErrDriveIO):
		return "clean the disc and check the drive, then rerun"
	default:
		return "see the log for details"
	}
}
