package workflow_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"cdrip/internal/album"
	"cdrip/internal/config"
	"cdrip/internal/discid"
	"cdrip/internal/flac"
	"cdrip/internal/history"
	"cdrip/internal/ripping"
	"cdrip/internal/services"
	"cdrip/internal/testsupport"
	"cdrip/internal/workflow"
)

const releaseJSON = `{"releases":[{
  "id":"rel-1",
  "title":"Test Album",
  "date":"1999-04-01",
  "country":"GB",
  "cover-art-archive":{"front":true},
  "artist-credit":[{"name":"Test Artist"}],
  "media":[
    {"format":"Vinyl","tracks":[{"number":"A1","title":"Wrong"}]},
    {"format":"CD","tracks":[
      {"number":"1","title":"One"},
      {"number":"2","title":"Two"},
      {"number":"3","title":"Three"}
    ]}
  ]
}]}`

type fakeServer struct {
	*httptest.Server

	mu           sync.Mutex
	lookups      []string
	coverStatus  int
	releaseBody  string
	releaseCode  int
	notification string
}

func newFakeServer(t *testing.T, configure ...func(*fakeServer)) *fakeServer {
	t.Helper()
	fs := &fakeServer{coverStatus: http.StatusOK, releaseBody: releaseJSON, releaseCode: http.StatusOK}
	for _, fn := range configure {
		fn(fs)
	}
	cover := testsupport.PNGImage(t, 8, 8)
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/2/discid/", func(w http.ResponseWriter, r *http.Request) {
		fs.mu.Lock()
		fs.lookups = append(fs.lookups, strings.TrimPrefix(r.URL.Path, "/ws/2/discid/"))
		code, body := fs.releaseCode, fs.releaseBody
		fs.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_, _ = io.WriteString(w, body)
	})
	mux.HandleFunc("/release/rel-1/front", func(w http.ResponseWriter, r *http.Request) {
		fs.mu.Lock()
		code := fs.coverStatus
		fs.mu.Unlock()
		if code != http.StatusOK {
			w.WriteHeader(code)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(cover)
	})
	mux.HandleFunc("/ntfy", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		fs.mu.Lock()
		fs.notification = r.Header.Get("Title") + "|" + string(body)
		fs.mu.Unlock()
	})
	fs.Server = httptest.NewServer(mux)
	t.Cleanup(fs.Close)
	return fs
}

func (fs *fakeServer) lastNotification() string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.notification
}

func (fs *fakeServer) lookedUp() []string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return append([]string(nil), fs.lookups...)
}

func (fs *fakeServer) config(t *testing.T, embed bool) *config.Config {
	t.Helper()
	cfg := testsupport.NewConfig(t,
		testsupport.WithMusicBrainzURL(fs.URL+"/ws/2"),
		testsupport.WithCoverArt(fs.URL, embed),
		testsupport.WithNtfyTopic(fs.URL+"/ntfy"),
	)
	cfg.Drive.EjectOnComplete = true
	return cfg
}

func newRunner(t *testing.T, cfg *config.Config, drive *testsupport.FakeDrive, opts ...workflow.Option) (*workflow.Runner, *history.Store) {
	t.Helper()
	store := testsupport.MustOpenHistory(t, cfg)
	opts = append([]workflow.Option{
		workflow.WithRecorder(store),
		workflow.WithRunIDs(func() string { return "run-1" }),
	}, opts...)
	runner, err := workflow.NewRunnerFromConfig(cfg, drive, nil, opts...)
	if err != nil {
		t.Fatalf("NewRunnerFromConfig failed: %v", err)
	}
	return runner, store
}

func TestRunRipsAlbum(t *testing.T) {
	srv := newFakeServer(t)
	cfg := srv.config(t, true)
	drive := testsupport.NewFakeDrive(3, 4)
	runner, store := newRunner(t, cfg, drive)

	result, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	lookups := srv.lookedUp()
	if want := discid.Compute(drive.TOC); result.DiscID != want || len(lookups) != 1 || lookups[0] != want {
		t.Fatalf("expected lookup of %q, got result %q lookups %v", want, result.DiscID, lookups)
	}
	wantDir := filepath.Join(cfg.Paths.LibraryDir, "Test Album")
	if result.Dir != wantDir {
		t.Fatalf("dir = %q, want %q", result.Dir, wantDir)
	}
	if got := result.Report.Count(ripping.OutcomeWritten); got != 3 {
		t.Fatalf("expected 3 written tracks, got %d (%+v)", got, result.Report.Tracks)
	}

	info, err := flac.Inspect(filepath.Join(wantDir, "Two.flac"))
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}
	want := flac.Tags{Title: "Two", Album: "Test Album", Artist: "Test Artist", TrackNumber: 2, Date: "1999-04-01", Country: "GB"}
	if info.Tags != want {
		t.Fatalf("tags = %+v, want %+v", info.Tags, want)
	}
	if !info.HasPicture {
		t.Fatal("expected embedded cover picture")
	}

	if result.CoverPath != filepath.Join(wantDir, "folder.png") {
		t.Fatalf("unexpected cover path %q", result.CoverPath)
	}
	if _, err := os.Stat(result.CoverPath); err != nil {
		t.Fatalf("cover missing: %v", err)
	}
	if !drive.Ejected {
		t.Fatal("expected disc to be ejected")
	}

	run, err := store.GetRun(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if run.Status != history.StatusCompleted || run.AlbumTitle != "Test Album" || run.AlbumDir != wantDir || len(run.Tracks) != 3 {
		t.Fatalf("unexpected history record: %+v", run)
	}
	if !strings.HasPrefix(srv.lastNotification(), "cdrip - Rip Complete|") || !strings.Contains(srv.lastNotification(), "3 written") {
		t.Fatalf("unexpected notification %q", srv.lastNotification())
	}
}

func TestRunMetadataNotFound(t *testing.T) {
	srv := newFakeServer(t, func(fs *fakeServer) {
		fs.releaseCode = http.StatusNotFound
		fs.releaseBody = `{"error":"Not Found"}`
	})
	cfg := srv.config(t, false)
	drive := testsupport.NewFakeDrive(2, 2)
	runner, store := newRunner(t, cfg, drive)

	result, err := runner.Run(context.Background())
	if !errors.Is(err, workflow.ErrMetadataNotFound) {
		t.Fatalf("expected ErrMetadataNotFound, got %v", err)
	}
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected lookup kind to be preserved, got %v", err)
	}
	if result.DiscID == "" || result.Dir != "" {
		t.Fatalf("unexpected result %+v", result)
	}
	if len(drive.Reads) != 0 {
		t.Fatalf("expected no track reads, got %v", drive.Reads)
	}
	if _, statErr := os.Stat(cfg.Paths.LibraryDir); !os.IsNotExist(statErr) {
		t.Fatalf("expected library dir untouched, stat err %v", statErr)
	}
	run, err := store.GetRun(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if run.Status != history.StatusFailed || !strings.Contains(run.Reason, "no album metadata") {
		t.Fatalf("unexpected history record: %+v", run)
	}
	if !strings.HasPrefix(srv.lastNotification(), "cdrip - Error|") {
		t.Fatalf("expected failure notification, got %q", srv.lastNotification())
	}
}

func TestRunNoCDMediumIsMetadataNotFound(t *testing.T) {
	srv := newFakeServer(t, func(fs *fakeServer) {
		fs.releaseBody = `{"releases":[{"id":"rel-1","title":"Tape","media":[{"format":"Cassette","tracks":[]}]}]}`
	})
	cfg := srv.config(t, false)
	runner, _ := newRunner(t, cfg, testsupport.NewFakeDrive(1, 2))

	if _, err := runner.Run(context.Background()); !errors.Is(err, workflow.ErrMetadataNotFound) {
		t.Fatalf("expected ErrMetadataNotFound, got %v", err)
	}
}

func TestRunAlbumExists(t *testing.T) {
	srv := newFakeServer(t)
	cfg := srv.config(t, false)
	existing := filepath.Join(cfg.Paths.LibraryDir, "Test Album", "One.flac")
	testsupport.WriteFile(t, existing, 128)
	drive := testsupport.NewFakeDrive(3, 2)
	runner, _ := newRunner(t, cfg, drive)

	result, err := runner.Run(context.Background())
	if !errors.Is(err, workflow.ErrAlbumExists) {
		t.Fatalf("expected ErrAlbumExists, got %v", err)
	}
	if result.Album.Title != "Test Album" {
		t.Fatalf("expected resolved album in result, got %+v", result.Album)
	}
	if len(drive.Reads) != 0 {
		t.Fatalf("expected no reads, got %v", drive.Reads)
	}
	if info, statErr := os.Stat(existing); statErr != nil || info.Size() != 128 {
		t.Fatalf("existing file modified: %v", statErr)
	}
	entries, _ := os.ReadDir(filepath.Dir(existing))
	if len(entries) != 1 {
		t.Fatalf("expected album dir untouched, got %d entries", len(entries))
	}
}

func TestRunDriveReadFailureAborts(t *testing.T) {
	srv := newFakeServer(t)
	cfg := srv.config(t, false)
	drive := testsupport.NewFakeDrive(3, 2)
	drive.ReadErr[2] = errors.New("medium error")
	runner, store := newRunner(t, cfg, drive)

	result, err := runner.Run(context.Background())
	if !errors.Is(err, services.ErrDriveIO) {
		t.Fatalf("expected ErrDriveIO, got %v", err)
	}
	if len(result.Report.Tracks) != 1 || result.Report.Tracks[0].Outcome != ripping.OutcomeWritten {
		t.Fatalf("expected partial report with track 1, got %+v", result.Report.Tracks)
	}
	if _, statErr := os.Stat(filepath.Join(result.Dir, "One.flac")); statErr != nil {
		t.Fatalf("expected track 1 kept: %v", statErr)
	}
	if result.CoverPath != "" || drive.Ejected {
		t.Fatal("expected no cover fetch or eject after abort")
	}
	run, err := store.GetRun(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if run.Status != history.StatusFailed || len(run.Tracks) != 1 {
		t.Fatalf("unexpected history record: %+v", run)
	}
}

func TestRunCoverFailureIsNonFatal(t *testing.T) {
	srv := newFakeServer(t, func(fs *fakeServer) {
		fs.coverStatus = http.StatusServiceUnavailable
	})
	cfg := srv.config(t, true)
	runner, store := newRunner(t, cfg, testsupport.NewFakeDrive(3, 2))

	result, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.CoverPath != "" {
		t.Fatalf("expected no cover, got %q", result.CoverPath)
	}
	if got := result.Report.Count(ripping.OutcomeWritten); got != 3 {
		t.Fatalf("expected 3 written tracks, got %d", got)
	}
	if matches, _ := filepath.Glob(filepath.Join(result.Dir, "folder.*")); len(matches) != 0 {
		t.Fatalf("unexpected cover files %v", matches)
	}
	run, err := store.GetRun(context.Background(), result.RunID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if run.Status != history.StatusCompleted {
		t.Fatalf("expected completed run, got %s", run.Status)
	}
}

func TestRunDryRun(t *testing.T) {
	srv := newFakeServer(t)
	cfg := srv.config(t, false)
	drive := testsupport.NewFakeDrive(3, 2)
	var seen album.Album
	runner, store := newRunner(t, cfg, drive,
		workflow.WithDryRun(true),
		workflow.WithAlbumHandler(func(_ string, al album.Album) { seen = al }),
	)

	result, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if seen.Title != "Test Album" || len(seen.Tracks) != 3 {
		t.Fatalf("album handler saw %+v", seen)
	}
	if result.Dir != "" || len(drive.Reads) != 0 {
		t.Fatalf("dry run wrote or read: %+v reads %v", result, drive.Reads)
	}
	if runs, _ := store.ListRuns(context.Background(), 0); len(runs) != 0 {
		t.Fatalf("dry run recorded history: %+v", runs)
	}
	if srv.lastNotification() != "" {
		t.Fatalf("dry run notified: %q", srv.lastNotification())
	}
}

func TestRunTOCFailure(t *testing.T) {
	drive := testsupport.NewFakeDrive(1, 2)
	drive.TOCErr = errors.New("no disc")
	runner := workflow.NewRunner(drive, stubResolver{}, t.TempDir(), nil)

	if _, err := runner.Run(context.Background()); !errors.Is(err, services.ErrDriveIO) {
		t.Fatalf("expected ErrDriveIO, got %v", err)
	}
}

func TestRunUsesExplicitRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "root")
	drive := testsupport.NewFakeDrive(1, 2)
	resolver := stubResolver{al: album.Album{Title: "AC/DC: Live", Artist: "AC/DC", Tracks: []album.Track{{Number: 1, Title: "Track"}}}}
	runner := workflow.NewRunner(drive, resolver, root, nil)

	result, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Dir != filepath.Join(root, "AC-DC- Live") {
		t.Fatalf("unexpected dir %q", result.Dir)
	}
	if result.RunID == "" {
		t.Fatal("expected generated run id")
	}
}

type stubResolver struct {
	al  album.Album
	err error
}

func (s stubResolver) ResolveDetailed(context.Context, string) (album.Album, error) {
	if s.err != nil {
		return album.Album{}, s.err
	}
	if s.al.Title == "" {
		return album.Album{}, services.ErrNotFound
	}
	return s.al, nil
}
