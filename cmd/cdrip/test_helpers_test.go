package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"cdrip/internal/config"
	"cdrip/internal/disc"
	"cdrip/internal/preflight"
	"cdrip/internal/testsupport"
)

// Three-track fixture TOC and its disc ID.
const (
	threeTrackTOC    = "1 3 150150 150 20150 40150"
	threeTrackDiscID = "J6SjQeHWRQyim__PFXFhxpRTsf0-"
)

const releaseJSON = `{"releases":[{
  "id":"rel-1",
  "title":"Test Album",
  "date":"1999-04-01",
  "country":"GB",
  "cover-art-archive":{"front":true},
  "artist-credit":[{"name":"Test Artist"}],
  "media":[{"format":"CD","tracks":[
    {"number":"1","title":"One","length":61000},
    {"number":"2","title":"Two"},
    {"number":"3","title":"Three"}
  ]}]
}]}`

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	homeDir := filepath.Join(t.TempDir(), "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("CDRIP_LIBRARY_DIR", "")
	t.Setenv("CDRIP_CONTACT", "")

	cfg := testsupport.NewConfig(t, opts...)
	cfg.Logging.Level = "error"
	configPath := filepath.Join(homeDir, ".config", "cdrip", "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

// useFakeDrive routes drive opens to drive and bypasses the device preflight.
func useFakeDrive(t *testing.T, drive disc.Drive) *[]string {
	t.Helper()
	var opened []string
	prevOpen, prevPreflight := openDrive, runPreflight
	openDrive = func(device string) (disc.Drive, error) {
		opened = append(opened, device)
		return drive, nil
	}
	runPreflight = func(_ context.Context, cfg *config.Config) []preflight.Result {
		return []preflight.Result{preflight.CheckDirectoryAccess("Library directory", cfg.Paths.LibraryDir)}
	}
	t.Cleanup(func() {
		openDrive, runPreflight = prevOpen, prevPreflight
	})
	return &opened
}

type metadataServer struct {
	*httptest.Server

	mu      sync.Mutex
	lookups []string
}

func newMetadataServer(t *testing.T) *metadataServer {
	t.Helper()
	srv := &metadataServer{}
	cover := testsupport.PNGImage(t, 4, 4)
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/2/discid/", func(w http.ResponseWriter, r *http.Request) {
		srv.mu.Lock()
		srv.lookups = append(srv.lookups, strings.TrimPrefix(r.URL.Path, "/ws/2/discid/"))
		srv.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, releaseJSON)
	})
	mux.HandleFunc("/release/rel-1/front", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(cover)
	})
	srv.Server = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func (s *metadataServer) lookedUp() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lookups...)
}

func (s *metadataServer) configOptions() []testsupport.ConfigOption {
	return []testsupport.ConfigOption{
		testsupport.WithMusicBrainzURL(s.URL + "/ws/2"),
		testsupport.WithCoverArt(s.URL, false),
	}
}
