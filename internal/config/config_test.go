package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"cdrip/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("XDG_STATE_HOME", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != filepath.Join(tempHome, ".config", "cdrip", "config.toml") {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "state", "cdrip")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if !filepath.IsAbs(cfg.Paths.LibraryDir) {
		t.Fatalf("expected library dir to be absolute, got %q", cfg.Paths.LibraryDir)
	}
	if cfg.Drive.Device != "/dev/sr0" {
		t.Fatalf("unexpected device: %q", cfg.Drive.Device)
	}
	if cfg.MusicBrainzTimeout() != 15*time.Second {
		t.Fatalf("unexpected lookup timeout: %s", cfg.MusicBrainzTimeout())
	}
	if cfg.CoverArtTimeout() != 15*time.Second {
		t.Fatalf("unexpected cover timeout: %s", cfg.CoverArtTimeout())
	}
	if !cfg.CoverArt.Enabled || cfg.CoverArt.Embed {
		t.Fatalf("unexpected cover art defaults: %+v", cfg.CoverArt)
	}
	if cfg.HistoryPath() != filepath.Join(wantState, "history.db") {
		t.Fatalf("unexpected history path: %q", cfg.HistoryPath())
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StateDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "cdrip.toml")

	type payload struct {
		Paths struct {
			LibraryDir string `toml:"library_dir"`
		} `toml:"paths"`
		MusicBrainz struct {
			BaseURL string `toml:"base_url"`
			Contact string `toml:"contact"`
		} `toml:"musicbrainz"`
		CoverArt struct {
			Embed        bool `toml:"embed"`
			MaxDimension int  `toml:"max_dimension"`
		} `toml:"cover_art"`
	}
	custom := payload{}
	custom.Paths.LibraryDir = filepath.Join(tempDir, "music")
	custom.MusicBrainz.BaseURL = "https://mb.example.com/ws/2/"
	custom.MusicBrainz.Contact = "ops@example.com"
	custom.CoverArt.Embed = true
	custom.CoverArt.MaxDimension = 1000

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Paths.LibraryDir != custom.Paths.LibraryDir {
		t.Fatalf("unexpected library dir: %q", cfg.Paths.LibraryDir)
	}
	if cfg.MusicBrainz.BaseURL != "https://mb.example.com/ws/2" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.MusicBrainz.BaseURL)
	}
	if got := cfg.UserAgent(); got != "cdrip/0.1.0 (ops@example.com)" {
		t.Fatalf("unexpected user agent: %q", got)
	}
	if !cfg.CoverArt.Embed || cfg.CoverArt.MaxDimension != 1000 {
		t.Fatalf("unexpected cover art settings: %+v", cfg.CoverArt)
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	libraryDir := t.TempDir()
	t.Setenv("CDRIP_LIBRARY_DIR", libraryDir)
	t.Setenv("CDRIP_CONTACT", "env@example.com")

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.LibraryDir != libraryDir {
		t.Fatalf("expected library dir from env, got %q", cfg.Paths.LibraryDir)
	}
	if cfg.MusicBrainz.Contact != "env@example.com" {
		t.Fatalf("expected contact from env, got %q", cfg.MusicBrainz.Contact)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "cdrip.toml")
	if err := os.WriteFile(configPath, []byte("[drive]\noptical_drive = \"/dev/sr1\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected parse error for unknown key")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{name: "defaults"},
		{
			name:    "relative device",
			mutate:  func(c *config.Config) { c.Drive.Device = "sr0" },
			wantErr: "drive.device",
		},
		{
			name:    "missing contact",
			mutate:  func(c *config.Config) { c.MusicBrainz.Contact = "" },
			wantErr: "musicbrainz.contact",
		},
		{
			name:    "bad musicbrainz scheme",
			mutate:  func(c *config.Config) { c.MusicBrainz.BaseURL = "ftp://musicbrainz.org" },
			wantErr: "musicbrainz.base_url",
		},
		{
			name:    "negative cover dimension",
			mutate:  func(c *config.Config) { c.CoverArt.MaxDimension = -1 },
			wantErr: "cover_art.max_dimension",
		},
		{
			name:   "cover checks skipped when disabled",
			mutate: func(c *config.Config) { c.CoverArt.Enabled = false; c.CoverArt.BaseURL = "" },
		},
		{
			name:    "zero lookup timeout",
			mutate:  func(c *config.Config) { c.MusicBrainz.TimeoutSeconds = 0 },
			wantErr: "musicbrainz.timeout_seconds",
		},
		{
			name:    "unknown level",
			mutate:  func(c *config.Config) { c.Logging.Level = "chatty" },
			wantErr: "logging.level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			if tt.mutate != nil {
				tt.mutate(&cfg)
			}
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if !cfg.Drive.EjectOnComplete {
		t.Fatal("expected sample to enable eject_on_complete")
	}
}

func TestLockPathDerivedFromDevice(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.StateDir = "/var/lib/cdrip"
	cfg.Drive.Device = "/dev/sr1"
	if got := cfg.LockPath(); got != "/var/lib/cdrip/dev_sr1.lock" {
		t.Fatalf("unexpected lock path: %q", got)
	}
	if got := cfg.PausePath(); got != "/var/lib/cdrip/dev_sr1.paused" {
		t.Fatalf("unexpected pause path: %q", got)
	}
}
