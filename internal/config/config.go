package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	// LibraryDir is the destination root; each rip creates <library_dir>/<album title>.
	LibraryDir string `toml:"library_dir"`
	StateDir   string `toml:"state_dir"`
	LogDir     string `toml:"log_dir"`
}

// Drive contains configuration for the optical drive.
type Drive struct {
	Device          string `toml:"device"`
	EjectOnComplete bool   `toml:"eject_on_complete"`
	ReadyTimeout    int    `toml:"ready_timeout"`
}

// MusicBrainz contains configuration for the metadata web service.
type MusicBrainz struct {
	BaseURL        string `toml:"base_url"`
	AppName        string `toml:"app_name"`
	AppVersion     string `toml:"app_version"`
	Contact        string `toml:"contact"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// CoverArt contains configuration for the Cover Art Archive download.
type CoverArt struct {
	Enabled        bool   `toml:"enabled"`
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	// Embed adds the fetched image as a PICTURE block to each written track.
	Embed bool `toml:"embed"`
	// MaxDimension downscales covers whose longest side exceeds it. Zero keeps
	// the original bytes.
	MaxDimension int `toml:"max_dimension"`
}

// History contains configuration for the rip history store.
type History struct {
	Enabled bool `toml:"enabled"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for cdrip.
//
// Configuration sections by subsystem:
//   - Paths: destination root, state and log directories
//   - Drive: optical device and watch-mode behaviour
//   - MusicBrainz: disc ID lookup endpoint and client identity
//   - CoverArt: front cover download and embedding
//   - History: SQLite record of completed runs
//   - Notifications: ntfy push notification settings
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Drive         Drive         `toml:"drive"`
	MusicBrainz   MusicBrainz   `toml:"musicbrainz"`
	CoverArt      CoverArt      `toml:"cover_art"`
	History       History       `toml:"history"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("cdrip.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state and log directories. The library
// directory is left alone; album directories are created per run.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// HistoryPath returns the SQLite history database location.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// LockPath returns the advisory lock file guarding the configured drive.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, c.driveStateName()+".lock")
}

// PausePath returns the marker file that pauses disc detection in watch mode
// for the configured drive.
func (c *Config) PausePath() string {
	return filepath.Join(c.Paths.StateDir, c.driveStateName()+".paused")
}

func (c *Config) driveStateName() string {
	name := strings.Trim(strings.ReplaceAll(c.Drive.Device, string(filepath.Separator), "_"), "_")
	if name == "" {
		name = "drive"
	}
	return name
}

// UserAgent returns the identification string sent to MusicBrainz and the
// Cover Art Archive.
func (c *Config) UserAgent() string {
	ua := fmt.Sprintf("%s/%s", c.MusicBrainz.AppName, c.MusicBrainz.AppVersion)
	if contact := strings.TrimSpace(c.MusicBrainz.Contact); contact != "" {
		ua += " (" + contact + ")"
	}
	return ua
}

// MusicBrainzTimeout returns the per-request lookup timeout.
func (c *Config) MusicBrainzTimeout() time.Duration {
	return time.Duration(c.MusicBrainz.TimeoutSeconds) * time.Second
}

// CoverArtTimeout returns the per-request cover download timeout.
func (c *Config) CoverArtTimeout() time.Duration {
	return time.Duration(c.CoverArt.TimeoutSeconds) * time.Second
}

// DriveReadyTimeout returns how long watch mode waits for a loaded tray to settle.
func (c *Config) DriveReadyTimeout() time.Duration {
	return time.Duration(c.Drive.ReadyTimeout) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultStateDir() string {
	if base, ok := os.LookupEnv("XDG_STATE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "cdrip")
	}
	return "~/.local/state/cdrip"
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
