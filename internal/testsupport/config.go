package testsupport

import (
	"path/filepath"
	"testing"

	"cdrip/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LibraryDir = filepath.Join(base, "library")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.MusicBrainz.Contact = "test@example.com"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return builder.cfg
}

// WithDevice overrides the optical drive path on the test config.
func WithDevice(path string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Drive.Device = path
	}
}

// WithMusicBrainzURL points lookups at a test server.
func WithMusicBrainzURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.MusicBrainz.BaseURL = url
	}
}

// WithCoverArt points cover downloads at a test server and toggles embedding.
func WithCoverArt(url string, embed bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.CoverArt.Enabled = true
		b.cfg.CoverArt.BaseURL = url
		b.cfg.CoverArt.Embed = embed
	}
}

// WithNtfyTopic enables notifications against the given topic URL.
func WithNtfyTopic(topic string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.NtfyTopic = topic
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
