package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeDrive()
	c.normalizeMusicBrainz()
	c.normalizeCoverArt()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("CDRIP_LIBRARY_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.LibraryDir = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.LibraryDir) == "" {
		c.Paths.LibraryDir = defaultLibraryDir
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir()
	}
	var err error
	if c.Paths.LibraryDir, err = expandPath(c.Paths.LibraryDir); err != nil {
		return fmt.Errorf("paths.library_dir: %w", err)
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeDrive() {
	c.Drive.Device = strings.TrimSpace(c.Drive.Device)
	if c.Drive.Device == "" {
		c.Drive.Device = defaultDevice
	}
	if c.Drive.ReadyTimeout <= 0 {
		c.Drive.ReadyTimeout = defaultReadyTimeout
	}
}

func (c *Config) normalizeMusicBrainz() {
	c.MusicBrainz.BaseURL = strings.TrimRight(strings.TrimSpace(c.MusicBrainz.BaseURL), "/")
	if c.MusicBrainz.BaseURL == "" {
		c.MusicBrainz.BaseURL = defaultMusicBrainzBaseURL
	}
	c.MusicBrainz.AppName = strings.TrimSpace(c.MusicBrainz.AppName)
	if c.MusicBrainz.AppName == "" {
		c.MusicBrainz.AppName = defaultAppName
	}
	c.MusicBrainz.AppVersion = strings.TrimSpace(c.MusicBrainz.AppVersion)
	if c.MusicBrainz.AppVersion == "" {
		c.MusicBrainz.AppVersion = defaultAppVersion
	}
	c.MusicBrainz.Contact = strings.TrimSpace(c.MusicBrainz.Contact)
	if value, ok := os.LookupEnv("CDRIP_CONTACT"); ok && strings.TrimSpace(value) != "" {
		c.MusicBrainz.Contact = strings.TrimSpace(value)
	}
	if c.MusicBrainz.TimeoutSeconds <= 0 {
		c.MusicBrainz.TimeoutSeconds = defaultLookupTimeoutSeconds
	}
}

func (c *Config) normalizeCoverArt() {
	c.CoverArt.BaseURL = strings.TrimRight(strings.TrimSpace(c.CoverArt.BaseURL), "/")
	if c.CoverArt.BaseURL == "" {
		c.CoverArt.BaseURL = defaultCoverArtBaseURL
	}
	if c.CoverArt.TimeoutSeconds <= 0 {
		c.CoverArt.TimeoutSeconds = defaultCoverArtTimeoutSeconds
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
