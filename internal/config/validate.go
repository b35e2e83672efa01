package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateDrive(); err != nil {
		return err
	}
	if err := c.validateMusicBrainz(); err != nil {
		return err
	}
	if err := c.validateCoverArt(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return ensurePositiveMap(map[string]int{
		"drive.ready_timeout":           c.Drive.ReadyTimeout,
		"musicbrainz.timeout_seconds":   c.MusicBrainz.TimeoutSeconds,
		"cover_art.timeout_seconds":     c.CoverArt.TimeoutSeconds,
		"notifications.request_timeout": c.Notifications.RequestTimeout,
	})
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.LibraryDir) == "" {
		return errors.New("paths.library_dir must be set")
	}
	if c.History.Enabled && strings.TrimSpace(c.Paths.StateDir) == "" {
		return errors.New("paths.state_dir must be set when history.enabled is true")
	}
	return nil
}

func (c *Config) validateDrive() error {
	if !strings.HasPrefix(c.Drive.Device, "/") {
		return fmt.Errorf("drive.device must be an absolute device path, got %q", c.Drive.Device)
	}
	return nil
}

func (c *Config) validateMusicBrainz() error {
	if err := validateHTTPURL("musicbrainz.base_url", c.MusicBrainz.BaseURL); err != nil {
		return err
	}
	if strings.TrimSpace(c.MusicBrainz.Contact) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = defaultConfigPath
		}
		return fmt.Errorf("musicbrainz.contact is required by the MusicBrainz API etiquette. Set CDRIP_CONTACT or edit %s (create with 'cdrip config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateCoverArt() error {
	if !c.CoverArt.Enabled {
		return nil
	}
	if err := validateHTTPURL("cover_art.base_url", c.CoverArt.BaseURL); err != nil {
		return err
	}
	if c.CoverArt.MaxDimension < 0 {
		return errors.New("cover_art.max_dimension must be >= 0")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}

func validateHTTPURL(key, raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must use http or https, got %q", key, raw)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s must include a host, got %q", key, raw)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
