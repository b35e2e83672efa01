package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"cdrip/internal/config"
	"cdrip/internal/disc"
	"cdrip/internal/history"
	"cdrip/internal/logging"
	"cdrip/internal/preflight"
)

// Seams replaced by tests.
var (
	openDrive = func(device string) (disc.Drive, error) {
		dev, err := disc.OpenDevice(device)
		if err != nil {
			return nil, err
		}
		return dev, nil
	}
	runPreflight = preflight.RunAll
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

// commandLogger logs to stderr and the rolling log file so stdout stays
// reserved for command output.
func commandLogger(cfg *config.Config) (*slog.Logger, error) {
	outputs := []string{"stderr"}
	if cfg.Paths.LogDir != "" {
		outputs = append(outputs, filepath.Join(cfg.Paths.LogDir, "cdrip.log"))
	}
	logger, err := logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: outputs,
		Color:       isTerminal(os.Stderr),
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logger, nil
}

// acquireDriveLock takes the advisory lock for the configured device. Only one
// cdrip process may read a drive at a time.
func acquireDriveLock(cfg *config.Config) (*flock.Flock, error) {
	lock := flock.New(cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire drive lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("drive %s is in use by another cdrip process (lock %s)", cfg.Drive.Device, cfg.LockPath())
	}
	return lock, nil
}

func openHistory(cfg *config.Config) (*history.Store, error) {
	if !cfg.History.Enabled {
		return nil, fmt.Errorf("rip history is disabled (set history.enabled = true)")
	}
	store, err := history.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	return store, nil
}

// withDevice returns a copy of cfg targeting device when it is non-empty.
func withDevice(cfg *config.Config, device string) (*config.Config, error) {
	local := *cfg
	device = strings.TrimSpace(device)
	if device == "" {
		return &local, nil
	}
	if !strings.HasPrefix(device, "/") {
		return nil, fmt.Errorf("device must be an absolute path, got %q", device)
	}
	local.Drive.Device = device
	return &local, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
