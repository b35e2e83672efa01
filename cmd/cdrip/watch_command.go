package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"cdrip/internal/config"
	"cdrip/internal/disc"
	"cdrip/internal/fileutil"
	"cdrip/internal/history"
	"cdrip/internal/logging"
	"cdrip/internal/monitor"
	"cdrip/internal/notifications"
	"cdrip/internal/workflow"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var device string
	var ripLoaded bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rip every disc inserted into the drive",
		Long: `Watch listens for udev media-change events on the configured drive and
runs a full rip for each inserted disc. Albums land in paths.library_dir; the
disc is ejected afterwards when drive.eject_on_complete is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cfg, err := withDevice(base, device)
			if err != nil {
				return err
			}
			return runWatch(cmd.Context(), cfg, ripLoaded)
		},
	}
	cmd.PersistentFlags().StringVar(&device, "device", "", "Optical drive device (defaults to drive.device)")
	cmd.Flags().BoolVar(&ripLoaded, "now", false, "Also rip a disc that is already loaded at startup")

	resolve := func() (*config.Config, error) {
		base, err := ctx.ensureConfig()
		if err != nil {
			return nil, err
		}
		return withDevice(base, device)
	}
	cmd.AddCommand(newWatchPauseCommand(resolve), newWatchResumeCommand(resolve))
	return cmd
}

func newWatchPauseCommand(resolve func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "pause",
		Short: "Pause detection of new disc insertions",
		Long: `Pause makes a running or future watch ignore inserted discs on the drive
until resume is run. A rip already in progress is not interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolve()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if detectionPaused(cfg) {
				fmt.Fprintf(out, "Disc detection already paused for %s\n", cfg.Drive.Device)
				return nil
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}
			if err := fileutil.WriteAtomic(cfg.PausePath(), nil, 0o644); err != nil {
				return fmt.Errorf("write pause marker: %w", err)
			}
			fmt.Fprintf(out, "Disc detection paused for %s\n", cfg.Drive.Device)
			return nil
		},
	}
}

func newWatchResumeCommand(resolve func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Resume detection of new disc insertions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolve()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			err = os.Remove(cfg.PausePath())
			switch {
			case errors.Is(err, os.ErrNotExist):
				fmt.Fprintf(out, "Disc detection was not paused for %s\n", cfg.Drive.Device)
				return nil
			case err != nil:
				return fmt.Errorf("remove pause marker: %w", err)
			}
			fmt.Fprintf(out, "Disc detection resumed for %s\n", cfg.Drive.Device)
			return nil
		},
	}
}

// detectionPaused reports whether the pause marker for the drive exists.
func detectionPaused(cfg *config.Config) bool {
	_, err := os.Stat(cfg.PausePath())
	return err == nil
}

func runWatch(parent context.Context, cfg *config.Config, ripLoaded bool) error {
	signalCtx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	lock, err := acquireDriveLock(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Unlock() }()

	var store *history.Store
	if cfg.History.Enabled {
		store, err = openHistory(cfg)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	handler := newDiscHandler(cfg, store, logger)
	paused := func() bool { return detectionPaused(cfg) }
	if ripLoaded && paused() {
		logger.Info("disc detection paused; not ripping loaded disc",
			logging.String(logging.FieldEventType, "watch_initial_rip_paused"),
		)
	} else if ripLoaded {
		if status, err := disc.CheckDriveStatus(cfg.Drive.Device); err == nil && status == disc.DriveStatusDiscOK {
			if err := handler(signalCtx, cfg.Drive.Device); err != nil && !errors.Is(err, context.Canceled) {
				logging.WarnWithContext(logger, "initial rip failed", "watch_initial_rip_failed",
					logging.Error(err),
					logging.String(logging.FieldImpact, "loaded disc not ripped"),
					logging.String(logging.FieldErrorHint, "eject and reinsert the disc to retry"),
				)
			}
		}
	}

	mon := monitor.New(cfg.Drive.Device, logger, handler, monitor.WithPause(paused))
	logger.Info("watching for discs",
		logging.String(logging.FieldEventType, "watch_started"),
		logging.String("device", cfg.Drive.Device),
		logging.String("library_dir", cfg.Paths.LibraryDir),
		logging.Bool("paused", paused()),
	)
	if err := mon.Run(signalCtx); err != nil {
		return err
	}
	logger.Info("watch stopped", logging.String(logging.FieldEventType, "watch_stopped"))
	return nil
}

// newDiscHandler returns the monitor callback that rips one inserted disc.
func newDiscHandler(cfg *config.Config, store *history.Store, logger *slog.Logger) monitor.Handler {
	notifier := notifications.NewService(cfg)
	return func(ctx context.Context, device string) error {
		if err := notifier.NotifyDiscDetected(ctx, device); err != nil {
			logger.Debug("disc detected notification failed", logging.Error(err))
		}

		status, err := disc.WaitForReady(ctx, device, cfg.DriveReadyTimeout())
		if err != nil {
			return fmt.Errorf("drive %s not ready (%s): %w", device, status, err)
		}

		drive, err := openDrive(device)
		if err != nil {
			return fmt.Errorf("open drive %s: %w", device, err)
		}
		defer drive.Close()

		opts := []workflow.Option{workflow.WithNotifier(notifier)}
		if store != nil {
			opts = append(opts, workflow.WithRecorder(store))
		}
		runner, err := workflow.NewRunnerFromConfig(cfg, drive, logger, opts...)
		if err != nil {
			return err
		}
		result, err := runner.Run(ctx)
		if err != nil {
			return err
		}
		logger.Info("disc ripped",
			logging.String(logging.FieldEventType, "watch_disc_ripped"),
			logging.String("album", result.Album.Title),
			logging.String("dir", result.Dir),
			logging.String("summary", summarizeReport(result.Report)),
		)
		return nil
	}
}
