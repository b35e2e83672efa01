package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"cdrip/internal/album"
	"cdrip/internal/config"
	"cdrip/internal/logging"
	"cdrip/internal/preflight"
	"cdrip/internal/ripping"
	"cdrip/internal/workflow"
)

type ripOptions struct {
	dir    string
	device string
	dryRun bool
	eject  bool
}

func newRipCommand(ctx *commandContext) *cobra.Command {
	var opts ripOptions

	cmd := &cobra.Command{
		Use:   "rip",
		Short: "Rip the loaded disc into <library_dir>/<album title>",
		Long: `Rip reads the disc in the configured drive, looks its disc ID up on
MusicBrainz, and writes one tagged FLAC file per track into a new directory
named after the album. An existing album directory is never modified.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return runRip(cmd, cfg, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.dir, "dir", "d", "", "Destination root (defaults to paths.library_dir)")
	cmd.Flags().StringVar(&opts.device, "device", "", "Optical drive device (defaults to drive.device)")
	cmd.Flags().BoolVarP(&opts.dryRun, "dry-run", "n", false, "Identify the disc and print the album without ripping")
	cmd.Flags().BoolVar(&opts.eject, "eject", false, "Eject the disc after a successful rip")
	return cmd
}

func runRip(cmd *cobra.Command, base *config.Config, opts ripOptions) error {
	cfg, err := withDevice(base, opts.device)
	if err != nil {
		return err
	}
	if dir := strings.TrimSpace(opts.dir); dir != "" {
		root, err := config.ExpandPath(dir)
		if err != nil {
			return fmt.Errorf("resolve destination: %w", err)
		}
		cfg.Paths.LibraryDir = root
	}

	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	out := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()

	if failed := preflight.Failed(runPreflight(signalCtx, cfg)); len(failed) > 0 {
		colorize := shouldColorize(stderr)
		for _, line := range preflightLines(failed, colorize) {
			fmt.Fprintln(stderr, line)
		}
		return fmt.Errorf("preflight failed: %s", failed[0].Detail)
	}

	lock, err := acquireDriveLock(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Unlock() }()

	logger, err := commandLogger(cfg)
	if err != nil {
		return err
	}

	drive, err := openDrive(cfg.Drive.Device)
	if err != nil {
		return fmt.Errorf("open drive %s: %w", cfg.Drive.Device, err)
	}
	defer drive.Close()

	observer := newProgressObserver(stderr)
	runnerOpts := []workflow.Option{
		workflow.WithDryRun(opts.dryRun),
		workflow.WithEject(opts.eject),
		workflow.WithAlbumHandler(func(discID string, al album.Album) {
			printAlbum(out, discID, al)
		}),
		workflow.WithPipelineOptions(ripping.WithObserver(observer)),
	}
	if cfg.History.Enabled && !opts.dryRun {
		store, err := openHistory(cfg)
		if err != nil {
			return err
		}
		defer store.Close()
		runnerOpts = append(runnerOpts, workflow.WithRecorder(store))
	}

	runner, err := workflow.NewRunnerFromConfig(cfg, drive, logger, runnerOpts...)
	if err != nil {
		return err
	}

	result, runErr := runner.Run(signalCtx)
	observer.stop()
	if opts.dryRun && runErr == nil {
		fmt.Fprintln(out, "Dry run: nothing written")
		return nil
	}
	printReport(out, result.Report)
	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			fmt.Fprintln(stderr, "Rip interrupted; remove the partial album directory before ripping again")
		}
		logger.Debug("rip finished with error", logging.Error(runErr))
		return runErr
	}

	fmt.Fprintf(out, "Ripped %q to %s (%s) in %s\n",
		result.Album.Title, result.Dir, summarizeReport(result.Report), formatDuration(result.Duration()))
	if result.CoverPath != "" {
		fmt.Fprintf(out, "Cover art: %s\n", result.CoverPath)
	}
	return nil
}
