package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cdrip/internal/config"
	"cdrip/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check the drive, directories and web services",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			local := runPreflight(cmd.Context(), cfg)
			lines := renderSectionHeader("Local", colorize)
			lines = append(lines, preflightLines(local, colorize)...)

			all := local
			if !offline {
				network := preflight.RunNetwork(cmd.Context(), cfg)
				lines = append(lines, "")
				lines = append(lines, renderSectionHeader("Network", colorize)...)
				lines = append(lines, preflightLines(network, colorize)...)
				all = append(all, network...)
			}

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Features", colorize)...)
			lines = append(lines,
				renderStatusLine("Cover art", statusInfo, featureDetail(cfg.CoverArt.Enabled, cfg.CoverArt.Embed, "embedded"), colorize),
				renderStatusLine("History", statusInfo, yesNo(cfg.History.Enabled), colorize),
				renderStatusLine("Notifications", statusInfo, yesNo(cfg.Notifications.NtfyTopic != ""), colorize),
				renderStatusLine("Eject on complete", statusInfo, yesNo(cfg.Drive.EjectOnComplete), colorize),
				renderStatusLine("Disc detection", statusInfo, detectionLabel(cfg), colorize),
			)

			for _, line := range lines {
				fmt.Fprintln(out, line)
			}
			if failed := preflight.Failed(all); len(failed) > 0 {
				return fmt.Errorf("%d of %d checks failed", len(failed), len(all))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "Skip the MusicBrainz and Cover Art Archive probes")
	return cmd
}

func detectionLabel(cfg *config.Config) string {
	if detectionPaused(cfg) {
		return "paused"
	}
	return "active"
}

func featureDetail(enabled, extra bool, extraLabel string) string {
	if !enabled {
		return "no"
	}
	if extra {
		return "yes (" + extraLabel + ")"
	}
	return "yes"
}
