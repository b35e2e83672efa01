package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cdrip/internal/config"
	"cdrip/internal/disc"
	"cdrip/internal/discid"
)

type discSource struct {
	toc    string
	device string
}

func (s *discSource) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.toc, "toc", "", `Use a TOC instead of the drive: "first last leadout offset1 offset2 ..." (sectors, lead-in included)`)
	cmd.Flags().StringVar(&s.device, "device", "", "Optical drive device (defaults to drive.device)")
}

// read returns the TOC from --toc when given, otherwise from the drive.
func (s *discSource) read(ctx context.Context, base *config.Config) (disc.TOC, error) {
	if value := strings.TrimSpace(s.toc); value != "" {
		toc, err := disc.ParseTOC(value)
		if err != nil {
			return disc.TOC{}, fmt.Errorf("parse --toc: %w", err)
		}
		return toc, nil
	}
	cfg, err := withDevice(base, s.device)
	if err != nil {
		return disc.TOC{}, err
	}
	drive, err := openDrive(cfg.Drive.Device)
	if err != nil {
		return disc.TOC{}, fmt.Errorf("open drive %s: %w", cfg.Drive.Device, err)
	}
	defer drive.Close()
	toc, err := drive.ReadTOC(ctx)
	if err != nil {
		return disc.TOC{}, fmt.Errorf("read table of contents: %w", err)
	}
	return toc, nil
}

type discIDView struct {
	DiscID     string `json:"disc_id"`
	TOC        string `json:"toc"`
	FirstTrack uint8  `json:"first_track"`
	LastTrack  uint8  `json:"last_track"`
}

func newDiscIDCommand(ctx *commandContext) *cobra.Command {
	var source discSource
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "discid",
		Short: "Compute the MusicBrainz disc ID of the loaded disc",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			toc, err := source.read(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			view := discIDView{
				DiscID:     discid.Compute(toc),
				TOC:        toc.String(),
				FirstTrack: toc.FirstTrack,
				LastTrack:  toc.LastTrack,
			}
			if jsonOut {
				return writeJSON(cmd, view)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Disc ID:  %s\n", view.DiscID)
			fmt.Fprintf(out, "Tracks:   %d-%d\n", view.FirstTrack, view.LastTrack)
			fmt.Fprintf(out, "TOC:      %s\n", view.TOC)
			return nil
		},
	}
	source.register(cmd)
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
