package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cdrip/internal/discid"
	"cdrip/internal/musicbrainz"
)

func newLookupCommand(ctx *commandContext) *cobra.Command {
	var source discSource
	var discIDFlag string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Resolve a disc on MusicBrainz and print the album",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			id := strings.TrimSpace(discIDFlag)
			if id == "" {
				toc, err := source.read(cmd.Context(), cfg)
				if err != nil {
					return err
				}
				id = discid.Compute(toc)
			}

			logger, err := commandLogger(cfg)
			if err != nil {
				return err
			}
			client, err := musicbrainz.New(cfg.MusicBrainz.BaseURL, cfg.UserAgent(),
				musicbrainz.WithTimeout(cfg.MusicBrainzTimeout()),
				musicbrainz.WithLogger(logger),
			)
			if err != nil {
				return err
			}
			resolver := musicbrainz.NewResolver(client, cfg.CoverArt.BaseURL, logger)
			al, err := resolver.ResolveDetailed(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("lookup disc %s: %w", id, err)
			}

			if jsonOut {
				return writeJSON(cmd, newAlbumView(id, al))
			}
			printAlbum(cmd.OutOrStdout(), id, al)
			return nil
		},
	}
	source.register(cmd)
	cmd.Flags().StringVar(&discIDFlag, "disc-id", "", "Look up this disc ID instead of reading a TOC")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
