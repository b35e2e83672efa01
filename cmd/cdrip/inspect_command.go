package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"cdrip/internal/flac"
)

type inspectView struct {
	Path       string `json:"path"`
	Track      uint32 `json:"track"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Album      string `json:"album"`
	Date       string `json:"date"`
	Country    string `json:"country"`
	SampleRate uint32 `json:"sample_rate"`
	Channels   uint8  `json:"channels"`
	BitDepth   uint8  `json:"bits_per_sample"`
	Length     string `json:"length"`
	Cover      bool   `json:"embedded_cover"`
}

func newInspectCommand() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:         "inspect <album-dir|file.flac>",
		Short:       "Read back the stream info and tags of ripped FLAC files",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := flacFiles(args[0])
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return fmt.Errorf("no .flac files in %s", args[0])
			}

			views := make([]inspectView, 0, len(paths))
			for _, path := range paths {
				info, err := flac.Inspect(path)
				if err != nil {
					return err
				}
				views = append(views, inspectView{
					Path:       info.Path,
					Track:      info.Tags.TrackNumber,
					Title:      info.Tags.Title,
					Artist:     info.Tags.Artist,
					Album:      info.Tags.Album,
					Date:       info.Tags.Date,
					Country:    info.Tags.Country,
					SampleRate: info.SampleRate,
					Channels:   info.Channels,
					BitDepth:   info.BitsPerSample,
					Length:     formatDuration(info.Duration),
					Cover:      info.HasPicture,
				})
			}
			sort.SliceStable(views, func(i, j int) bool {
				if views[i].Track != views[j].Track {
					return views[i].Track < views[j].Track
				}
				return views[i].Path < views[j].Path
			})

			if jsonOut {
				return writeJSON(cmd, views)
			}
			rows := make([][]string, 0, len(views))
			for _, v := range views {
				rows = append(rows, []string{
					strconv.FormatUint(uint64(v.Track), 10),
					v.Title,
					v.Artist,
					v.Album,
					v.Date,
					v.Length,
					yesNo(v.Cover),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"#", "Title", "Artist", "Album", "Date", "Length", "Cover"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func flacFiles(target string) ([]string, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{target}, nil
	}
	entries, err := os.ReadDir(target)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", target, err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".flac") {
			continue
		}
		paths = append(paths, filepath.Join(target, entry.Name()))
	}
	return paths, nil
}
