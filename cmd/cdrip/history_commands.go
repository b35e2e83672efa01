package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"cdrip/internal/history"
)

type runView struct {
	RunID      string      `json:"run_id"`
	Album      string      `json:"album,omitempty"`
	Artist     string      `json:"artist,omitempty"`
	Dir        string      `json:"album_dir,omitempty"`
	Status     string      `json:"status"`
	Reason     string      `json:"reason,omitempty"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt *time.Time  `json:"finished_at,omitempty"`
	Tracks     []trackLine `json:"tracks,omitempty"`
}

type trackLine struct {
	Number  uint32 `json:"number"`
	Title   string `json:"title"`
	Outcome string `json:"outcome"`
	Path    string `json:"path,omitempty"`
	Detail  string `json:"detail,omitempty"`
	Elapsed string `json:"elapsed"`
}

func newRunView(run history.Run) runView {
	view := runView{
		RunID:     run.ID,
		Album:     run.AlbumTitle,
		Artist:    run.Artist,
		Dir:       run.AlbumDir,
		Status:    string(run.Status),
		Reason:    run.Reason,
		StartedAt: run.StartedAt,
	}
	if !run.FinishedAt.IsZero() {
		finished := run.FinishedAt
		view.FinishedAt = &finished
	}
	for _, track := range run.Tracks {
		view.Tracks = append(view.Tracks, trackLine{
			Number:  track.Number,
			Title:   track.Title,
			Outcome: track.Outcome,
			Path:    track.Path,
			Detail:  track.Detail,
			Elapsed: track.Elapsed.Round(time.Millisecond).String(),
		})
	}
	return view
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent rips",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := openHistory(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOut {
				views := make([]runView, 0, len(runs))
				for _, run := range runs {
					views = append(views, newRunView(run))
				}
				return writeJSON(cmd, views)
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No rips recorded")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					run.ID,
					formatTimestamp(run.StartedAt),
					valueOr(run.AlbumTitle, "-"),
					valueOr(run.Artist, "-"),
					string(run.Status),
					formatRunDuration(run),
					valueOr(run.Reason, ""),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Run", "Started", "Album", "Artist", "Status", "Duration", "Reason"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list (0 for all)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")

	cmd.AddCommand(newHistoryShowCommand(ctx))
	cmd.AddCommand(newHistoryClearCommand(ctx))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the per-track results of one rip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := openHistory(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.GetRun(cmd.Context(), args[0])
			if errors.Is(err, history.ErrRunNotFound) {
				return fmt.Errorf("run %s not found", args[0])
			}
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, newRunView(*run))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run:       %s\n", run.ID)
			fmt.Fprintf(out, "Album:     %s\n", valueOr(run.AlbumTitle, "-"))
			fmt.Fprintf(out, "Artist:    %s\n", valueOr(run.Artist, "-"))
			fmt.Fprintf(out, "Directory: %s\n", valueOr(run.AlbumDir, "-"))
			fmt.Fprintf(out, "Status:    %s\n", run.Status)
			if run.Reason != "" {
				fmt.Fprintf(out, "Reason:    %s\n", run.Reason)
			}
			fmt.Fprintf(out, "Started:   %s\n", formatTimestamp(run.StartedAt))
			fmt.Fprintf(out, "Duration:  %s\n", formatRunDuration(*run))
			if len(run.Tracks) == 0 {
				return nil
			}
			rows := make([][]string, 0, len(run.Tracks))
			for _, track := range run.Tracks {
				rows = append(rows, []string{
					strconv.FormatUint(uint64(track.Number), 10),
					track.Title,
					track.Outcome,
					track.Elapsed.Round(time.Millisecond).String(),
					valueOr(track.Detail, track.Path),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Title", "Result", "Elapsed", "Detail"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded rips",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := openHistory(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d runs\n", removed)
			return nil
		},
	}
}

func formatRunDuration(run history.Run) string {
	if run.FinishedAt.IsZero() {
		return "-"
	}
	return formatDuration(run.Duration())
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
