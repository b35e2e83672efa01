package preflight

import (
	"context"

	"cdrip/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

// RunAll executes the local checks needed before a rip: destination root,
// state directory and drive. Network probes are left to RunNetwork.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Library directory", cfg.Paths.LibraryDir),
	}
	if cfg.History.Enabled {
		results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))
	}
	results = append(results, CheckDrive(ctx, cfg.Drive.Device))
	return results
}

// RunNetwork probes the MusicBrainz and Cover Art Archive endpoints.
func RunNetwork(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	results := []Result{
		CheckService(ctx, "MusicBrainz", cfg.MusicBrainz.BaseURL, cfg.UserAgent()),
	}
	if cfg.CoverArt.Enabled {
		results = append(results, CheckService(ctx, "Cover Art Archive", cfg.CoverArt.BaseURL, cfg.UserAgent()))
	}
	return results
}
