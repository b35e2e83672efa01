package workflow

import (
	"log/slog"

	"cdrip/internal/config"
	"cdrip/internal/coverart"
	"cdrip/internal/disc"
	"cdrip/internal/musicbrainz"
	"cdrip/internal/notifications"
	"cdrip/internal/services"
)

// NewRunnerFromConfig wires the MusicBrainz resolver, cover fetcher and
// notifier described by cfg around drive. Later opts override the
// configured values.
func NewRunnerFromConfig(cfg *config.Config, drive disc.Drive, logger *slog.Logger, opts ...Option) (*Runner, error) {
	client, err := musicbrainz.New(
		cfg.MusicBrainz.BaseURL,
		cfg.UserAgent(),
		musicbrainz.WithTimeout(cfg.MusicBrainzTimeout()),
		musicbrainz.WithLogger(logger),
	)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "workflow", "build musicbrainz client", "", err)
	}
	resolver := musicbrainz.NewResolver(client, cfg.CoverArt.BaseURL, logger)

	base := []Option{
		WithNotifier(notifications.NewService(cfg)),
		WithEject(cfg.Drive.EjectOnComplete),
	}
	if cfg.CoverArt.Enabled {
		fetcher := coverart.New(cfg.UserAgent(),
			coverart.WithTimeout(cfg.CoverArtTimeout()),
			coverart.WithMaxDimension(cfg.CoverArt.MaxDimension),
			coverart.WithLogger(logger),
		)
		base = append(base, WithCoverFetcher(fetcher, cfg.CoverArt.Embed))
	}
	return NewRunner(drive, resolver, cfg.Paths.LibraryDir, logger, append(base, opts...)...), nil
}
