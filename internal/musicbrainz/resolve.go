package musicbrainz

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"cdrip/internal/album"
	"cdrip/internal/logging"
	"cdrip/internal/services"
)

// Reasons a successful response still yields no album.
var (
	ErrNoRelease   = errors.New("no release for disc id")
	ErrNoCDMedium  = errors.New("first release has no CD medium")
	ErrNoTrackList = errors.New("CD medium has no track list")
)

// DefaultCoverArtBaseURL is the Cover Art Archive root.
const DefaultCoverArtBaseURL = "https://coverartarchive.org"

// Resolver turns a disc identifier into an album.
type Resolver struct {
	client       Lookuper
	coverBaseURL string
	logger       *slog.Logger
}

// NewResolver builds a resolver. An empty coverBaseURL selects the public
// Cover Art Archive.
func NewResolver(client Lookuper, coverBaseURL string, logger *slog.Logger) *Resolver {
	coverBaseURL = strings.TrimRight(strings.TrimSpace(coverBaseURL), "/")
	if coverBaseURL == "" {
		coverBaseURL = DefaultCoverArtBaseURL
	}
	return &Resolver{
		client:       client,
		coverBaseURL: coverBaseURL,
		logger:       logging.NewComponentLogger(logger, "metadata"),
	}
}

// Resolve returns the album for discID, or false when none could be resolved
// for any reason. ResolveDetailed reports which.
func (r *Resolver) Resolve(ctx context.Context, discID string) (album.Album, bool) {
	resolved, err := r.ResolveDetailed(ctx, discID)
	if err != nil {
		return album.Album{}, false
	}
	return resolved, true
}

// ResolveDetailed is Resolve with the failure reason. Lookup failures carry
// the client's services marker; selection failures wrap ErrNoRelease,
// ErrNoCDMedium or ErrNoTrackList under services.ErrNotFound.
func (r *Resolver) ResolveDetailed(ctx context.Context, discID string) (album.Album, error) {
	logger := logging.WithContext(ctx, r.logger).With(logging.String("disc_id", discID))

	resp, err := r.client.LookupDiscID(ctx, discID)
	if err != nil {
		logging.WarnWithContext(logger, "metadata lookup failed", "metadata_lookup_failed",
			logging.String("failure_kind", services.Kind(err)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check network access and that the disc exists on musicbrainz.org"),
			logging.String(logging.FieldImpact, "disc cannot be ripped without metadata"),
		)
		return album.Album{}, err
	}

	resolved, dropped, err := toAlbum(resp, r.coverBaseURL)
	if err != nil {
		logging.WarnWithContext(logger, "no usable release for disc", "metadata_no_match",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "submit the disc to MusicBrainz or check that it is an audio CD"),
			logging.String(logging.FieldImpact, "disc cannot be ripped without metadata"),
		)
		return album.Album{}, services.Wrap(services.ErrNotFound, stageLookup, "select release", "", err)
	}

	if dropped > 0 {
		logger.Debug("dropped tracks without a numeric track number", logging.Int("dropped", dropped))
	}
	logger.Info("metadata resolved",
		logging.String("release_id", resolved.ReleaseID),
		logging.String("album", resolved.Title),
		logging.String("artist", resolved.Artist),
		logging.Int("track_count", len(resolved.Tracks)),
		logging.Bool("cover_art", resolved.HasCoverArt()),
	)
	return resolved, nil
}

// ToAlbum applies first-match selection and the field defaults to a lookup
// response.
func ToAlbum(resp *Response, coverBaseURL string) (album.Album, error) {
	resolved, _, err := toAlbum(resp, coverBaseURL)
	return resolved, err
}

func toAlbum(resp *Response, coverBaseURL string) (album.Album, int, error) {
	if resp == nil || len(resp.Releases) == 0 {
		return album.Album{}, 0, ErrNoRelease
	}
	release := resp.Releases[0]

	medium, ok := firstCDMedium(release.Media)
	if !ok {
		return album.Album{}, 0, ErrNoCDMedium
	}
	if medium.Tracks == nil {
		return album.Album{}, 0, ErrNoTrackList
	}

	resolved := album.Album{
		ReleaseID: release.ID,
		Title:     release.Title,
		Artist:    album.ValueOr(album.FieldArtist, firstArtist(release.ArtistCredit)),
		Date:      album.ValueOr(album.FieldDate, release.Date),
		Country:   album.ValueOr(album.FieldCountry, release.Country),
		Tracks:    make([]album.Track, 0, len(medium.Tracks)),
	}
	if release.CoverArtArchive != nil && release.CoverArtArchive.Front && release.ID != "" {
		resolved.CoverArtURL = album.CoverArtURL(strings.TrimRight(coverBaseURL, "/"), release.ID)
	}
	dropped := 0
	for _, track := range medium.Tracks {
		converted, ok := convertTrack(track)
		if !ok {
			dropped++
			continue
		}
		resolved.Tracks = append(resolved.Tracks, converted)
	}
	return resolved, dropped, nil
}

func firstCDMedium(media []Medium) (Medium, bool) {
	for _, medium := range media {
		if medium.Format != nil && *medium.Format == "CD" {
			return medium, true
		}
	}
	return Medium{}, false
}

func firstArtist(credits []ArtistCredit) *string {
	if len(credits) == 0 {
		return nil
	}
	return &credits[0].Name
}

func convertTrack(track Track) (album.Track, bool) {
	if track.Number == nil {
		return album.Track{}, false
	}
	number, err := strconv.ParseUint(*track.Number, 10, 32)
	if err != nil {
		return album.Track{}, false
	}
	converted := album.Track{
		Number: uint32(number),
		Title:  album.ValueOr(album.FieldTrackTitle, track.Title),
	}
	if track.Length != nil && *track.Length > 0 {
		converted.Length = time.Duration(*track.Length) * time.Millisecond
	}
	return converted, true
}
