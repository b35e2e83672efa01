// Package album holds the resolved metadata for one disc.
package album

import (
	"fmt"
	"time"
)

// Defaults applied when the metadata service omits a field.
const (
	UnknownCountry = "unknown"
	UnknownDate    = "Unknown date"
	UnknownArtist  = "Unknown artist"
	UnknownTrack   = "unknown track"
)

// Field names an optional metadata field.
type Field string

const (
	FieldArtist     Field = "artist"
	FieldDate       Field = "date"
	FieldCountry    Field = "country"
	FieldTrackTitle Field = "track_title"
)

// Defaults maps every optional field to the value used when the service
// omits it or sends it empty.
var Defaults = map[Field]string{
	FieldArtist:     UnknownArtist,
	FieldDate:       UnknownDate,
	FieldCountry:    UnknownCountry,
	FieldTrackTitle: UnknownTrack,
}

// ValueOr returns value, or the default for field when value is nil or empty.
func ValueOr(field Field, value *string) string {
	if value == nil || *value == "" {
		return Defaults[field]
	}
	return *value
}

// Track is one resolved track. Number comes from the metadata service and may
// exceed what a physical disc can hold.
type Track struct {
	Number uint32
	Title  string
	// Length is zero when the service does not report it.
	Length time.Duration
}

// Album is passed by value; callers never share mutable state through it.
type Album struct {
	ReleaseID   string
	Title       string
	Artist      string
	Date        string
	Country     string
	Tracks      []Track
	CoverArtURL string
}

// HasCoverArt reports whether a front cover is advertised.
func (a Album) HasCoverArt() bool {
	return a.CoverArtURL != ""
}

// Clone returns a copy whose track slice is not shared with a.
func (a Album) Clone() Album {
	out := a
	out.Tracks = append([]Track(nil), a.Tracks...)
	return out
}

// CoverArtURL builds the Cover Art Archive front image URL for a release.
func CoverArtURL(baseURL, releaseID string) string {
	return fmt.Sprintf("%s/release/%s/front", baseURL, releaseID)
}
