package musicbrainz_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"cdrip/internal/album"
	"cdrip/internal/musicbrainz"
	"cdrip/internal/services"
)

func decode(t *testing.T, body string) *musicbrainz.Response {
	t.Helper()
	var resp musicbrainz.Response
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	return &resp
}

const fullRelease = `{"releases":[{
	"id":"76df3287-6cda-33eb-8e9a-044b5e15ffdd",
	"title":"Dark Side",
	"date":"1973-03-01",
	"country":"GB",
	"cover-art-archive":{"front":true,"artwork":true,"count":2},
	"artist-credit":[{"name":"Pink Floyd","artist":{"id":"a1","name":"Pink Floyd","sort-name":"Pink Floyd"}},{"name":"Guest"}],
	"media":[
		{"format":"Vinyl","tracks":[{"number":"A1","title":"Speak to Me"}]},
		{"format":"CD","tracks":[
			{"number":"1","title":"Speak to Me","length":68000},
			{"number":"2"},
			{"number":"B2","title":"Bad"},
			{"title":"No number"},
			{"number":"-3","title":"Negative"},
			{"number":"300","title":"Out of range but kept"}
		]}
	]
}]}`

func TestToAlbumAppliesSelectionAndDefaults(t *testing.T) {
	got, err := musicbrainz.ToAlbum(decode(t, fullRelease), "https://coverartarchive.org")
	if err != nil {
		t.Fatalf("ToAlbum returned error: %v", err)
	}
	if got.Title != "Dark Side" || got.Artist != "Pink Floyd" || got.Date != "1973-03-01" || got.Country != "GB" {
		t.Fatalf("unexpected album fields: %+v", got)
	}
	if got.CoverArtURL != "https://coverartarchive.org/release/76df3287-6cda-33eb-8e9a-044b5e15ffdd/front" {
		t.Fatalf("unexpected cover url %q", got.CoverArtURL)
	}
	want := []album.Track{
		{Number: 1, Title: "Speak to Me", Length: 68 * time.Second},
		{Number: 2, Title: album.UnknownTrack},
		{Number: 300, Title: "Out of range but kept"},
	}
	if len(got.Tracks) != len(want) {
		t.Fatalf("expected %d tracks, got %+v", len(want), got.Tracks)
	}
	for i := range want {
		if got.Tracks[i] != want[i] {
			t.Fatalf("track %d = %+v, want %+v", i, got.Tracks[i], want[i])
		}
	}
}

func TestToAlbumDefaults(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantArtist string
	}{
		{
			name:       "no credits",
			body:       `{"releases":[{"id":"r","title":"T","media":[{"format":"CD","tracks":[]}]}]}`,
			wantArtist: album.UnknownArtist,
		},
		{
			name:       "empty credits",
			body:       `{"releases":[{"id":"r","title":"T","artist-credit":[],"media":[{"format":"CD","tracks":[]}]}]}`,
			wantArtist: album.UnknownArtist,
		},
		{
			name:       "first credit without name",
			body:       `{"releases":[{"id":"r","title":"T","artist-credit":[{"artist":{"id":"x","name":"Hidden"}},{"name":"Second"}],"media":[{"format":"CD","tracks":[]}]}]}`,
			wantArtist: album.UnknownArtist,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := musicbrainz.ToAlbum(decode(t, tt.body), "https://coverartarchive.org")
			if err != nil {
				t.Fatalf("ToAlbum returned error: %v", err)
			}
			if got.Artist != tt.wantArtist {
				t.Fatalf("artist = %q, want %q", got.Artist, tt.wantArtist)
			}
			if got.Country != "unknown" || got.Date != "Unknown date" {
				t.Fatalf("unexpected defaults: country=%q date=%q", got.Country, got.Date)
			}
			if got.CoverArtURL != "" {
				t.Fatalf("expected no cover url, got %q", got.CoverArtURL)
			}
			if len(got.Tracks) != 0 {
				t.Fatalf("expected empty track list, got %+v", got.Tracks)
			}
		})
	}
}

func TestToAlbumEmptyFieldsUseDefaults(t *testing.T) {
	body := `{"releases":[{"id":"r","title":"T","date":"","country":"","artist-credit":[{"name":""}],
	  "media":[{"format":"CD","tracks":[{"number":"1","title":""}]}]}]}`
	got, err := musicbrainz.ToAlbum(decode(t, body), "https://coverartarchive.org")
	if err != nil {
		t.Fatalf("ToAlbum returned error: %v", err)
	}
	if got.Artist != album.UnknownArtist || got.Date != album.UnknownDate || got.Country != album.UnknownCountry {
		t.Fatalf("unexpected defaults: %+v", got)
	}
	if len(got.Tracks) != 1 || got.Tracks[0].Title != album.UnknownTrack {
		t.Fatalf("unexpected tracks %+v", got.Tracks)
	}
}

func TestToAlbumCoverRequiresFrontFlag(t *testing.T) {
	body := `{"releases":[{"id":"r","title":"T","cover-art-archive":{"front":false,"back":true},"media":[{"format":"CD","tracks":[]}]}]}`
	got, err := musicbrainz.ToAlbum(decode(t, body), "https://coverartarchive.org")
	if err != nil {
		t.Fatalf("ToAlbum returned error: %v", err)
	}
	if got.HasCoverArt() {
		t.Fatalf("expected no cover url, got %q", got.CoverArtURL)
	}
}

func TestToAlbumNoMatch(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{"no releases key", `{}`, musicbrainz.ErrNoRelease},
		{"empty releases", `{"releases":[]}`, musicbrainz.ErrNoRelease},
		{"no media", `{"releases":[{"id":"r","title":"T"}]}`, musicbrainz.ErrNoCDMedium},
		{"format case differs", `{"releases":[{"id":"r","title":"T","media":[{"format":"cd","tracks":[]}]}]}`, musicbrainz.ErrNoCDMedium},
		{"format missing", `{"releases":[{"id":"r","title":"T","media":[{"tracks":[]}]}]}`, musicbrainz.ErrNoCDMedium},
		{"cd without tracks", `{"releases":[{"id":"r","title":"T","media":[{"format":"CD"}]}]}`, musicbrainz.ErrNoTrackList},
		{
			"only first release considered",
			`{"releases":[{"id":"r1","title":"A","media":[{"format":"Vinyl","tracks":[]}]},{"id":"r2","title":"B","media":[{"format":"CD","tracks":[]}]}]}`,
			musicbrainz.ErrNoCDMedium,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := musicbrainz.ToAlbum(decode(t, tt.body), "https://coverartarchive.org")
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

type stubLookuper struct {
	resp  *musicbrainz.Response
	err   error
	calls int
}

func (s *stubLookuper) LookupDiscID(context.Context, string) (*musicbrainz.Response, error) {
	s.calls++
	return s.resp, s.err
}

func TestResolverResolve(t *testing.T) {
	stub := &stubLookuper{resp: decode(t, fullRelease)}
	resolver := musicbrainz.NewResolver(stub, "", nil)

	got, ok := resolver.Resolve(context.Background(), "disc")
	if !ok {
		t.Fatal("expected album")
	}
	if got.Title != "Dark Side" || len(got.Tracks) != 3 {
		t.Fatalf("unexpected album %+v", got)
	}
	if got.CoverArtURL != "https://coverartarchive.org/release/76df3287-6cda-33eb-8e9a-044b5e15ffdd/front" {
		t.Fatalf("expected default cover base url, got %q", got.CoverArtURL)
	}
	if stub.calls != 1 {
		t.Fatalf("expected exactly one lookup, got %d", stub.calls)
	}
}

func TestResolverCollapsesFailures(t *testing.T) {
	tests := []struct {
		name     string
		stub     *stubLookuper
		wantKind string
	}{
		{"not found", &stubLookuper{err: services.Wrap(services.ErrNotFound, "lookup", "", "", nil)}, "not_found"},
		{"rate limited", &stubLookuper{err: services.Wrap(services.ErrRateLimited, "lookup", "", "", nil)}, "rate_limited"},
		{"transport", &stubLookuper{err: services.Wrap(services.ErrTransport, "lookup", "", "", nil)}, "transport"},
		{"malformed", &stubLookuper{err: services.Wrap(services.ErrMalformedResponse, "lookup", "", "", nil)}, "malformed_response"},
		{"no release", &stubLookuper{resp: &musicbrainz.Response{}}, "not_found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := musicbrainz.NewResolver(tt.stub, "", nil)
			if _, ok := resolver.Resolve(context.Background(), "disc"); ok {
				t.Fatal("expected no album")
			}
			_, err := resolver.ResolveDetailed(context.Background(), "disc")
			if got := services.Kind(err); got != tt.wantKind {
				t.Fatalf("Kind() = %q, want %q (err %v)", got, tt.wantKind, err)
			}
			if tt.stub.calls != 2 {
				t.Fatalf("expected one lookup per call, got %d", tt.stub.calls)
			}
		})
	}
}
