package discid_test

import (
	"strings"
	"testing"

	"cdrip/internal/disc"
	"cdrip/internal/discid"
)

func threeTrackTOC() disc.TOC {
	return disc.TOC{
		FirstTrack: 1,
		LastTrack:  3,
		LeadoutLBA: 150000,
		Tracks: []disc.Track{
			{Number: 1, StartLBA: 0},
			{Number: 2, StartLBA: 20000},
			{Number: 3, StartLBA: 40000},
		},
	}
}

func TestComputeKnownValues(t *testing.T) {
	fullTOC := disc.TOC{FirstTrack: 1, LastTrack: 99, LeadoutLBA: 999999}
	for n := 1; n <= 99; n++ {
		fullTOC.Tracks = append(fullTOC.Tracks, disc.Track{Number: uint8(n), StartLBA: uint32(n-1) * 1000})
	}

	tests := []struct {
		name string
		toc  disc.TOC
		want string
	}{
		{name: "three tracks", toc: threeTrackTOC(), want: "J6SjQeHWRQyim__PFXFhxpRTsf0-"},
		{
			name: "single track",
			toc:  disc.TOC{FirstTrack: 1, LastTrack: 1, LeadoutLBA: 1000, Tracks: []disc.Track{{Number: 1, StartLBA: 0}}},
			want: "biZhgpK_ygDy_T9X4FDZNhQWNSA-",
		},
		{name: "ninety nine tracks", toc: fullTOC, want: "69yaagvhtIH_4hCrQ1mIbVSclrE-"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := discid.Compute(tt.toc); got != tt.want {
				t.Fatalf("Compute() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCanonicalStringLayout(t *testing.T) {
	if discid.CanonicalLength != 804 {
		t.Fatalf("CanonicalLength = %d, want 804", discid.CanonicalLength)
	}
	got := discid.CanonicalString(threeTrackTOC())
	if len(got) != discid.CanonicalLength {
		t.Fatalf("canonical length = %d, want 804", len(got))
	}
	if !strings.HasPrefix(got, "010300024A860000009600004EB600009CD6") {
		t.Fatalf("unexpected canonical prefix %q", got[:40])
	}
	if strings.Count(got[12+3*8:], "0") != len(got)-(12+3*8) {
		t.Fatal("expected zero padding for absent track slots")
	}
}

func TestComputeShapeAcrossTOCs(t *testing.T) {
	tocs := []disc.TOC{
		{},
		threeTrackTOC(),
		{FirstTrack: 5, LastTrack: 7, LeadoutLBA: 1, Tracks: []disc.Track{{Number: 7, StartLBA: 12345678}}},
		{FirstTrack: 1, LastTrack: 1, LeadoutLBA: 4294967145, Tracks: []disc.Track{{Number: 1, StartLBA: 4294967000}}},
	}
	for _, toc := range tocs {
		if got := discid.CanonicalString(toc); len(got) != 804 {
			t.Fatalf("canonical length %d for %+v", len(got), toc)
		}
		id := discid.Compute(toc)
		if len(id) != discid.Length {
			t.Fatalf("id %q has length %d", id, len(id))
		}
		if !strings.HasSuffix(id, "-") {
			t.Fatalf("id %q should end with the substituted padding", id)
		}
		if strings.ContainsAny(id, "+/=") {
			t.Fatalf("id %q contains characters outside the URL-safe alphabet", id)
		}
		if id != discid.Compute(toc) {
			t.Fatalf("Compute is not deterministic for %+v", toc)
		}
	}
}

func TestComputeIgnoresTrackOrder(t *testing.T) {
	toc := threeTrackTOC()
	reversed := toc
	reversed.Tracks = []disc.Track{toc.Tracks[2], toc.Tracks[1], toc.Tracks[0]}
	if discid.Compute(toc) != discid.Compute(reversed) {
		t.Fatal("expected identical ids regardless of track slice order")
	}
}

func TestComputeChangesWithOffsets(t *testing.T) {
	moved := threeTrackTOC()
	moved.Tracks[1].StartLBA++
	if discid.Compute(moved) == discid.Compute(threeTrackTOC()) {
		t.Fatal("expected different id after moving a track offset")
	}
}
