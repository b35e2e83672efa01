// Package discid derives the MusicBrainz disc identifier from a table of
// contents.
//
// The identifier is a pure function of the TOC: first and last track numbers,
// the lead-out and 99 track offset slots are rendered as upper-case hex,
// hashed with SHA-1 and encoded with the URL-safe MusicBrainz variant of
// base64. It is only ever used as a lookup key.
package discid

import (
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"strings"

	"cdrip/internal/disc"
)

const (
	// MaxTracks is the number of offset slots in the canonical string.
	MaxTracks = 99
	// CanonicalLength is the length of every canonical string: 2+2+8+99*8.
	CanonicalLength = 2 + 2 + 8 + MaxTracks*8
	// Length is the length of every disc identifier.
	Length = 28
)

var encoding = strings.NewReplacer("+", ".", "/", "_", "=", "-")

// CanonicalString renders the TOC in the hex form that is hashed. Slots for
// track numbers absent from the TOC are "00000000". Track numbers outside
// 1..99 are ignored.
func CanonicalString(toc disc.TOC) string {
	var slots [MaxTracks + 1]uint32
	var present [MaxTracks + 1]bool
	for _, track := range toc.Tracks {
		if track.Number < 1 || track.Number > MaxTracks {
			continue
		}
		slots[track.Number] = track.StartLBA + disc.LeadInSectors
		present[track.Number] = true
	}

	var b strings.Builder
	b.Grow(CanonicalLength)
	fmt.Fprintf(&b, "%02X%02X%08X", toc.FirstTrack, toc.LastTrack, toc.LeadoutLBA+disc.LeadInSectors)
	for n := 1; n <= MaxTracks; n++ {
		if !present[n] {
			b.WriteString("00000000")
			continue
		}
		fmt.Fprintf(&b, "%08X", slots[n])
	}
	return b.String()
}

// Compute returns the 28-character disc identifier for the TOC.
func Compute(toc disc.TOC) string {
	sum := sha1.Sum([]byte(CanonicalString(toc)))
	return encoding.Replace(base64.StdEncoding.EncodeToString(sum[:]))
}
