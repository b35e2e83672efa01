package disc

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// LeadInSectors is the two-second lead-in (150 frames) preceding LBA 0.
const LeadInSectors = 150

// Track is one TOC entry.
type Track struct {
	Number   uint8
	StartLBA uint32
}

// TOC is a disc's table of contents. Track numbers are unique within 1..99.
type TOC struct {
	FirstTrack uint8
	LastTrack  uint8
	LeadoutLBA uint32
	Tracks     []Track
}

// Track returns the entry for the given track number.
func (t TOC) Track(number uint8) (Track, bool) {
	for _, track := range t.Tracks {
		if track.Number == number {
			return track, true
		}
	}
	return Track{}, false
}

// TrackSectors returns the start LBA and length in sectors of a track. A track
// ends where the next higher-numbered track starts, or at the lead-out.
func (t TOC) TrackSectors(number uint8) (uint32, uint32, error) {
	track, ok := t.Track(number)
	if !ok {
		return 0, 0, fmt.Errorf("track %d not in table of contents", number)
	}
	end := t.LeadoutLBA
	for _, other := range t.Tracks {
		if other.Number > number && other.StartLBA > track.StartLBA && other.StartLBA < end {
			end = other.StartLBA
		}
	}
	if end <= track.StartLBA {
		return 0, 0, fmt.Errorf("track %d has no audio before lead-out", number)
	}
	return track.StartLBA, end - track.StartLBA, nil
}

// String renders the TOC in the MusicBrainz "toc" form: first, last, lead-out
// and each track offset, all including the lead-in.
func (t TOC) String() string {
	parts := make([]string, 0, 3+len(t.Tracks))
	parts = append(parts,
		strconv.Itoa(int(t.FirstTrack)),
		strconv.Itoa(int(t.LastTrack)),
		strconv.FormatUint(uint64(t.LeadoutLBA)+LeadInSectors, 10),
	)
	for _, track := range t.Tracks {
		parts = append(parts, strconv.FormatUint(uint64(track.StartLBA)+LeadInSectors, 10))
	}
	return strings.Join(parts, " ")
}

// ParseTOC parses the MusicBrainz "toc" form produced by String. Offsets are
// assigned to track numbers first..last in order.
func ParseTOC(value string) (TOC, error) {
	fields := strings.Fields(strings.ReplaceAll(value, "+", " "))
	if len(fields) < 3 {
		return TOC{}, errors.New("toc needs at least first track, last track and lead-out")
	}
	nums := make([]uint64, len(fields))
	for i, field := range fields {
		n, err := strconv.ParseUint(field, 10, 32)
		if err != nil {
			return TOC{}, fmt.Errorf("toc field %d: %w", i+1, err)
		}
		nums[i] = n
	}
	first, last := nums[0], nums[1]
	if first < 1 || last > 99 || first > last {
		return TOC{}, fmt.Errorf("toc track range %d..%d outside 1..99", first, last)
	}
	offsets := nums[3:]
	if uint64(len(offsets)) != last-first+1 {
		return TOC{}, fmt.Errorf("toc lists %d offsets for tracks %d..%d", len(offsets), first, last)
	}
	if nums[2] < LeadInSectors {
		return TOC{}, fmt.Errorf("toc lead-out %d precedes the lead-in", nums[2])
	}
	toc := TOC{
		FirstTrack: uint8(first),
		LastTrack:  uint8(last),
		LeadoutLBA: uint32(nums[2] - LeadInSectors),
		Tracks:     make([]Track, 0, len(offsets)),
	}
	for i, offset := range offsets {
		if offset < LeadInSectors {
			return TOC{}, fmt.Errorf("toc offset %d precedes the lead-in", offset)
		}
		toc.Tracks = append(toc.Tracks, Track{
			Number:   uint8(first) + uint8(i),
			StartLBA: uint32(offset - LeadInSectors),
		})
	}
	return toc, nil
}
