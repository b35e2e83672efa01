package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"cdrip/internal/album"
	"cdrip/internal/ripping"
)

type albumView struct {
	DiscID    string      `json:"disc_id"`
	ReleaseID string      `json:"release_id,omitempty"`
	Title     string      `json:"title"`
	Artist    string      `json:"artist"`
	Date      string      `json:"date"`
	Country   string      `json:"country"`
	CoverArt  string      `json:"cover_art_url,omitempty"`
	Tracks    []trackView `json:"tracks"`
}

type trackView struct {
	Number uint32 `json:"number"`
	Title  string `json:"title"`
	Length string `json:"length,omitempty"`
}

func newAlbumView(discID string, al album.Album) albumView {
	view := albumView{
		DiscID:    discID,
		ReleaseID: al.ReleaseID,
		Title:     al.Title,
		Artist:    al.Artist,
		Date:      al.Date,
		Country:   al.Country,
		CoverArt:  al.CoverArtURL,
		Tracks:    make([]trackView, 0, len(al.Tracks)),
	}
	for _, track := range al.Tracks {
		tv := trackView{Number: track.Number, Title: track.Title}
		if track.Length > 0 {
			tv.Length = formatDuration(track.Length)
		}
		view.Tracks = append(view.Tracks, tv)
	}
	return view
}

// printAlbum writes the album header and track list shown before a rip.
func printAlbum(w io.Writer, discID string, al album.Album) {
	fmt.Fprintf(w, "Disc ID:  %s\n", discID)
	fmt.Fprintf(w, "Album:    %s\n", al.Title)
	fmt.Fprintf(w, "Artist:   %s\n", al.Artist)
	fmt.Fprintf(w, "Date:     %s\n", al.Date)
	fmt.Fprintf(w, "Country:  %s\n", al.Country)
	fmt.Fprintf(w, "Tracks:   %d\n", len(al.Tracks))
	if len(al.Tracks) == 0 {
		return
	}
	rows := make([][]string, 0, len(al.Tracks))
	for _, track := range al.Tracks {
		length := "-"
		if track.Length > 0 {
			length = formatDuration(track.Length)
		}
		rows = append(rows, []string{strconv.FormatUint(uint64(track.Number), 10), track.Title, length})
	}
	fmt.Fprintln(w, renderTable([]string{"#", "Title", "Length"}, rows, []columnAlignment{alignRight, alignLeft, alignRight}))
}

// printReport writes the per-track outcome table after a rip.
func printReport(w io.Writer, report ripping.Report) {
	if len(report.Tracks) == 0 {
		return
	}
	rows := make([][]string, 0, len(report.Tracks))
	for _, track := range report.Tracks {
		detail := track.Detail
		if track.Outcome == ripping.OutcomeWritten {
			detail = track.Path
		}
		rows = append(rows, []string{
			strconv.FormatUint(uint64(track.Number), 10),
			track.Title,
			outcomeLabel(track.Outcome),
			detail,
		})
	}
	fmt.Fprintln(w, renderTable([]string{"#", "Title", "Result", "Detail"}, rows, []columnAlignment{alignRight}))
}

func outcomeLabel(outcome ripping.Outcome) string {
	return strings.ReplaceAll(string(outcome), "_", " ")
}

func summarizeReport(report ripping.Report) string {
	written := report.Count(ripping.OutcomeWritten)
	skipped := report.Count(ripping.OutcomeSkippedExists) + report.Count(ripping.OutcomeSkippedRange)
	failed := len(report.Tracks) - written - skipped
	return fmt.Sprintf("%d written, %d skipped, %d failed", written, skipped, failed)
}
