package main

import (
	"encoding/json"
	"strings"
	"testing"

	"cdrip/internal/discid"
	"cdrip/internal/testsupport"
)

func TestDiscIDFromTOCFlag(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"discid", "--toc", threeTrackTOC}, env.configPath)
	if err != nil {
		t.Fatalf("discid: %v", err)
	}
	requireContains(t, out, "Disc ID:  "+threeTrackDiscID)
	requireContains(t, out, "Tracks:   1-3")
}

func TestDiscIDJSONFromDrive(t *testing.T) {
	env := setupCLITestEnv(t)
	drive := testsupport.NewFakeDrive(2, 100)
	opened := useFakeDrive(t, drive)

	out, _, err := runCLI(t, []string{"discid", "--json", "--device", "/dev/sr1"}, env.configPath)
	if err != nil {
		t.Fatalf("discid: %v", err)
	}
	var view discIDView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if view.DiscID != discid.Compute(drive.TOC) {
		t.Fatalf("disc id = %q, want %q", view.DiscID, discid.Compute(drive.TOC))
	}
	if view.TOC != drive.TOC.String() {
		t.Fatalf("toc = %q, want %q", view.TOC, drive.TOC.String())
	}
	if len(*opened) != 1 || (*opened)[0] != "/dev/sr1" {
		t.Fatalf("opened devices = %v", *opened)
	}
	if !drive.Closed {
		t.Fatal("drive was not closed")
	}
}

func TestDiscIDRejectsBadTOC(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"discid", "--toc", "1 2 100"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "parse --toc") {
		t.Fatalf("expected parse error, got %v", err)
	}
}
