package preflight

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cdrip/internal/config"
	"cdrip/internal/disc"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_MissingButCreatable(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "a", "b"))
	if !result.Passed {
		t.Fatalf("expected pass for creatable dir, got: %s", result.Detail)
	}
	if !strings.Contains(result.Detail, "will be created") {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckDirectoryAccess("test", f); result.Passed {
		t.Fatal("expected failure for file path")
	}
	if result := CheckDirectoryAccess("test", filepath.Join(f, "child")); result.Passed {
		t.Fatal("expected failure below a file")
	}
}

func TestCheckDirectoryAccess_Empty(t *testing.T) {
	if result := CheckDirectoryAccess("test", "  "); result.Passed {
		t.Fatal("expected failure for empty path")
	}
}

func TestCheckDrive_Missing(t *testing.T) {
	result := CheckDrive(context.Background(), filepath.Join(t.TempDir(), "sr9"))
	if result.Passed {
		t.Fatal("expected failure for missing device")
	}
}

func TestCheckDrive_RegularFile(t *testing.T) {
	f := filepath.Join(t.TempDir(), "sr0")
	if err := os.WriteFile(f, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDrive(context.Background(), f)
	if result.Passed || !strings.Contains(result.Detail, "not a device node") {
		t.Fatalf("expected device node failure, got %+v", result)
	}
}

func TestCheckDrive_ReportsStatus(t *testing.T) {
	const device = "/dev/null"
	if _, err := os.Stat(device); err != nil {
		t.Skip("/dev/null unavailable")
	}
	orig := driveStatus
	t.Cleanup(func() { driveStatus = orig })

	driveStatus = func(string) (disc.DriveStatus, error) { return disc.DriveStatusNoDisc, nil }
	result := CheckDrive(context.Background(), device)
	if !result.Passed || !strings.Contains(result.Detail, "no_disc") {
		t.Fatalf("expected pass with no_disc status, got %+v", result)
	}

	driveStatus = func(string) (disc.DriveStatus, error) { return disc.DriveStatusNoInfo, disc.ErrUnsupportedPlatform }
	if result := CheckDrive(context.Background(), device); result.Passed {
		t.Fatalf("expected failure on unsupported platform, got %+v", result)
	}

	driveStatus = func(string) (disc.DriveStatus, error) { return disc.DriveStatusNoInfo, errors.New("ioctl failed") }
	if result := CheckDrive(context.Background(), device); !result.Passed {
		t.Fatalf("expected pass with unknown status, got %+v", result)
	}
}

func TestCheckService(t *testing.T) {
	var gotUA string
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ok.Close()
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer broken.Close()

	if result := CheckService(context.Background(), "MB", ok.URL, "cdrip/test"); !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if gotUA != "cdrip/test" {
		t.Fatalf("unexpected user agent %q", gotUA)
	}
	if result := CheckService(context.Background(), "MB", broken.URL, ""); result.Passed {
		t.Fatal("expected failure for 502")
	}
	if result := CheckService(context.Background(), "MB", "", ""); result.Passed {
		t.Fatal("expected failure for missing url")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_Config(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LibraryDir = t.TempDir()
	cfg.Paths.StateDir = t.TempDir()
	cfg.History.Enabled = true
	cfg.Drive.Device = filepath.Join(t.TempDir(), "missing")

	results := RunAll(context.Background(), &cfg)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	failed := Failed(results)
	if len(failed) != 1 || failed[0].Name != "Optical drive" {
		t.Fatalf("expected only the drive check to fail, got %+v", failed)
	}
}

func TestRunNetwork_SkipsDisabledCoverArt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.MusicBrainz.BaseURL = srv.URL
	cfg.CoverArt.Enabled = false

	results := RunNetwork(context.Background(), &cfg)
	if len(results) != 1 || results[0].Name != "MusicBrainz" || !results[0].Passed {
		t.Fatalf("unexpected results %+v", results)
	}
}
