package disc

import (
	"context"
	"fmt"
	"time"
)

// DriveStatus represents the result of a CDROM_DRIVE_STATUS ioctl call.
type DriveStatus int

const (
	DriveStatusNoInfo   DriveStatus = 0
	DriveStatusNoDisc   DriveStatus = 1
	DriveStatusTrayOpen DriveStatus = 2
	DriveStatusNotReady DriveStatus = 3
	DriveStatusDiscOK   DriveStatus = 4
)

// String returns a human-readable label for the drive status.
func (s DriveStatus) String() string {
	switch s {
	case DriveStatusNoInfo:
		return "no_info"
	case DriveStatusNoDisc:
		return "no_disc"
	case DriveStatusTrayOpen:
		return "tray_open"
	case DriveStatusNotReady:
		return "not_ready"
	case DriveStatusDiscOK:
		return "disc_ok"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

const readyPollInterval = time.Second

// checkStatus is swapped in tests.
var checkStatus = CheckDriveStatus

// WaitForReady polls the drive once per second until it reports
// DriveStatusDiscOK, the timeout elapses, or the context is cancelled.
func WaitForReady(ctx context.Context, devicePath string, timeout time.Duration) (DriveStatus, error) {
	return waitForReady(ctx, devicePath, timeout, readyPollInterval)
}

func waitForReady(ctx context.Context, devicePath string, timeout, interval time.Duration) (DriveStatus, error) {
	maxPolls := int(timeout / interval)
	if maxPolls < 1 {
		maxPolls = 1
	}

	var lastStatus DriveStatus
	for i := 0; i < maxPolls; i++ {
		status, err := checkStatus(devicePath)
		if err != nil {
			return status, err
		}
		lastStatus = status
		if status == DriveStatusDiscOK {
			return status, nil
		}

		select {
		case <-ctx.Done():
			return lastStatus, ctx.Err()
		case <-time.After(interval):
		}
	}

	return lastStatus, fmt.Errorf("drive %s not ready after %d polls (last status: %s)", devicePath, maxPolls, lastStatus)
}
