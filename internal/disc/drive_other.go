//go:build !linux

package disc

import "context"

// Device is unavailable on this platform.
type Device struct{}

var _ Drive = (*Device)(nil)

// OpenDevice always fails with ErrUnsupportedPlatform.
func OpenDevice(string) (*Device, error) {
	return nil, ErrUnsupportedPlatform
}

func (*Device) Path() string { return "" }

func (*Device) ReadTOC(context.Context) (TOC, error) { return TOC{}, ErrUnsupportedPlatform }

func (*Device) ReadTrack(context.Context, TOC, uint8) ([]byte, error) {
	return nil, ErrUnsupportedPlatform
}

func (*Device) Eject(context.Context) error { return ErrUnsupportedPlatform }

func (*Device) Close() error { return nil }

// CheckDriveStatus always fails with ErrUnsupportedPlatform.
func CheckDriveStatus(string) (DriveStatus, error) {
	return DriveStatusNoInfo, ErrUnsupportedPlatform
}
