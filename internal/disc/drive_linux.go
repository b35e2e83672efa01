//go:build linux

package disc

import (
	"context"
	"fmt"
	"strings"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Linux CD-ROM ioctl requests from <linux/cdrom.h>.
const (
	ioctlCDROMReadTOCHeader = 0x5305
	ioctlCDROMReadTOCEntry  = 0x5306
	ioctlCDROMEject         = 0x5309
	ioctlCDROMReadAudio     = 0x530e
	ioctlCDROMDriveStatus   = 0x5326

	cdromLBA     = 0x01
	cdromLeadout = 0xAA

	// framesPerRead bounds a single CDROMREADAUDIO transfer.
	framesPerRead = 25
)

type cdromTOCHeader struct {
	firstTrack uint8
	lastTrack  uint8
}

type cdromTOCEntry struct {
	track    uint8
	adrCtrl  uint8
	format   uint8
	_        uint8
	addr     int32
	datamode uint8
	_        [3]uint8
}

type cdromReadAudio struct {
	addr       int32
	addrFormat uint8
	_          [3]uint8
	nframes    int32
	buf        *byte
}

// Device is a Linux optical drive opened for audio extraction.
type Device struct {
	path string
	fd   int
}

var _ Drive = (*Device)(nil)

// OpenDevice opens the block device for TOC and audio reads.
func OpenDevice(devicePath string) (*Device, error) {
	devicePath = strings.TrimSpace(devicePath)
	if devicePath == "" {
		return nil, fmt.Errorf("empty device path")
	}
	fd, err := unix.Open(devicePath, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", devicePath, err)
	}
	return &Device{path: devicePath, fd: fd}, nil
}

// Path returns the device node this drive was opened from.
func (d *Device) Path() string {
	return d.path
}

// ReadTOC reads the header, every track entry and the lead-out.
func (d *Device) ReadTOC(ctx context.Context) (TOC, error) {
	if err := ctx.Err(); err != nil {
		return TOC{}, err
	}
	var header cdromTOCHeader
	if err := d.ioctl(ioctlCDROMReadTOCHeader, unsafe.Pointer(&header)); err != nil {
		return TOC{}, fmt.Errorf("ioctl CDROMREADTOCHDR on %s: %w", d.path, err)
	}
	if header.firstTrack == 0 || header.lastTrack < header.firstTrack {
		return TOC{}, fmt.Errorf("drive %s reported invalid track range %d..%d", d.path, header.firstTrack, header.lastTrack)
	}

	toc := TOC{
		FirstTrack: header.firstTrack,
		LastTrack:  header.lastTrack,
		Tracks:     make([]Track, 0, int(header.lastTrack-header.firstTrack)+1),
	}
	for n := int(header.firstTrack); n <= int(header.lastTrack); n++ {
		addr, err := d.readTOCEntry(uint8(n))
		if err != nil {
			return TOC{}, err
		}
		toc.Tracks = append(toc.Tracks, Track{Number: uint8(n), StartLBA: addr})
	}
	leadout, err := d.readTOCEntry(cdromLeadout)
	if err != nil {
		return TOC{}, err
	}
	toc.LeadoutLBA = leadout
	return toc, nil
}

func (d *Device) readTOCEntry(track uint8) (uint32, error) {
	entry := cdromTOCEntry{track: track, format: cdromLBA}
	if err := d.ioctl(ioctlCDROMReadTOCEntry, unsafe.Pointer(&entry)); err != nil {
		return 0, fmt.Errorf("ioctl CDROMREADTOCENTRY track %d on %s: %w", track, d.path, err)
	}
	if entry.addr < 0 {
		return 0, fmt.Errorf("drive %s reported negative address for track %d", d.path, track)
	}
	return uint32(entry.addr), nil
}

// ReadTrack extracts a track's CD-DA samples, checking ctx between transfers.
func (d *Device) ReadTrack(ctx context.Context, toc TOC, number uint8) ([]byte, error) {
	start, sectors, err := toc.TrackSectors(number)
	if err != nil {
		return nil, err
	}

	pcm := make([]byte, int(sectors)*SectorSize)
	for done := uint32(0); done < sectors; {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		frames := min(sectors-done, framesPerRead)
		offset := int(done) * SectorSize
		req := cdromReadAudio{
			addr:       int32(start + done),
			addrFormat: cdromLBA,
			nframes:    int32(frames),
			buf:        &pcm[offset],
		}
		if err := d.ioctl(ioctlCDROMReadAudio, unsafe.Pointer(&req)); err != nil {
			return nil, fmt.Errorf("ioctl CDROMREADAUDIO track %d lba %d on %s: %w", number, start+done, d.path, err)
		}
		done += frames
	}
	return pcm, nil
}

// Eject opens the tray.
func (d *Device) Eject(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := d.ioctl(ioctlCDROMEject, nil); err != nil {
		return fmt.Errorf("eject %s: %w", d.path, err)
	}
	return nil
}

// Close releases the device file descriptor.
func (d *Device) Close() error {
	if d == nil || d.fd < 0 {
		return nil
	}
	err := unix.Close(d.fd)
	d.fd = -1
	return err
}

func (d *Device) ioctl(req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(d.fd), req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

// CheckDriveStatus queries the drive state using the CDROM_DRIVE_STATUS ioctl.
// Returns an error if the device cannot be opened or the ioctl fails.
func CheckDriveStatus(devicePath string) (DriveStatus, error) {
	devicePath = strings.TrimSpace(devicePath)
	if devicePath == "" {
		return DriveStatusNoInfo, fmt.Errorf("empty device path")
	}

	fd, err := unix.Open(devicePath, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return DriveStatusNoInfo, fmt.Errorf("open %s: %w", devicePath, err)
	}
	defer unix.Close(fd) //nolint:errcheck

	r1, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), ioctlCDROMDriveStatus, 0)
	if errno != 0 {
		return DriveStatusNoInfo, fmt.Errorf("ioctl CDROM_DRIVE_STATUS on %s: %w", devicePath, errno)
	}

	return DriveStatus(r1), nil
}
