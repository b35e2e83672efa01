package testsupport

import (
	"context"
	"fmt"

	"cdrip/internal/disc"
)

// FakeDrive is an in-memory disc.Drive.
type FakeDrive struct {
	TOC     disc.TOC
	TOCErr  error
	PCM     map[uint8][]byte
	ReadErr map[uint8]error

	Reads   []uint8
	Ejected bool
	Closed  bool
}

var _ disc.Drive = (*FakeDrive)(nil)

// NewFakeDrive builds a drive whose TOC lists the given tracks, each holding
// sectorsPerTrack sectors of tone.
func NewFakeDrive(tracks int, sectorsPerTrack int) *FakeDrive {
	drive := &FakeDrive{PCM: make(map[uint8][]byte), ReadErr: make(map[uint8]error)}
	drive.TOC = disc.TOC{FirstTrack: 1, LastTrack: uint8(tracks)}
	for n := 1; n <= tracks; n++ {
		drive.TOC.Tracks = append(drive.TOC.Tracks, disc.Track{
			Number:   uint8(n),
			StartLBA: uint32((n - 1) * sectorsPerTrack),
		})
		drive.PCM[uint8(n)] = SectorPCM(sectorsPerTrack)
	}
	drive.TOC.LeadoutLBA = uint32(tracks * sectorsPerTrack)
	return drive
}

func (d *FakeDrive) ReadTOC(ctx context.Context) (disc.TOC, error) {
	if err := ctx.Err(); err != nil {
		return disc.TOC{}, err
	}
	return d.TOC, d.TOCErr
}

func (d *FakeDrive) ReadTrack(ctx context.Context, _ disc.TOC, number uint8) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.Reads = append(d.Reads, number)
	if err := d.ReadErr[number]; err != nil {
		return nil, err
	}
	pcm, ok := d.PCM[number]
	if !ok {
		return nil, fmt.Errorf("track %d not on disc", number)
	}
	return pcm, nil
}

func (d *FakeDrive) Eject(context.Context) error {
	d.Ejected = true
	return nil
}

func (d *FakeDrive) Close() error {
	d.Closed = true
	return nil
}
