// Package disc models an audio CD's table of contents and talks to the
// physical optical drive.
//
// The Drive interface is the collaborator the ripping workflow depends on:
// ReadTOC reports track boundaries, ReadTrack returns one track's raw CD-DA
// samples (44.1 kHz, 16-bit, stereo, little-endian interleaved), and Eject
// releases the disc. On Linux, OpenDevice implements it with CD-ROM ioctls;
// other platforms report ErrUnsupportedPlatform. Tray status helpers let
// watch mode wait for a freshly inserted disc to settle.
package disc
