// Package monitor watches udev netlink events and reports audio disc
// insertions for the configured drive.
//
// Matching follows the udev block properties for optical media
// (SUBSYSTEM=block, ID_CDROM=1, ID_CDROM_MEDIA=1, ACTION add or change).
// Handlers run on the event loop, one at a time; events that arrive while a
// handler runs, or shortly after it returns, are dropped so a single
// insertion never triggers two rips.
package monitor
