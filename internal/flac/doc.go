// Package flac writes CD-DA audio into FLAC files and maintains their tag
// block.
//
// Encoding uses github.com/mewkiz/flac; the STREAMINFO sample count and MD5
// signature are computed from the PCM before the first frame is written, so
// the output needs no seek-back pass. Vorbis comments and the optional front
// cover are rewritten with the go-flac block libraries, and ReadTags reads
// them back through github.com/dhowden/tag.
package flac
