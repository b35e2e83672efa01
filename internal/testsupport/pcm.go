package testsupport

import (
	"encoding/binary"
	"math"

	"cdrip/internal/disc"
)

// SinePCM returns samples stereo frames of a 440 Hz tone in CD-DA layout. The
// right channel is phase shifted so the channels differ.
func SinePCM(samples int) []byte {
	pcm := make([]byte, samples*4)
	for i := range samples {
		phase := 2 * math.Pi * 440 * float64(i) / disc.SampleRate
		left := int16(math.Sin(phase) * 12000)
		right := int16(math.Sin(phase+math.Pi/3) * 9000)
		binary.LittleEndian.PutUint16(pcm[i*4:], uint16(left))
		binary.LittleEndian.PutUint16(pcm[i*4+2:], uint16(right))
	}
	return pcm
}

// SilencePCM returns samples stereo frames of digital silence.
func SilencePCM(samples int) []byte {
	return make([]byte, samples*4)
}

// SectorPCM returns whole CD sectors of tone.
func SectorPCM(sectors int) []byte {
	return SinePCM(sectors * disc.SectorSize / 4)
}
