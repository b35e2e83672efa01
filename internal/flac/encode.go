package flac

import (
	"bufio"
	"crypto/md5"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	mflac "github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"
)

const (
	// SampleRate, Channels and BitsPerSample describe the only accepted PCM layout.
	SampleRate    = 44100
	Channels      = 2
	BitsPerSample = 16

	bytesPerFrame = Channels * BitsPerSample / 8
	blockSize     = 4096
)

// ErrNoAudio is returned for an empty PCM buffer.
var ErrNoAudio = errors.New("no audio samples")

// Encode writes pcm (little-endian interleaved 16-bit stereo) to w as a FLAC
// stream.
func Encode(w io.Writer, pcm []byte) error {
	if len(pcm) == 0 {
		return ErrNoAudio
	}
	if len(pcm)%bytesPerFrame != 0 {
		return fmt.Errorf("pcm length %d is not a multiple of %d bytes", len(pcm), bytesPerFrame)
	}
	nSamples := len(pcm) / bytesPerFrame

	info := &meta.StreamInfo{
		BlockSizeMin:  blockSize,
		BlockSizeMax:  blockSize,
		SampleRate:    SampleRate,
		NChannels:     Channels,
		BitsPerSample: BitsPerSample,
		NSamples:      uint64(nSamples),
		MD5sum:        md5.Sum(pcm),
	}
	enc, err := mflac.NewEncoder(w, info)
	if err != nil {
		return fmt.Errorf("create encoder: %w", err)
	}

	for num, offset := 0, 0; offset < nSamples; num++ {
		n := min(blockSize, nSamples-offset)
		left := make([]int32, n)
		right := make([]int32, n)
		for i := range n {
			idx := (offset + i) * bytesPerFrame
			left[i] = int32(int16(binary.LittleEndian.Uint16(pcm[idx:])))
			right[i] = int32(int16(binary.LittleEndian.Uint16(pcm[idx+2:])))
		}
		f := &frame.Frame{
			Header: frame.Header{
				HasFixedBlockSize: true,
				BlockSize:         uint16(n),
				SampleRate:        SampleRate,
				Channels:          frame.ChannelsLR,
				BitsPerSample:     BitsPerSample,
				Num:               uint64(num),
			},
			Subframes: []*frame.Subframe{subframe(left), subframe(right)},
		}
		if err := enc.WriteFrame(f); err != nil {
			return fmt.Errorf("write frame %d: %w", num, err)
		}
		offset += n
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize stream: %w", err)
	}
	return nil
}

// subframe picks a constant subframe for digital silence and a verbatim one
// otherwise.
func subframe(samples []int32) *frame.Subframe {
	pred := frame.PredConstant
	for _, s := range samples[1:] {
		if s != samples[0] {
			pred = frame.PredVerbatim
			break
		}
	}
	return &frame.Subframe{
		SubHeader: frame.SubHeader{Pred: pred},
		Samples:   samples,
		NSamples:  len(samples),
	}
}

// EncodeFile creates path exclusively and encodes pcm into it. On failure the
// partial file is removed.
func EncodeFile(path string, pcm []byte) (err error) {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = file.Close()
			_ = os.Remove(path)
		}
	}()

	buffered := bufio.NewWriterSize(file, 1<<20)
	if err = Encode(buffered, pcm); err != nil {
		return err
	}
	if err = buffered.Flush(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	if err = file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
