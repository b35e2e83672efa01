package flac

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dhowden/tag"
	mflac "github.com/mewkiz/flac"
	"github.com/mewkiz/flac/meta"
)

// Info summarizes a FLAC file's stream header and tags.
type Info struct {
	Path          string
	Tags          Tags
	SampleRate    uint32
	Channels      uint8
	BitsPerSample uint8
	Samples       uint64
	Duration      time.Duration
	HasPicture    bool
}

// ReadTags reads the Vorbis comments of a FLAC file.
func ReadTags(path string) (Tags, error) {
	f, err := os.Open(path)
	if err != nil {
		return Tags{}, err
	}
	defer f.Close()

	md, err := tag.ReadFrom(f)
	if err != nil {
		return Tags{}, fmt.Errorf("read tags %s: %w", path, err)
	}
	track, _ := md.Track()
	raw := md.Raw()
	return Tags{
		Title:       md.Title(),
		Album:       md.Album(),
		Artist:      md.Artist(),
		TrackNumber: uint32(max(track, 0)),
		Date:        rawString(raw, "date"),
		Country:     rawString(raw, "country"),
	}, nil
}

// Inspect reads the stream header and tags of a FLAC file.
func Inspect(path string) (Info, error) {
	stream, err := mflac.ParseFile(path)
	if err != nil {
		return Info{}, fmt.Errorf("open %s: %w", path, err)
	}
	streamInfo := *stream.Info
	hasPicture := false
	for _, block := range stream.Blocks {
		if block.Header.Type == meta.TypePicture {
			hasPicture = true
		}
	}
	_ = stream.Close()

	tags, err := ReadTags(path)
	if err != nil {
		return Info{}, err
	}
	info := Info{
		Path:          path,
		Tags:          tags,
		SampleRate:    streamInfo.SampleRate,
		Channels:      streamInfo.NChannels,
		BitsPerSample: streamInfo.BitsPerSample,
		Samples:       streamInfo.NSamples,
		HasPicture:    hasPicture,
	}
	if streamInfo.SampleRate > 0 {
		info.Duration = time.Duration(streamInfo.NSamples) * time.Second / time.Duration(streamInfo.SampleRate)
	}
	return info, nil
}

func rawString(raw map[string]interface{}, key string) string {
	for k, v := range raw {
		if strings.EqualFold(k, key) {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	return ""
}
