package flac

import (
	"bytes"
	"fmt"
	"os"
	"strconv"

	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	goflac "github.com/go-flac/go-flac"

	"cdrip/internal/fileutil"
)

// FieldCountry is not among the flacvorbis field constants.
const FieldCountry = "COUNTRY"

// Tags is the descriptive metadata written into every track.
type Tags struct {
	Title       string
	Album       string
	Artist      string
	TrackNumber uint32
	Date        string
	Country     string
}

// WriteTags replaces the file's Vorbis comment block with tags.
func WriteTags(path string, tags Tags) error {
	file, err := parse(path)
	if err != nil {
		return err
	}
	file.Meta = withoutBlocks(file.Meta, goflac.VorbisComment)

	comment := flacvorbis.New()
	for _, field := range []struct{ key, value string }{
		{flacvorbis.FIELD_TITLE, tags.Title},
		{flacvorbis.FIELD_ALBUM, tags.Album},
		{flacvorbis.FIELD_ARTIST, tags.Artist},
		{flacvorbis.FIELD_TRACKNUMBER, strconv.FormatUint(uint64(tags.TrackNumber), 10)},
		{flacvorbis.FIELD_DATE, tags.Date},
		{FieldCountry, tags.Country},
	} {
		if err := comment.Add(field.key, field.value); err != nil {
			return fmt.Errorf("add %s: %w", field.key, err)
		}
	}
	block := comment.Marshal()
	file.Meta = append(file.Meta, &block)
	return save(path, file)
}

// EmbedPicture replaces any PICTURE blocks with a single front cover.
func EmbedPicture(path string, image []byte, mime string) error {
	file, err := parse(path)
	if err != nil {
		return err
	}
	picture, err := flacpicture.NewFromImageData(flacpicture.PictureTypeFrontCover, "Front Cover", image, mime)
	if err != nil {
		return fmt.Errorf("build picture block: %w", err)
	}
	file.Meta = withoutBlocks(file.Meta, goflac.Picture)
	block := picture.Marshal()
	file.Meta = append(file.Meta, &block)
	return save(path, file)
}

func parse(path string) (*goflac.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	file, err := goflac.ParseBytes(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return file, nil
}

func withoutBlocks(blocks []*goflac.MetaDataBlock, drop goflac.BlockType) []*goflac.MetaDataBlock {
	kept := blocks[:0]
	for _, block := range blocks {
		if block.Type != drop {
			kept = append(kept, block)
		}
	}
	return kept
}

// save rewrites the file atomically so a failed rewrite leaves the original
// audio intact.
func save(path string, file *goflac.File) error {
	return fileutil.WriteAtomic(path, file.Marshal(), 0o644)
}
