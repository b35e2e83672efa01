package coverart

import (
	"bytes"
	"image"
	"image/jpeg"
	_ "image/png" // PNG decoder registration

	"golang.org/x/image/draw"
)

// Downscale fits the image inside maxDimension x maxDimension, preserving the
// aspect ratio, and re-encodes it as JPEG. Images already within bounds are
// returned unchanged with changed == false.
func Downscale(data []byte, maxDimension int) ([]byte, bool, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, false, err
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= maxDimension && height <= maxDimension {
		return data, false, nil
	}
	if width >= height {
		height = max(1, height*maxDimension/width)
		width = maxDimension
	} else {
		width = max(1, width*maxDimension/height)
		height = maxDimension
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 90}); err != nil {
		return nil, false, err
	}
	return buf.Bytes(), true, nil
}
