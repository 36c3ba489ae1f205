// Package imaging decodes and downsizes probe images before they are sent
// to the external engines.
package imaging

import (
	"bytes"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"

	"github.com/trungnq/frontdesk/internal/fault"
)

// Decode parses image bytes, returning fault.ErrImageDecode for anything
// the registered formats cannot read.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fault.ImageDecode(err)
	}
	return img, nil
}

// Downsize re-encodes an image as JPEG with its longest side capped at
// maxSize, keeping aspect ratio. Images already within bounds pass through
// untouched. Smaller payloads keep the engine round-trips fast.
func Downsize(data []byte, maxSize int) ([]byte, error) {
	img, err := Decode(data)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width <= maxSize && height <= maxSize {
		return data, nil
	}

	var newWidth, newHeight int
	if width > height {
		newWidth = maxSize
		newHeight = int(float64(height) * float64(maxSize) / float64(width))
	} else {
		newHeight = maxSize
		newWidth = int(float64(width) * float64(maxSize) / float64(height))
	}

	resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.BiLinear.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fault.ImageDecode(err)
	}
	return buf.Bytes(), nil
}
