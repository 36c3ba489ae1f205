package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/trungnq/frontdesk/internal/fault"
)

func encodeTestJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	data := encodeTestJPEG(t, 10, 10)
	img, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if img.Bounds().Dx() != 10 {
		t.Errorf("width = %d, want 10", img.Bounds().Dx())
	}
}

func TestDecodeGarbage(t *testing.T) {
	_, err := Decode([]byte("not an image"))
	if !errors.Is(err, fault.ErrImageDecode) {
		t.Errorf("Decode garbage = %v, want ErrImageDecode", err)
	}
}

func TestDownsizePassThrough(t *testing.T) {
	data := encodeTestJPEG(t, 100, 50)
	out, err := Downsize(data, 200)
	if err != nil {
		t.Fatalf("Downsize failed: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Error("image within bounds should pass through unchanged")
	}
}

func TestDownsizeShrinks(t *testing.T) {
	data := encodeTestJPEG(t, 400, 200)
	out, err := Downsize(data, 100)
	if err != nil {
		t.Fatalf("Downsize failed: %v", err)
	}
	img, err := Decode(out)
	if err != nil {
		t.Fatalf("Decode of resized image failed: %v", err)
	}
	if img.Bounds().Dx() != 100 || img.Bounds().Dy() != 50 {
		t.Errorf("resized to %dx%d, want 100x50", img.Bounds().Dx(), img.Bounds().Dy())
	}
}
