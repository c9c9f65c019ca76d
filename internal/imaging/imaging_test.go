package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"strings"
	"testing"

	"golang.org/x/image/bmp"
)

func createTestBMP(w, h int) []byte {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.SetGray(x, y, color.Gray{uint8((x + y) % 256)})
		}
	}
	var buf bytes.Buffer
	bmp.Encode(&buf, img)
	return buf.Bytes()
}

func createTestJPEG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{255, 0, 0, 255})
		}
	}
	var buf bytes.Buffer
	jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	return buf.Bytes()
}

func TestProcessBMP(t *testing.T) {
	p, err := Process(createTestBMP(260, 300))
	if err != nil {
		t.Fatalf("Process BMP: %v", err)
	}
	if p.MIME != "image/png" {
		t.Errorf("expected image/png, got %s", p.MIME)
	}
	if p.Width != 260 || p.Height != 300 {
		t.Errorf("small image should not be resized: got %dx%d", p.Width, p.Height)
	}
}

func TestProcessDownscale(t *testing.T) {
	p, err := Process(createTestJPEG(1024, 512))
	if err != nil {
		t.Fatalf("Process large image: %v", err)
	}
	if p.Width != MaxDimension || p.Height != MaxDimension/2 {
		t.Errorf("expected %dx%d, got %dx%d", MaxDimension, MaxDimension/2, p.Width, p.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(p.Data))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if img.Bounds().Dx() != p.Width {
		t.Errorf("encoded width %d does not match %d", img.Bounds().Dx(), p.Width)
	}
}

func TestFromBase64(t *testing.T) {
	raw := base64.StdEncoding.EncodeToString(createTestBMP(40, 40))

	for _, in := range []string{raw, "data:image/bmp;base64," + raw} {
		p, err := FromBase64(in)
		if err != nil {
			t.Fatalf("FromBase64: %v", err)
		}
		if !strings.HasPrefix(p.DataURI(), "data:image/png;base64,") {
			t.Errorf("unexpected data URI prefix %q", p.DataURI()[:30])
		}
	}
}

func TestFromBase64Invalid(t *testing.T) {
	if _, err := FromBase64("%%%"); err == nil {
		t.Error("expected error for invalid base64")
	}
}

func TestProcessInvalidFormat(t *testing.T) {
	_, err := Process([]byte("not an image"))
	if err == nil {
		t.Error("expected error for invalid format")
	}
}

func TestProcessGIFRejected(t *testing.T) {
	// GIF magic bytes.
	_, err := Process([]byte("GIF89a..."))
	if err == nil {
		t.Error("expected error for GIF")
	}
}
