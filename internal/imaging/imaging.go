// Package imaging turns fingerprint bitmaps from the reader into bounded
// previews the pages can inline.
package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"net/http"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// MaxDimension is the maximum width or height of a preview.
const MaxDimension = 320

// AllowedMIME lists the accepted input MIME types.
var AllowedMIME = map[string]bool{
	"image/bmp":  true,
	"image/jpeg": true,
	"image/png":  true,
}

// Preview is a processed fingerprint image.
type Preview struct {
	Data   []byte
	MIME   string
	Width  int
	Height int
}

// DataURI returns the preview as an inline image source.
func (p *Preview) DataURI() string {
	return "data:" + p.MIME + ";base64," + base64.StdEncoding.EncodeToString(p.Data)
}

// FromBase64 decodes a base64 bitmap as sent by the reader, optionally
// prefixed with a data URI header, and builds a preview.
func FromBase64(s string) (*Preview, error) {
	if i := strings.Index(s, ","); strings.HasPrefix(s, "data:") && i >= 0 {
		s = s[i+1:]
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("decoding bitmap: %w", err)
	}
	return Process(data)
}

// Process validates the format by sniffing bytes, downscales if larger than
// MaxDimension, and re-encodes as grayscale PNG.
func Process(data []byte) (*Preview, error) {
	// Sniff actual MIME type from bytes (not trusting the device).
	detected := http.DetectContentType(data)
	if !AllowedMIME[detected] {
		return nil, fmt.Errorf("unsupported image format: %s (only BMP, JPEG and PNG accepted)", detected)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	img = downscale(img, MaxDimension)

	gray := image.NewGray(img.Bounds())
	draw.Draw(gray, gray.Bounds(), img, img.Bounds().Min, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, gray); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}

	b := gray.Bounds()
	return &Preview{
		Data:   buf.Bytes(),
		MIME:   "image/png",
		Width:  b.Dx(),
		Height: b.Dy(),
	}, nil
}

// downscale resizes the image so neither dimension exceeds maxDim.
// Returns the original image if already within bounds.
func downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()

	if w <= maxDim && h <= maxDim {
		return img
	}

	newW, newH := w, h
	if w > h {
		newW = maxDim
		newH = int(float64(h) * float64(maxDim) / float64(w))
	} else {
		newH = maxDim
		newW = int(float64(w) * float64(maxDim) / float64(h))
	}

	newW = max(newW, 1)
	newH = max(newH, 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

func init() {
	image.RegisterFormat("bmp", "BM", bmp.Decode, bmp.DecodeConfig)
	image.RegisterFormat("jpeg", "\xff\xd8", jpeg.Decode, jpeg.DecodeConfig)
	image.RegisterFormat("png", "\x89PNG", png.Decode, png.DecodeConfig)
}
