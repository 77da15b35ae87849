// Package imaging normalizes uploaded equipment photos into bounded JPEGs.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"

	"github.com/erazemk/stockledger/internal/apperr"
)

const (
	// MaxUploadBytes caps the size of an accepted upload.
	MaxUploadBytes = 5 << 20

	// MaxEdge is the longest edge, in pixels, of a stored photo.
	MaxEdge = 800

	// Quality is the JPEG quality of stored photos.
	Quality = 82

	// MIME is the content type of every stored photo.
	MIME = "image/jpeg"
)

var decoders = map[string]func(io.Reader) (image.Image, error){
	"image/jpeg": jpeg.Decode,
	"image/png":  png.Decode,
}

// Photo is a normalized equipment photo.
type Photo struct {
	Data   []byte
	Width  int
	Height int
}

// NormalizePhoto reads an upload, checks its real format from the leading
// bytes, fits it into MaxEdge x MaxEdge and re-encodes it as JPEG.
// Transparent PNG areas become white.
func NormalizePhoto(r io.Reader) (*Photo, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading photo: %w", err)
	}
	if len(data) > MaxUploadBytes {
		return nil, apperr.Validation("photo exceeds %d bytes", MaxUploadBytes)
	}

	kind := http.DetectContentType(data)
	decode, ok := decoders[kind]
	if !ok {
		return nil, apperr.Validation("unsupported photo format %s, use JPEG or PNG", kind)
	}

	src, err := decode(bytes.NewReader(data))
	if err != nil {
		return nil, apperr.Validation("photo could not be decoded")
	}

	w, h := fit(src.Bounds().Dx(), src.Bounds().Dy(), MaxEdge)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: Quality}); err != nil {
		return nil, fmt.Errorf("encoding photo: %w", err)
	}

	return &Photo{Data: buf.Bytes(), Width: w, Height: h}, nil
}

// fit scales w x h down so that neither side exceeds edge, keeping the
// aspect ratio. Smaller images keep their size.
func fit(w, h, edge int) (int, int) {
	if w <= edge && h <= edge {
		return w, h
	}
	if w >= h {
		return edge, max(1, h*edge/w)
	}
	return max(1, w*edge/h), edge
}
