// Package images decodes signature image payloads and completes their
// placement geometry from the intrinsic aspect ratio.
package images

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/inkform/inkform/geom"
)

// Info describes a decoded image payload.
type Info struct {
	Width  int
	Height int
	Format string // "png" or "jpeg"
}

// Decode reads the image header and returns its dimensions and format.
// Only PNG and JPEG are accepted.
func Decode(data []byte) (Info, error) {
	if len(data) == 0 {
		return Info{}, fmt.Errorf("empty image data")
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Info{}, fmt.Errorf("decode image: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Info{}, fmt.Errorf("image has no pixels")
	}
	return Info{Width: cfg.Width, Height: cfg.Height, Format: format}, nil
}

// CompleteRect fills in a missing rect dimension from the image's aspect
// ratio. A rect with both dimensions set is returned unchanged; one with
// neither gets the intrinsic size.
func (i Info) CompleteRect(r geom.Rect) geom.Rect {
	ratio := float64(i.Height) / float64(i.Width)
	switch {
	case r.W > 0 && r.H > 0:
		return r
	case r.W > 0:
		r.H = r.W * ratio
	case r.H > 0:
		r.W = r.H / ratio
	default:
		r.W = float64(i.Width)
		r.H = float64(i.Height)
	}
	return r
}
