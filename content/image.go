package content

import (
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io/fs"
	"math"
	"path"
	"strings"
)

// IsImage reports whether file has an image extension with known size.
func IsImage(file string) bool {
	switch strings.ToLower(path.Ext(file)) {
	case ".jpg", ".jpeg", ".png", ".gif":
		return true
	}
	return false
}

// ImageSize decodes the dimensions of an image in fsys.
func ImageSize(fsys fs.FS, file string) (int, int, error) {
	f, err := fsys.Open(strings.TrimPrefix(file, "/"))
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode %s: %w", file, err)
	}
	return cfg.Width, cfg.Height, nil
}

// Image describes a resized image.
type Image struct {
	File   string
	Width  int
	Height int
}

// Resizer produces a resized version of an image. A width or height of 0
// leaves that side unconstrained.
type Resizer interface {
	Resize(file string, width, height int, crop bool) (Image, error)
}

// DimensionResizer computes the target dimensions but does not write a new
// file; it returns the original path.
type DimensionResizer struct {
	FS fs.FS
}

// Resize fits the image into width x height keeping its aspect ratio, or
// fills the box exactly when crop is set.
func (r *DimensionResizer) Resize(file string, width, height int, crop bool) (Image, error) {
	w, h, err := ImageSize(r.FS, file)
	if err != nil {
		return Image{}, err
	}
	tw, th := FitBox(w, h, width, height, crop)
	return Image{File: file, Width: tw, Height: th}, nil
}

// FitBox computes the size of a w x h image scaled into a box.
func FitBox(w, h, boxW, boxH int, crop bool) (int, int) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	switch {
	case boxW <= 0 && boxH <= 0:
		return w, h
	case boxW <= 0:
		return round(float64(w) * float64(boxH) / float64(h)), boxH
	case boxH <= 0:
		return boxW, round(float64(h) * float64(boxW) / float64(w))
	case crop:
		return boxW, boxH
	}
	scale := math.Min(float64(boxW)/float64(w), float64(boxH)/float64(h))
	return round(float64(w) * scale), round(float64(h) * scale)
}

func round(f float64) int {
	return int(math.Round(f))
}
