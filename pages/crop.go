package pages

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/DS4SD/docling-eval/model"
)

// Crop cuts rect out of a page render and rescales it by scale. rect must
// be a pixel-space, top-left-origin rectangle; it is clamped to the image
// bounds before cropping.
func Crop(img image.Image, rect model.BBox, scale float64) (image.Image, error) {
	if rect.Origin != model.CoordTopLeft {
		return nil, fmt.Errorf("pages: crop rect must be top-left origin, got %q", rect.Origin)
	}
	if scale <= 0 {
		return nil, fmt.Errorf("pages: invalid crop scale %v", scale)
	}

	bounds := img.Bounds()
	src := image.Rect(
		int(math.Floor(rect.L)),
		int(math.Floor(rect.T)),
		int(math.Ceil(rect.R)),
		int(math.Ceil(rect.B)),
	).Intersect(bounds)
	if src.Empty() {
		return nil, fmt.Errorf("pages: crop rect %+v lies outside the render", rect)
	}

	w := int(math.Round(float64(src.Dx()) * scale))
	h := int(math.Round(float64(src.Dy()) * scale))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, src, xdraw.Src, nil)
	return dst, nil
}

// EncodePNG encodes an image as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("pages: encode png: %w", err)
	}
	return buf.Bytes(), nil
}
