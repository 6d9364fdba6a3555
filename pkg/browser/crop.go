package browser

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	apperr "github.com/matzehuels/html2deck/pkg/errors"
)

// ErrEmptyCapture is returned when a capture has no visible pixels.
var ErrEmptyCapture = errors.New("capture has no visible pixels")

// AutoCrop decodes a PNG screenshot and crops it to the bounds of its
// non-transparent pixels.
func AutoCrop(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode capture: %w", err)
	}
	bounds, ok := contentBounds(imaging.Clone(img))
	if !ok {
		return nil, ErrEmptyCapture
	}
	return imaging.Crop(img, bounds), nil
}

// contentBounds returns the smallest rectangle holding every pixel with
// non-zero alpha.
func contentBounds(img *image.NRGBA) (image.Rectangle, bool) {
	b := img.Bounds()
	minX, minY, maxX, maxY := b.Max.X, b.Max.Y, b.Min.X-1, b.Min.Y-1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[(y-b.Min.Y)*img.Stride:]
		for x := b.Min.X; x < b.Max.X; x++ {
			if row[(x-b.Min.X)*4+3] == 0 {
				continue
			}
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
	}
	if maxX < minX || maxY < minY {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}

// saveCropped crops a screenshot and writes it to dest as PNG. Errors carry
// the CAPTURE code.
func saveCropped(data []byte, dest string) error {
	img, err := AutoCrop(data)
	if err != nil {
		return apperr.Wrap(apperr.ErrCodeCapture, err, "crop %s", filepath.Base(dest))
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
		return apperr.Wrap(apperr.ErrCodeCapture, err, "create raster dir")
	}
	if err := imaging.Save(img, dest); err != nil {
		return apperr.Wrap(apperr.ErrCodeCapture, err, "save raster")
	}
	return nil
}
