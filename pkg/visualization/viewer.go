// Package visualization turns raw instrument intensities into viewable images.
package visualization

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/mat"
)

// ToImage converts a stretched matrix into an 8 bit grayscale image.
// Values are truncated toward zero and clamped into [0, 255].
func ToImage(pixels mat.Matrix) *image.Gray {
	rows, cols := pixels.Dims()
	img := image.NewGray(image.Rect(0, 0, cols, rows))
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			v := pixels.At(y, x)
			switch {
			case math.IsNaN(v) || v < 0:
				v = 0
			case v > 255:
				v = 255
			}
			img.SetGray(x, y, color.Gray{Y: uint8(v)})
		}
	}
	return img
}

// SavePreview writes pixels as an image file. The format follows the
// extension of filename (png, jpg, tif, bmp).
func SavePreview(pixels mat.Matrix, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("creating preview directory: %w", err)
	}
	if err := imaging.Save(ToImage(pixels), filename, imaging.JPEGQuality(90)); err != nil {
		return fmt.Errorf("saving preview %s: %w", filename, err)
	}
	return nil
}

// PreviewName derives the preview path for an image inside outputDir
func PreviewName(imagePath, outputDir, format string) string {
	base := filepath.Base(imagePath)
	base = base[:len(base)-len(filepath.Ext(base))]
	return filepath.Join(outputDir, fmt.Sprintf("%s_stretched.%s", base, format))
}
