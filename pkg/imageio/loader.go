// Package imageio decodes instrument image files into pixel arrays.
package imageio

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"

	// Image format decoders
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"gonum.org/v1/gonum/mat"
)

// ErrEmptyImage is wrapped by DecodeError when an image has no pixels.
var ErrEmptyImage = errors.New("image has zero width or height")

// DecodeError reports an image file that could not be opened or decoded.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Load decodes the image at path and returns its intensities as a
// height x width matrix. 8 and 16 bit grayscale images keep their raw
// sample values; any other color model is reduced to 16 bit luminance.
func Load(path string) (*mat.Dense, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}

	pixels, err := ToMatrix(img)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: fmt.Errorf("%s: %w", format, err)}
	}
	return pixels, nil
}

// ToMatrix copies img into a new matrix.
func ToMatrix(img image.Image) (*mat.Dense, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return nil, ErrEmptyImage
	}

	data := make([]float64, width*height)
	switch src := img.(type) {
	case *image.Gray:
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				data[y*width+x] = float64(src.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y)
			}
		}
	case *image.Gray16:
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				data[y*width+x] = float64(src.Gray16At(bounds.Min.X+x, bounds.Min.Y+y).Y)
			}
		}
	default:
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				c := color.Gray16Model.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray16)
				data[y*width+x] = float64(c.Y)
			}
		}
	}

	return mat.NewDense(height, width, data), nil
}
