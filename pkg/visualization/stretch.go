package visualization

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// DefaultPercentile is the upper percentile used as the stretch maximum
const DefaultPercentile = 99.9999

// StretchCeiling is the largest value a stretched pixel can take.
// Results at or above 255 are clamped to 254, not 255.
const StretchCeiling = 254

// ErrDegenerateRange is matched by errors.Is for every *DegenerateRangeError.
var ErrDegenerateRange = errors.New("degenerate intensity range")

// ErrEmptyPixels is returned when asked to stretch a matrix without pixels.
var ErrEmptyPixels = errors.New("cannot contrast stretch an empty pixel array")

// DegenerateRangeError reports an image whose minimum equals its upper percentile,
// which would make the stretch divide by zero.
type DegenerateRangeError struct {
	Min, Max float64
}

func (e *DegenerateRangeError) Error() string {
	return fmt.Sprintf("cannot contrast stretch: min %v equals max %v", e.Min, e.Max)
}

func (e *DegenerateRangeError) Is(target error) bool { return target == ErrDegenerateRange }

// Stretcher maps raw intensities onto the displayable range [0, 254]
type Stretcher struct {
	// Percentile selects the value treated as the top of the range
	Percentile float64
}

// NewStretcher creates a stretcher using DefaultPercentile
func NewStretcher() *Stretcher {
	return &Stretcher{Percentile: DefaultPercentile}
}

// ContrastStretch applies the default stretcher to pixels
func ContrastStretch(pixels mat.Matrix) (*mat.Dense, error) {
	return NewStretcher().Apply(pixels)
}

// Apply returns a new matrix where every pixel p becomes
// (p - min) / (max - min) * 255, with min the smallest pixel and max the
// configured percentile, then clamped to [0, 254]. pixels is not modified.
func (s *Stretcher) Apply(pixels mat.Matrix) (*mat.Dense, error) {
	rows, cols := pixels.Dims()
	if rows*cols == 0 {
		return nil, ErrEmptyPixels
	}
	values := make([]float64, 0, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			values = append(values, pixels.At(i, j))
		}
	}

	minVal := floats.Min(values)
	maxVal := Percentile(values, s.Percentile)
	if maxVal == minVal {
		return nil, &DegenerateRangeError{Min: minVal, Max: maxVal}
	}

	span := maxVal - minVal
	for i, p := range values {
		v := ((p - minVal) / span) * 255
		if v >= 255 {
			v = StretchCeiling
		}
		if v < 0 {
			v = 0
		}
		values[i] = v
	}

	return mat.NewDense(rows, cols, values), nil
}

// Percentile returns the q-th percentile (0 <= q <= 100) of values using
// linear interpolation between the two nearest ranks, the same rule numpy
// applies by default. values is not reordered. Panics on an empty slice.
func Percentile(values []float64, q float64) float64 {
	if len(values) == 0 {
		panic("visualization: percentile of empty slice")
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	virtual := (q / 100) * float64(len(sorted)-1)
	lo := math.Floor(virtual)
	gamma := virtual - lo

	prev := int(lo)
	if prev < 0 {
		prev = 0
	}
	if prev > len(sorted)-1 {
		prev = len(sorted) - 1
	}
	next := prev + 1
	if next > len(sorted)-1 {
		next = len(sorted) - 1
	}

	return lerp(sorted[prev], sorted[next], gamma)
}

// lerp interpolates from the nearer endpoint to keep results monotonic in t.
// The float64 conversions keep the products from being fused into FMA.
func lerp(a, b, t float64) float64 {
	diff := b - a
	if t >= 0.5 {
		return b - float64(diff*(1-t))
	}
	return a + float64(diff*t)
}
