package heightmap

import "math"

// MaxIntensity is the intensity of the highest valid value after
// normalization.
const MaxIntensity = 255

// MinMax returns the minimum and maximum valid values in r.
func (r *CompositeRaster) MinMax() (float64, float64, error) {
	minValue, maxValue := math.Inf(1), math.Inf(-1)
	valid := false
	for i, value := range r.Values {
		if !r.Mask[i] {
			continue
		}
		minValue = min(minValue, value)
		maxValue = max(maxValue, value)
		valid = true
	}
	if !valid {
		return 0, 0, ErrNoValidCells
	}
	return minValue, maxValue, nil
}

// Normalize linearly rescales r's valid values in place so that the minimum
// maps to 0 and the maximum maps to [MaxIntensity]. Missing cells and cells
// not covered by any tile become 0, so they are indistinguishable from the
// minimum in the values; use Mask or Valid to tell them apart.
//
// If every valid value is equal then Normalize returns a
// [*DegenerateRangeError] and leaves r unchanged. Callers can use Fill to
// choose a uniform output instead.
func (r *CompositeRaster) Normalize() error {
	minValue, maxValue, err := r.MinMax()
	if err != nil {
		return err
	}

	// Equivalent to shifting so that the minimum is zero and then scaling so
	// that the maximum is MaxIntensity, but exact at both ends.
	span := maxValue - minValue
	if span == 0 {
		return &DegenerateRangeError{Value: minValue}
	}
	for i, value := range r.Values {
		if !r.Mask[i] {
			r.Values[i] = 0
			continue
		}
		r.Values[i] = (value - minValue) / span * MaxIntensity
	}
	return nil
}
