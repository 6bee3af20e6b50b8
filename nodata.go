package heightmap

import (
	"math"
	"slices"
)

// Terr50NoDataValue is the value that OS Terrain 50 tiles use for cells
// without a measurement.
const Terr50NoDataValue = -0.9

// A NodataPolicy marks sentinel values in tiles as missing.
type NodataPolicy struct {
	// Exclude contains values that are treated as missing. Values are
	// compared exactly.
	Exclude []float64
	// UseHeaderNoData also treats a tile's nodata_value header, if present,
	// as missing.
	UseHeaderNoData bool
}

// Terr50NodataPolicy returns the policy for OS Terrain 50 tiles.
func Terr50NodataPolicy() NodataPolicy {
	return NodataPolicy{
		Exclude: []float64{Terr50NoDataValue},
	}
}

// Apply returns a copy of tile with excluded values replaced by NaN. tile is
// not modified.
func (p NodataPolicy) Apply(tile *Tile) *Tile {
	exclude := slices.Clone(p.Exclude)
	if p.UseHeaderNoData && tile.HasNoDataValue {
		exclude = append(exclude, tile.NoDataValue)
	}
	result := tile.clone()
	if len(exclude) == 0 {
		return result
	}
	for _, row := range result.Values {
		for i, value := range row {
			if slices.Contains(exclude, value) {
				row[i] = math.NaN()
			}
		}
	}
	return result
}

// MinMax returns the minimum and maximum non-missing values in t.
func (t *Tile) MinMax() (float64, float64, error) {
	minValue, maxValue := math.Inf(1), math.Inf(-1)
	valid := false
	for _, row := range t.Values {
		for _, value := range row {
			if math.IsNaN(value) {
				continue
			}
			minValue = min(minValue, value)
			maxValue = max(maxValue, value)
			valid = true
		}
	}
	if !valid {
		return 0, 0, ErrNoValidCells
	}
	return minValue, maxValue, nil
}
