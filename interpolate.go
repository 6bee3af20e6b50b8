package heightmap

import (
	"context"
	"math"
)

// InterpolateBilinear returns the bilinear interpolation of raster at coords.
// Raster samples are taken at multiples of the raster's scale. Samples with
// zero weight are ignored, so coords exactly on a sample point only depend on
// that sample.
func InterpolateBilinear(ctx context.Context, raster Raster, coords []Coord) ([]float64, error) {
	scaleX, scaleY := raster.Scale()
	rasterCoords := make([]Coord, 4*len(coords))
	for i, coord := range coords {
		x0 := scaleX * math.Floor(coord.X/scaleX)
		y0 := scaleY * math.Floor(coord.Y/scaleY)
		x1 := x0 + scaleX
		y1 := y0 + scaleY
		rasterCoords[4*i+0] = Coord{X: x0, Y: y0}
		rasterCoords[4*i+1] = Coord{X: x1, Y: y0}
		rasterCoords[4*i+2] = Coord{X: x0, Y: y1}
		rasterCoords[4*i+3] = Coord{X: x1, Y: y1}
	}
	samples, err := raster.Samples(ctx, rasterCoords)
	if err != nil {
		return nil, err
	}
	result := make([]float64, len(coords))
	for i, coord := range coords {
		dx := (coord.X - rasterCoords[4*i].X) / scaleX
		dy := (coord.Y - rasterCoords[4*i].Y) / scaleY
		weights := [4]float64{
			(1 - dx) * (1 - dy),
			dx * (1 - dy),
			(1 - dx) * dy,
			dx * dy,
		}
		for j, weight := range weights {
			if weight != 0 {
				result[i] += samples[4*i+j] * weight
			}
		}
	}
	return result, nil
}
