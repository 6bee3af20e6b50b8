package heightmap

import (
	"context"
	"math"
	"slices"
)

// A CompositeRaster is a set of tiles merged into a single grid. Row 0 is the
// northernmost row.
//
// Cells that no tile covers are zero. Cells covered by a missing tile value
// are NaN until the raster is normalized. Mask records which cells hold a
// valid value.
type CompositeRaster struct {
	Width    int
	Height   int
	MinX     float64
	MaxY     float64
	CellSize float64
	Values   []float64 // Row-major.
	Mask     []bool    // Row-major.
}

// NewCompositeRaster returns a new zero-filled raster covering g.
func NewCompositeRaster(g *Geometry) *CompositeRaster {
	return &CompositeRaster{
		Width:    g.Width,
		Height:   g.Height,
		MinX:     g.MinX,
		MaxY:     g.MaxY,
		CellSize: g.CellSize,
		Values:   make([]float64, g.Width*g.Height),
		Mask:     make([]bool, g.Width*g.Height),
	}
}

// Composite writes every tile in g into a new raster at its placement, in
// placement order.
func Composite(g *Geometry) (*CompositeRaster, error) {
	r := NewCompositeRaster(g)
	for _, p := range g.Placements {
		if err := r.writeTile(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// writeTile writes p's tile into r. Nothing is written if any part of the
// tile is outside r.
func (r *CompositeRaster) writeTile(p Placement) error {
	if p.StartCol < 0 || p.StartRow < 0 ||
		p.StartCol+p.Tile.Columns > r.Width || p.StartRow+p.Tile.Rows > r.Height {
		return &OutOfBoundsWriteError{
			Tile:     p.Tile.Name,
			StartCol: p.StartCol,
			StartRow: p.StartRow,
			Width:    r.Width,
			Height:   r.Height,
		}
	}
	for row, values := range p.Tile.Values {
		offset := (p.StartRow+row)*r.Width + p.StartCol
		copy(r.Values[offset:offset+len(values)], values)
		for col, value := range values {
			r.Mask[offset+col] = !math.IsNaN(value)
		}
	}
	return nil
}

// At returns the value at (col, row).
func (r *CompositeRaster) At(col, row int) float64 {
	return r.Values[row*r.Width+col]
}

// Valid returns whether (col, row) holds a value from a tile.
func (r *CompositeRaster) Valid(col, row int) bool {
	return r.Mask[row*r.Width+col]
}

// Clone returns a deep copy of r.
func (r *CompositeRaster) Clone() *CompositeRaster {
	c := *r
	c.Values = slices.Clone(r.Values)
	c.Mask = slices.Clone(r.Mask)
	return &c
}

// Fill sets every cell of r to value.
func (r *CompositeRaster) Fill(value float64) {
	for i := range r.Values {
		r.Values[i] = value
	}
}

// Intensities returns r's values rounded and clamped to 8 bits, in row-major
// order. NaNs become 0.
func (r *CompositeRaster) Intensities() []uint8 {
	intensities := make([]uint8, len(r.Values))
	for i, value := range r.Values {
		switch {
		case math.IsNaN(value) || value <= 0:
			intensities[i] = 0
		case value >= 255:
			intensities[i] = 255
		default:
			intensities[i] = uint8(math.Round(value))
		}
	}
	return intensities
}

// PixelCoord returns the pixel containing coord. A coordinate on a cell
// boundary belongs to the cell to its east and south. The result may be
// outside r.
func (r *CompositeRaster) PixelCoord(coord Coord) PixelCoord {
	return PixelCoord{
		C: int(math.Floor((coord.X-r.MinX)/r.CellSize + pixelEpsilon)),
		R: int(math.Floor((r.MaxY-coord.Y)/r.CellSize + pixelEpsilon)),
	}
}

// Samples returns the values of the cells containing coords. Coordinates
// outside r and cells without a valid value are represented by NaNs.
func (r *CompositeRaster) Samples(ctx context.Context, coords []Coord) ([]float64, error) {
	samples := make([]float64, len(coords))
	for i, coord := range coords {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := r.PixelCoord(coord)
		if p.C < 0 || r.Width <= p.C || p.R < 0 || r.Height <= p.R || !r.Valid(p.C, p.R) {
			samples[i] = math.NaN()
			continue
		}
		samples[i] = r.At(p.C, p.R)
	}
	return samples, nil
}

// Scale returns r's cell size.
func (r *CompositeRaster) Scale() (float64, float64) {
	return r.CellSize, r.CellSize
}
