// Package heightmap composites ASCII grid elevation tiles into a single
// normalized raster.
package heightmap

import "context"

// A Coord is a ground coordinate in metres.
type Coord struct {
	X float64
	Y float64
}

// A PixelCoord is a pixel coordinate in a raster.
type PixelCoord struct {
	C int // Column.
	R int // Row.
}

// A Raster can be sampled at ground coordinates.
type Raster interface {
	Samples(ctx context.Context, coords []Coord) ([]float64, error)
	Scale() (float64, float64)
}

// A Tile is a single decoded ASCII grid. Values[0] is the northernmost row.
// Missing values are represented by NaNs.
type Tile struct {
	Name           string
	Columns        int
	Rows           int
	CornerX        float64
	CornerY        float64
	CellSize       float64
	NoDataValue    float64
	HasNoDataValue bool
	Values         [][]float64
}

// Width returns the ground width of t in metres.
func (t *Tile) Width() float64 {
	return float64(t.Columns) * t.CellSize
}

// Height returns the ground height of t in metres.
func (t *Tile) Height() float64 {
	return float64(t.Rows) * t.CellSize
}

// Top returns the northing of t's northern edge.
func (t *Tile) Top() float64 {
	return t.CornerY + t.Height()
}

// clone returns a deep copy of t.
func (t *Tile) clone() *Tile {
	c := *t
	flat := make([]float64, t.Rows*t.Columns)
	c.Values = make([][]float64, t.Rows)
	for r, row := range t.Values {
		c.Values[r] = flat[r*t.Columns : (r+1)*t.Columns : (r+1)*t.Columns]
		copy(c.Values[r], row)
	}
	return &c
}
