package heightmap

import (
	"cmp"
	"fmt"
	"math"
	"slices"
)

// pixelEpsilon absorbs floating point error when converting ground distances
// to whole pixels.
const pixelEpsilon = 1e-6

// MaxRasterCells is the largest number of cells in a resolved geometry.
const MaxRasterCells = 1 << 30

// A Placement is the position of a tile's northwest cell in a composite
// raster.
type Placement struct {
	Tile     *Tile
	StartCol int
	StartRow int
}

// A Geometry is the shared pixel grid of a set of tiles.
type Geometry struct {
	MinX       float64 // Easting of the western edge.
	MaxY       float64 // Northing of the northern edge.
	CellSize   float64
	Width      int
	Height     int
	Placements []Placement // In compositing order.
}

// ResolveGeometry returns the bounding pixel grid of tiles and the placement
// of each tile within it. All tiles must have the same cell size.
//
// Placements are ordered by ascending CornerY then ascending CornerX,
// regardless of the order of tiles, so where tiles overlap the northernmost
// then easternmost tile wins.
func ResolveGeometry(tiles []*Tile) (*Geometry, error) {
	if len(tiles) == 0 {
		return nil, &EmptyTileSetError{}
	}

	for _, tile := range tiles {
		switch {
		case !isFinite(tile.CornerX) || !isFinite(tile.CornerY):
			return nil, &InvalidGeometryError{Tile: tile.Name, Reason: "corner must be finite"}
		case !isFinite(tile.CellSize) || tile.CellSize <= 0:
			return nil, &InvalidGeometryError{Tile: tile.Name, Reason: "cell size must be positive and finite"}
		}
	}

	cellSize := tiles[0].CellSize
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, tile := range tiles {
		if tile.CellSize != cellSize {
			return nil, &InconsistentResolutionError{
				Expected: cellSize,
				Actual:   tile.CellSize,
				Tile:     tile.Name,
			}
		}
		minX = min(minX, tile.CornerX)
		minY = min(minY, tile.CornerY)
		maxX = max(maxX, tile.CornerX+tile.Width())
		maxY = max(maxY, tile.Top())
	}

	// Compare in floating point so that distant tiles cannot overflow int.
	width := pixelCount(maxX-minX, cellSize)
	height := pixelCount(maxY-minY, cellSize)
	if !(width*height <= MaxRasterCells) {
		return nil, &InvalidGeometryError{
			Reason: fmt.Sprintf("%gx%g raster exceeds %d cells", width, height, MaxRasterCells),
		}
	}

	g := &Geometry{
		MinX:       minX,
		MaxY:       maxY,
		CellSize:   cellSize,
		Width:      int(width),
		Height:     int(height),
		Placements: make([]Placement, 0, len(tiles)),
	}

	sortedTiles := slices.Clone(tiles)
	slices.SortStableFunc(sortedTiles, func(a, b *Tile) int {
		return cmp.Or(
			cmp.Compare(a.CornerY, b.CornerY),
			cmp.Compare(a.CornerX, b.CornerX),
		)
	})
	for _, tile := range sortedTiles {
		g.Placements = append(g.Placements, Placement{
			Tile:     tile,
			StartCol: pixels(tile.CornerX-minX, cellSize),
			StartRow: pixels(maxY-tile.Top(), cellSize),
		})
	}

	return g, nil
}

// pixels returns the number of whole pixels of size cellSize in distance.
func pixels(distance, cellSize float64) int {
	return int(pixelCount(distance, cellSize))
}

func pixelCount(distance, cellSize float64) float64 {
	return math.Floor(distance/cellSize + pixelEpsilon)
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
