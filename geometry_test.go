package heightmap_test

import (
	"errors"
	"math"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/twpayne/go-heightmap"
)

type placement struct {
	name     string
	startCol int
	startRow int
}

func TestResolveGeometry(t *testing.T) {
	a := newTile("A", 200, 200, 0, 0, 50, constant(1))
	b := newTile("B", 200, 200, 10000, 0, 50, constant(2))
	c := newTile("C", 200, 200, 0, 10000, 50, constant(3))
	d := newTile("D", 200, 200, 30000, 0, 50, constant(4))
	small := newTile("S", 10, 20, 10250, 10500, 50, constant(5))

	for _, tc := range []struct {
		name               string
		tiles              []*heightmap.Tile
		expectedMinX       float64
		expectedMaxY       float64
		expectedWidth      int
		expectedHeight     int
		expectedPlacements []placement
	}{
		{
			name:           "single",
			tiles:          []*heightmap.Tile{a},
			expectedMaxY:   10000,
			expectedWidth:  200,
			expectedHeight: 200,
			expectedPlacements: []placement{
				{name: "A", startCol: 0, startRow: 0},
			},
		},
		{
			name:           "east_west",
			tiles:          []*heightmap.Tile{a, b},
			expectedMaxY:   10000,
			expectedWidth:  400,
			expectedHeight: 200,
			expectedPlacements: []placement{
				{name: "A", startCol: 0, startRow: 0},
				{name: "B", startCol: 200, startRow: 0},
			},
		},
		{
			name:           "east_west_reversed",
			tiles:          []*heightmap.Tile{b, a},
			expectedMaxY:   10000,
			expectedWidth:  400,
			expectedHeight: 200,
			expectedPlacements: []placement{
				{name: "A", startCol: 0, startRow: 0},
				{name: "B", startCol: 200, startRow: 0},
			},
		},
		{
			name:           "north_south",
			tiles:          []*heightmap.Tile{c, a},
			expectedMaxY:   20000,
			expectedWidth:  200,
			expectedHeight: 400,
			expectedPlacements: []placement{
				{name: "A", startCol: 0, startRow: 200},
				{name: "C", startCol: 0, startRow: 0},
			},
		},
		{
			name:           "gap",
			tiles:          []*heightmap.Tile{d, a},
			expectedMaxY:   10000,
			expectedWidth:  800,
			expectedHeight: 200,
			expectedPlacements: []placement{
				{name: "A", startCol: 0, startRow: 0},
				{name: "D", startCol: 600, startRow: 0},
			},
		},
		{
			name:           "l_shape",
			tiles:          []*heightmap.Tile{b, c, a},
			expectedMaxY:   20000,
			expectedWidth:  400,
			expectedHeight: 400,
			expectedPlacements: []placement{
				{name: "A", startCol: 0, startRow: 200},
				{name: "B", startCol: 200, startRow: 200},
				{name: "C", startCol: 0, startRow: 0},
			},
		},
		{
			name:           "offset",
			tiles:          []*heightmap.Tile{small, b},
			expectedMinX:   10000,
			expectedMaxY:   11500,
			expectedWidth:  200,
			expectedHeight: 230,
			expectedPlacements: []placement{
				{name: "B", startCol: 0, startRow: 30},
				{name: "S", startCol: 5, startRow: 0},
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			geometry, err := heightmap.ResolveGeometry(tc.tiles)
			assert.NoError(t, err)
			assert.Equal(t, tc.expectedMinX, geometry.MinX)
			assert.Equal(t, tc.expectedMaxY, geometry.MaxY)
			assert.Equal(t, 50.0, geometry.CellSize)
			assert.Equal(t, tc.expectedWidth, geometry.Width)
			assert.Equal(t, tc.expectedHeight, geometry.Height)
			actualPlacements := make([]placement, len(geometry.Placements))
			for i, p := range geometry.Placements {
				actualPlacements[i] = placement{
					name:     p.Tile.Name,
					startCol: p.StartCol,
					startRow: p.StartRow,
				}
			}
			assert.Equal(t, tc.expectedPlacements, actualPlacements)
		})
	}
}

func TestResolveGeometry_FractionalCellSize(t *testing.T) {
	a := newTile("A", 10, 10, 0, 0, 0.1, constant(1))
	b := newTile("B", 10, 10, 1, 0, 0.1, constant(1))
	c := newTile("C", 10, 10, 0.3, 1, 0.1, constant(1))
	geometry, err := heightmap.ResolveGeometry([]*heightmap.Tile{a, b, c})
	assert.NoError(t, err)
	assert.Equal(t, 20, geometry.Width)
	assert.Equal(t, 20, geometry.Height)
	assert.Equal(t, 3, geometry.Placements[2].StartCol)
	assert.Equal(t, 0, geometry.Placements[2].StartRow)
	assert.Equal(t, 10, geometry.Placements[1].StartCol)
	assert.Equal(t, 10, geometry.Placements[1].StartRow)
}

func TestResolveGeometry_Errors(t *testing.T) {
	_, err := heightmap.ResolveGeometry(nil)
	var emptyErr *heightmap.EmptyTileSetError
	assert.True(t, errors.As(err, &emptyErr))
	assert.IsError(t, err, heightmap.ErrGeometry)

	a := newTile("A", 200, 200, 0, 0, 50, constant(1))
	b := newTile("B", 400, 400, 10000, 0, 25, constant(1))
	_, err = heightmap.ResolveGeometry([]*heightmap.Tile{a, b})
	var resolutionErr *heightmap.InconsistentResolutionError
	assert.True(t, errors.As(err, &resolutionErr))
	assert.Equal(t, &heightmap.InconsistentResolutionError{
		Expected: 50,
		Actual:   25,
		Tile:     "B",
	}, resolutionErr)
	assert.IsError(t, err, heightmap.ErrGeometry)
	assert.False(t, errors.Is(err, heightmap.ErrFormat))
}

func TestResolveGeometry_InvalidGeometry(t *testing.T) {
	a := newTile("A", 2, 2, 0, 0, 50, constant(1))
	for _, tc := range []struct {
		name     string
		tiles    []*heightmap.Tile
		expected *heightmap.InvalidGeometryError
	}{
		{
			name:     "nan_corner",
			tiles:    []*heightmap.Tile{a, newTile("B", 2, 2, math.NaN(), 0, 50, constant(1))},
			expected: &heightmap.InvalidGeometryError{Tile: "B", Reason: "corner must be finite"},
		},
		{
			name:     "infinite_corner",
			tiles:    []*heightmap.Tile{newTile("B", 2, 2, 0, math.Inf(1), 50, constant(1)), a},
			expected: &heightmap.InvalidGeometryError{Tile: "B", Reason: "corner must be finite"},
		},
		{
			name:     "nan_cell_size",
			tiles:    []*heightmap.Tile{newTile("B", 2, 2, 0, 0, math.NaN(), constant(1))},
			expected: &heightmap.InvalidGeometryError{Tile: "B", Reason: "cell size must be positive and finite"},
		},
		{
			name:     "negative_cell_size",
			tiles:    []*heightmap.Tile{newTile("B", 2, 2, 0, 0, -50, constant(1))},
			expected: &heightmap.InvalidGeometryError{Tile: "B", Reason: "cell size must be positive and finite"},
		},
		{
			name:     "distant_tiles",
			tiles:    []*heightmap.Tile{a, newTile("B", 2, 2, 1e12-100, 0, 50, constant(1))},
			expected: &heightmap.InvalidGeometryError{Reason: "2e+10x2 raster exceeds 1073741824 cells"},
		},
		{
			name:  "overflowing_extent",
			tiles: []*heightmap.Tile{newTile("B", 2, 2, -math.MaxFloat64, 0, 50, constant(1)), newTile("C", 2, 2, math.MaxFloat64/2, 0, 50, constant(1))},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := heightmap.ResolveGeometry(tc.tiles)
			assert.IsError(t, err, heightmap.ErrGeometry)
			var geometryErr *heightmap.InvalidGeometryError
			assert.True(t, errors.As(err, &geometryErr))
			if tc.expected != nil {
				assert.Equal(t, tc.expected, geometryErr)
			}
		})
	}
}
