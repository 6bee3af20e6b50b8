package heightmap_test

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/twpayne/go-heightmap"
)

// newTile returns a new tile whose values are given by f.
func newTile(name string, columns, rows int, cornerX, cornerY, cellSize float64, f func(col, row int) float64) *heightmap.Tile {
	values := make([][]float64, rows)
	for row := range rows {
		values[row] = make([]float64, columns)
		for col := range columns {
			values[row][col] = f(col, row)
		}
	}
	return &heightmap.Tile{
		Name:     name,
		Columns:  columns,
		Rows:     rows,
		CornerX:  cornerX,
		CornerY:  cornerY,
		CellSize: cellSize,
		Values:   values,
	}
}

// constant returns a function that always returns value.
func constant(value float64) func(int, int) float64 {
	return func(int, int) float64 {
		return value
	}
}

// formatTile returns the ASCII grid representation of tile.
func formatTile(tile *heightmap.Tile) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "ncols %d\n", tile.Columns)
	fmt.Fprintf(&sb, "nrows %d\n", tile.Rows)
	fmt.Fprintf(&sb, "xllcorner %s\n", strconv.FormatFloat(tile.CornerX, 'f', -1, 64))
	fmt.Fprintf(&sb, "yllcorner %s\n", strconv.FormatFloat(tile.CornerY, 'f', -1, 64))
	fmt.Fprintf(&sb, "cellsize %s\n", strconv.FormatFloat(tile.CellSize, 'f', -1, 64))
	if tile.HasNoDataValue {
		fmt.Fprintf(&sb, "nodata_value %s\n", strconv.FormatFloat(tile.NoDataValue, 'f', -1, 64))
	}
	for _, row := range tile.Values {
		for col, value := range row {
			if col > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(strconv.FormatFloat(value, 'f', -1, 64))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
