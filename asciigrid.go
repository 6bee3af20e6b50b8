package heightmap

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

const (
	headerLines   = 5
	maxLineLength = 16 << 20 // 16MB.
)

// A lineReader returns lines and tracks line numbers.
type lineReader struct {
	scanner    *bufio.Scanner
	lineNumber int
}

func newLineReader(r io.Reader) *lineReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64<<10), maxLineLength)
	return &lineReader{
		scanner: scanner,
	}
}

// next returns the next line with surrounding whitespace removed. At the end
// of input it returns false and the scanner's error, if any.
func (lr *lineReader) next() (string, bool, error) {
	if !lr.scanner.Scan() {
		return "", false, lr.scanner.Err()
	}
	lr.lineNumber++
	return strings.TrimSpace(lr.scanner.Text()), true, nil
}

// ParseTile parses an ASCII grid from r.
//
// The first five lines are ncols, nrows, xllcorner, yllcorner, and cellsize
// and are matched by position, not by key. An optional nodata_value line may
// follow. The remaining nrows lines each contain ncols values. Nodata values
// are recorded but not applied; see [NodataPolicy].
func ParseTile(r io.Reader) (*Tile, error) {
	lr := newLineReader(r)

	var header [headerLines]string
	for i := range headerLines {
		line, ok, err := lr.next()
		switch {
		case err != nil:
			return nil, err
		case !ok:
			return nil, &MalformedHeaderError{
				Line:   lr.lineNumber + 1,
				Reason: "unexpected end of input",
			}
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, &MalformedHeaderError{
				Line:   lr.lineNumber,
				Reason: fmt.Sprintf("expected key and value, got %d fields", len(fields)),
			}
		}
		header[i] = fields[1]
	}

	tile := &Tile{}
	var err error
	if tile.Columns, err = parseDimension(header[0]); err != nil {
		return nil, &MalformedHeaderError{Line: 1, Reason: err.Error()}
	}
	if tile.Rows, err = parseDimension(header[1]); err != nil {
		return nil, &MalformedHeaderError{Line: 2, Reason: err.Error()}
	}
	for i, ptr := range []*float64{&tile.CornerX, &tile.CornerY, &tile.CellSize} {
		if *ptr, err = parseFinite(header[2+i]); err != nil {
			return nil, &MalformedHeaderError{Line: 3 + i, Reason: err.Error()}
		}
	}
	if tile.CellSize <= 0 {
		return nil, &MalformedHeaderError{Line: 5, Reason: "cell size must be positive"}
	}

	// Storage grows as rows are read so that a header claiming huge
	// dimensions cannot force a huge allocation.
	for row := 0; row < tile.Rows; {
		line, ok, err := lr.next()
		switch {
		case err != nil:
			return nil, err
		case !ok:
			return nil, &MalformedHeaderError{
				Line:   lr.lineNumber + 1,
				Reason: fmt.Sprintf("expected %d rows, got %d", tile.Rows, row),
			}
		}

		fields := strings.Fields(line)

		// The optional nodata_value header line can only appear directly
		// after the fixed header.
		if row == 0 && lr.lineNumber == headerLines+1 && len(fields) == 2 && !isNumber(fields[0]) {
			noDataValue, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				return nil, &MalformedHeaderError{Line: lr.lineNumber, Reason: err.Error()}
			}
			tile.NoDataValue = noDataValue
			tile.HasNoDataValue = true
			continue
		}

		values, err := parseRow(fields, tile.Columns, lr.lineNumber)
		if err != nil {
			return nil, err
		}
		tile.Values = append(tile.Values, values)
		row++
	}

	for {
		line, ok, err := lr.next()
		switch {
		case err != nil:
			return nil, err
		case !ok:
			return tile, nil
		case line != "":
			return nil, fmt.Errorf("line %d: %w", lr.lineNumber, ErrTrailingData)
		}
	}
}

// ParseTileBytes parses an ASCII grid from data.
func ParseTileBytes(data []byte) (*Tile, error) {
	return ParseTile(bytes.NewReader(data))
}

// parseRow parses fields, which must contain exactly columns values.
func parseRow(fields []string, columns, lineNumber int) ([]float64, error) {
	if len(fields) != columns {
		return nil, &RowLengthError{
			Line:     lineNumber,
			Expected: columns,
			Actual:   len(fields),
		}
	}
	values := make([]float64, columns)
	for i, field := range fields {
		value, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, &RowLengthError{
				Line:     lineNumber,
				Expected: columns,
				Actual:   i,
				Token:    field,
			}
		}
		values[i] = value
	}
	return values, nil
}

func parseDimension(s string) (int, error) {
	n, err := strconv.Atoi(s)
	switch {
	case err != nil:
		return 0, err
	case n <= 0:
		return 0, fmt.Errorf("%d: dimension must be positive", n)
	default:
		return n, nil
	}
}

// parseFinite parses s as a finite float.
func parseFinite(s string) (float64, error) {
	value, err := strconv.ParseFloat(s, 64)
	switch {
	case err != nil:
		return 0, err
	case math.IsNaN(value) || math.IsInf(value, 0):
		return 0, fmt.Errorf("%s: value must be finite", s)
	default:
		return value, nil
	}
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
