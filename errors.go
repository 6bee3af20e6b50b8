package heightmap

import (
	"errors"
	"fmt"
)

// Error categories. Parsing, geometry, and normalization errors each match
// exactly one of these with errors.Is.
var (
	ErrFormat   = errors.New("format error")
	ErrGeometry = errors.New("geometry error")
	ErrNumeric  = errors.New("numeric error")
)

var (
	ErrNoValidCells = fmt.Errorf("%w: no valid cells", ErrNumeric)
	ErrTrailingData = fmt.Errorf("%w: trailing data after last row", ErrFormat)
	errConcurrency  = errors.New("concurrency must be positive")
)

// A MalformedHeaderError is returned when a header line cannot be parsed or
// the input is shorter than the header says it should be.
type MalformedHeaderError struct {
	Line   int // One-based line number.
	Reason string
}

func (e *MalformedHeaderError) Error() string {
	return fmt.Sprintf("line %d: malformed header: %s", e.Line, e.Reason)
}

func (e *MalformedHeaderError) Is(target error) bool {
	return target == ErrFormat
}

// A RowLengthError is returned when a data row does not have the expected
// number of numeric tokens.
type RowLengthError struct {
	Line     int // One-based line number.
	Expected int
	Actual   int    // Number of valid values before Token.
	Token    string // First invalid token, if any.
}

func (e *RowLengthError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("line %d: expected %d values, got invalid value %q after %d", e.Line, e.Expected, e.Token, e.Actual)
	}
	return fmt.Sprintf("line %d: expected %d values, got %d", e.Line, e.Expected, e.Actual)
}

func (e *RowLengthError) Is(target error) bool {
	return target == ErrFormat
}

// An InconsistentResolutionError is returned when tiles have different cell
// sizes.
type InconsistentResolutionError struct {
	Expected float64
	Actual   float64
	Tile     string
}

func (e *InconsistentResolutionError) Error() string {
	if e.Tile != "" {
		return fmt.Sprintf("%s: inconsistent resolution: expected cell size %g, got %g", e.Tile, e.Expected, e.Actual)
	}
	return fmt.Sprintf("inconsistent resolution: expected cell size %g, got %g", e.Expected, e.Actual)
}

func (e *InconsistentResolutionError) Is(target error) bool {
	return target == ErrGeometry
}

// An EmptyTileSetError is returned when no tiles are given.
type EmptyTileSetError struct{}

func (e *EmptyTileSetError) Error() string {
	return "empty tile set"
}

func (e *EmptyTileSetError) Is(target error) bool {
	return target == ErrGeometry
}

// An InvalidGeometryError is returned when tiles cannot be placed on a
// raster, because a tile's georeferencing is not finite or because the
// bounding raster would be too large.
type InvalidGeometryError struct {
	Tile   string
	Reason string
}

func (e *InvalidGeometryError) Error() string {
	if e.Tile != "" {
		return fmt.Sprintf("%s: invalid geometry: %s", e.Tile, e.Reason)
	}
	return "invalid geometry: " + e.Reason
}

func (e *InvalidGeometryError) Is(target error) bool {
	return target == ErrGeometry
}

// An OutOfBoundsWriteError is returned when a tile would be written outside
// a composite raster. It indicates an internal inconsistency.
type OutOfBoundsWriteError struct {
	Tile     string
	StartCol int
	StartRow int
	Width    int
	Height   int
}

func (e *OutOfBoundsWriteError) Error() string {
	return fmt.Sprintf("%s: write at (%d, %d) outside %dx%d raster", e.Tile, e.StartCol, e.StartRow, e.Width, e.Height)
}

func (e *OutOfBoundsWriteError) Is(target error) bool {
	return target == ErrGeometry
}

// A DegenerateRangeError is returned when a raster's values are all equal and
// so cannot be rescaled.
type DegenerateRangeError struct {
	Value float64
}

func (e *DegenerateRangeError) Error() string {
	return fmt.Sprintf("degenerate range: all values equal %g", e.Value)
}

func (e *DegenerateRangeError) Is(target error) bool {
	return target == ErrNumeric
}
