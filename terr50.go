package heightmap

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
)

// Terr50Root is the directory of the OS Terrain 50 ASCII grid download that
// contains the national grid square directories.
const Terr50Root = "data"

const terr50Marker = "_OST50GRID_"

// A Terr50Catalog is a catalog of OS Terrain 50 tiles. Tiles are named by
// national grid reference, for example HP40, and stored as
// data/hp/hp40_OST50GRID_20160726.zip.
type Terr50Catalog struct {
	*FSCatalog
}

// NewTerr50Catalog returns a new Terr50Catalog of the OS Terrain 50 data in
// fsys.
func NewTerr50Catalog(fsys fs.FS, options ...FSCatalogOption) *Terr50Catalog {
	c := &Terr50Catalog{}
	c.FSCatalog = NewFSCatalog(fsys, slices.Concat(
		[]FSCatalogOption{
			WithRoot(Terr50Root),
			WithTileNameFunc(Terr50TileName),
			WithTileFilenameFunc(func(fsys fs.FS, name string) (string, error) {
				return terr50TileFilename(fsys, c.Root(), name)
			}),
		},
		options,
	)...)
	return c
}

// Terr50TileName returns the tile name of an OS Terrain 50 archive filename.
func Terr50TileName(filename string) (string, bool) {
	base := path.Base(filename)
	if !strings.EqualFold(path.Ext(base), ".zip") {
		return "", false
	}
	prefix, _, ok := strings.Cut(base, terr50Marker)
	if !ok || prefix == "" {
		return "", false
	}
	return strings.ToUpper(prefix), true
}

// Squares returns the sorted names of the national grid squares in c.
func (c *Terr50Catalog) Squares(ctx context.Context) ([]string, error) {
	dirEntries, err := fs.ReadDir(c.FS(), c.Root())
	if err != nil {
		return nil, err
	}
	var squares []string
	for _, dirEntry := range dirEntries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if dirEntry.IsDir() {
			squares = append(squares, strings.ToLower(dirEntry.Name()))
		}
	}
	slices.Sort(squares)
	return squares, nil
}

// SquareTiles returns the sorted names of the tiles in square. If there is
// no such square then it returns an error wrapping fs.ErrNotExist.
func (c *Terr50Catalog) SquareTiles(ctx context.Context, square string) ([]string, error) {
	dirEntries, err := fs.ReadDir(c.FS(), path.Join(c.Root(), strings.ToLower(square)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", square, err)
	}
	var names []string
	for _, dirEntry := range dirEntries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if dirEntry.IsDir() {
			continue
		}
		if name, ok := Terr50TileName(dirEntry.Name()); ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return slices.Compact(names), nil
}

// terr50TileFilename returns the filename of the newest archive of the named
// tile.
func terr50TileFilename(fsys fs.FS, root, name string) (string, error) {
	if len(name) < 3 {
		return "", fmt.Errorf("%s: invalid tile name: %w", name, fs.ErrNotExist)
	}
	lowerName := strings.ToLower(name)
	pattern := path.Join(root, lowerName[:2], lowerName+terr50Marker+"*.zip")
	filenames, err := fs.Glob(fsys, pattern)
	if err != nil {
		return "", err
	}
	if len(filenames) == 0 {
		return "", fmt.Errorf("%s: %w", name, fs.ErrNotExist)
	}
	// Archive names end with a YYYYMMDD date so the last is the newest.
	slices.Sort(filenames)
	return filenames[len(filenames)-1], nil
}
