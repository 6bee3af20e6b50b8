package heightmap

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
)

// A Catalog lists and reads tiles by name.
type Catalog interface {
	Names(ctx context.Context) ([]string, error)
	Open(ctx context.Context, name string) ([]byte, error)
}

// A TileNameFunc returns the tile name for a filename, and whether the file
// is a tile at all.
type TileNameFunc func(filename string) (string, bool)

// A TileFilenameFunc returns the filename of a tile.
type TileFilenameFunc func(fsys fs.FS, name string) (string, error)

// An FSCatalog is a Catalog of tile files in an fs.FS. Tile files may be
// plain ASCII grids (.asc), gzip-compressed ASCII grids (.asc.gz), or zip
// archives containing an ASCII grid (.zip).
type FSCatalog struct {
	fsys             fs.FS
	root             string
	tileNameFunc     TileNameFunc
	tileFilenameFunc TileFilenameFunc
}

// An FSCatalogOption sets an option on an FSCatalog.
type FSCatalogOption func(*FSCatalog)

// NewFSCatalog returns a new FSCatalog of the tile files in fsys.
func NewFSCatalog(fsys fs.FS, options ...FSCatalogOption) *FSCatalog {
	c := &FSCatalog{
		fsys:         fsys,
		root:         ".",
		tileNameFunc: DefaultTileName,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// WithRoot sets the directory within the fs.FS that contains tiles.
func WithRoot(root string) FSCatalogOption {
	return func(c *FSCatalog) {
		c.root = root
	}
}

func WithTileNameFunc(tileNameFunc TileNameFunc) FSCatalogOption {
	return func(c *FSCatalog) {
		c.tileNameFunc = tileNameFunc
	}
}

// WithTileFilenameFunc sets a function that locates tiles directly. Without
// it, tiles are located by walking the catalog.
func WithTileFilenameFunc(tileFilenameFunc TileFilenameFunc) FSCatalogOption {
	return func(c *FSCatalog) {
		c.tileFilenameFunc = tileFilenameFunc
	}
}

// DefaultTileName returns the base name of filename without its extensions,
// in upper case, for .asc, .asc.gz, and .zip files.
func DefaultTileName(filename string) (string, bool) {
	base := path.Base(filename)
	lowerBase := strings.ToLower(base)
	for _, ext := range []string{".asc.gz", ".asc", ".zip"} {
		if strings.HasSuffix(lowerBase, ext) {
			return strings.ToUpper(base[:len(base)-len(ext)]), true
		}
	}
	return "", false
}

// FS returns c's fs.FS.
func (c *FSCatalog) FS() fs.FS {
	return c.fsys
}

// Root returns c's root directory.
func (c *FSCatalog) Root() string {
	return c.root
}

// Names returns the sorted names of all tiles in c.
func (c *FSCatalog) Names(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.walk(ctx, func(filename, name string) bool {
		names = append(names, name)
		return true
	}); err != nil {
		return nil, err
	}
	slices.Sort(names)
	return slices.Compact(names), nil
}

// Open returns the contents of the ASCII grid of the named tile. If there is
// no such tile then it returns an error wrapping fs.ErrNotExist.
func (c *FSCatalog) Open(ctx context.Context, name string) ([]byte, error) {
	filename, err := c.tileFilename(ctx, name)
	if err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(c.fsys, filename)
	if err != nil {
		return nil, err
	}
	return decodeTileFile(filename, name, data)
}

// tileFilename returns the filename of the named tile.
func (c *FSCatalog) tileFilename(ctx context.Context, name string) (string, error) {
	if c.tileFilenameFunc != nil {
		return c.tileFilenameFunc(c.fsys, name)
	}
	var result string
	if err := c.walk(ctx, func(filename, tileName string) bool {
		if strings.EqualFold(tileName, name) {
			result = filename
			return false
		}
		return true
	}); err != nil {
		return "", err
	}
	if result == "" {
		return "", fmt.Errorf("%s: %w", name, fs.ErrNotExist)
	}
	return result, nil
}

// walk calls f for each tile file in c until f returns false.
func (c *FSCatalog) walk(ctx context.Context, f func(filename, name string) bool) error {
	err := fs.WalkDir(c.fsys, c.root, func(filename string, dirEntry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if dirEntry.IsDir() {
			return nil
		}
		name, ok := c.tileNameFunc(filename)
		if !ok {
			return nil
		}
		if !f(filename, name) {
			return fs.SkipAll
		}
		return nil
	})
	return err
}

// decodeTileFile returns the ASCII grid in data, decompressing or extracting
// it if needed.
func decodeTileFile(filename, name string, data []byte) ([]byte, error) {
	lowerFilename := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lowerFilename, ".zip"):
		return extractZipMember(data, name)
	case strings.HasSuffix(lowerFilename, ".gz"):
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return io.ReadAll(r)
	default:
		return data, nil
	}
}

// extractZipMember returns the contents of the ASCII grid member of the zip
// archive in data. A member named after the tile is preferred over any other
// .asc member.
func extractZipMember(data []byte, name string) ([]byte, error) {
	zipReader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	var member *zip.File
	for _, zipFile := range zipReader.File {
		base := path.Base(zipFile.Name)
		if !strings.EqualFold(path.Ext(base), ".asc") {
			continue
		}
		if strings.EqualFold(base, name+".asc") {
			member = zipFile
			break
		}
		if member == nil {
			member = zipFile
		}
	}
	if member == nil {
		return nil, fmt.Errorf("%s: no .asc member in archive: %w", name, fs.ErrNotExist)
	}
	r, err := member.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
