package heightmap

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/maypok86/otter/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"
)

var (
	tileCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "heightmap_tile_cache_hits_total",
		Help: "The total number of hits on the parsed tile cache",
	})
	tileCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "heightmap_tile_cache_misses_total",
		Help: "The total number of misses on the parsed tile cache",
	})
	tileParseErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "heightmap_tile_parse_errors_total",
		Help: "The total number of tiles that could not be read or parsed",
	})
)

// A TileSet loads and parses tiles from a Catalog, caching parsed tiles.
// Cached tiles are shared and must not be modified.
type TileSet struct {
	catalog       Catalog
	concurrency   int
	tileCacheSize int
	tileCache     *otter.Cache[string, *Tile]
}

// A TileSetOption sets an option on a TileSet.
type TileSetOption func(*TileSet)

// NewTileSet returns a new TileSet that reads tiles from catalog.
func NewTileSet(catalog Catalog, options ...TileSetOption) (*TileSet, error) {
	s := &TileSet{
		catalog:       catalog,
		concurrency:   runtime.GOMAXPROCS(0),
		tileCacheSize: 64,
	}
	for _, option := range options {
		option(s)
	}
	if s.concurrency <= 0 {
		return nil, errConcurrency
	}

	var err error
	s.tileCache, err = otter.New(&otter.Options[string, *Tile]{
		MaximumSize: max(s.tileCacheSize, 1),
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// WithConcurrency sets the maximum number of tiles parsed concurrently.
func WithConcurrency(concurrency int) TileSetOption {
	return func(s *TileSet) {
		s.concurrency = concurrency
	}
}

// WithTileCacheSize sets the maximum number of parsed tiles cached.
func WithTileCacheSize(tileCacheSize int) TileSetOption {
	return func(s *TileSet) {
		s.tileCacheSize = tileCacheSize
	}
}

// Tile returns the named tile. Every successful call counts as either one
// cache hit or one cache miss, including callers that wait for another
// caller's load of the same tile.
func (s *TileSet) Tile(ctx context.Context, name string) (*Tile, error) {
	loaded := false
	tile, err := s.tileCache.Get(ctx, strings.ToUpper(name), otter.LoaderFunc[string, *Tile](func(ctx context.Context, key string) (*Tile, error) {
		loaded = true
		return s.loadTile(ctx, key)
	}))
	if err != nil {
		return nil, err
	}
	if !loaded {
		tileCacheHits.Inc()
	}
	return tile, nil
}

// Tiles returns the named tiles, in the same order as names. Tiles are
// parsed concurrently. If any tile cannot be loaded then Tiles returns the
// first error.
func (s *TileSet) Tiles(ctx context.Context, names []string) ([]*Tile, error) {
	tiles := make([]*Tile, len(names))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, name := range names {
		g.Go(func() error {
			tile, err := s.Tile(ctx, name)
			if err != nil {
				return err
			}
			tiles[i] = tile
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tiles, nil
}

// loadTile reads and parses the named tile.
func (s *TileSet) loadTile(ctx context.Context, name string) (*Tile, error) {
	tileCacheMisses.Inc()
	data, err := s.catalog.Open(ctx, name)
	if err != nil {
		tileParseErrors.Inc()
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	tile, err := ParseTileBytes(data)
	if err != nil {
		tileParseErrors.Inc()
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	tile.Name = name
	return tile, nil
}
