package main

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/twpayne/go-heightmap"
)

// An app holds the state shared by all commands.
type app struct {
	cfg    *Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "heightmap",
		Short: "Composite OS Terrain 50 ASCII grid tiles into grayscale height maps",
		Long: `Heightmap merges OS Terrain 50 ASCII grid tiles into a single elevation
raster, rescales it to 8-bit intensities, and writes a grayscale image.

Configuration can be set with command-line flags, HEIGHTMAP_* environment
variables, or an HCL configuration file, in that order of precedence.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(cmd)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = newLogger(cmd.ErrOrStderr(), cfg.LogFormat, cfg.LogLevel)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg != nil && a.cfg.Metrics {
				return writeMetrics(cmd.ErrOrStderr())
			}
			return nil
		},
	}

	persistentFlags := rootCmd.PersistentFlags()
	persistentFlags.String("config", "", "HCL configuration file")
	persistentFlags.StringP("data-dir", "d", defaultDataDir, "OS Terrain 50 download directory")
	persistentFlags.Float64Slice("exclude", []float64{heightmap.Terr50NoDataValue}, "values to treat as missing")
	persistentFlags.Bool("use-header-nodata", false, "also treat each tile's nodata_value as missing")
	persistentFlags.IntP("concurrency", "j", 4, "number of tiles to parse concurrently")
	persistentFlags.String("log-format", "text", "log format: text or json")
	persistentFlags.String("log-level", "info", "log level: debug, info, warn, or error")
	persistentFlags.Bool("metrics", false, "write metrics to stderr on exit")

	rootCmd.AddCommand(
		newSquaresCmd(a),
		newTilesCmd(a),
		newRenderCmd(a),
		newSampleCmd(a),
	)

	return rootCmd
}

// catalog returns the tile catalog.
func (a *app) catalog() *heightmap.Terr50Catalog {
	return heightmap.NewTerr50Catalog(os.DirFS(a.cfg.DataDir))
}

// builder returns a new Builder reading from catalog.
func (a *app) builder(catalog heightmap.Catalog) (*heightmap.Builder, error) {
	tileSet, err := heightmap.NewTileSet(catalog, heightmap.WithConcurrency(a.cfg.Concurrency))
	if err != nil {
		return nil, err
	}
	return heightmap.NewBuilder(tileSet,
		heightmap.WithLogger(a.logger),
		heightmap.WithNodataPolicy(a.cfg.NodataPolicy()),
	)
}

func newLogger(w io.Writer, format string, level slog.Level) *slog.Logger {
	options := &slog.HandlerOptions{
		Level: level,
	}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, options))
	}
	return slog.New(slog.NewTextHandler(w, options))
}

// writeMetrics writes this program's metrics in the Prometheus text format.
func writeMetrics(w io.Writer) error {
	metricFamilies, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return err
	}
	for _, metricFamily := range metricFamilies {
		if !strings.HasPrefix(metricFamily.GetName(), "heightmap_") {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, metricFamily); err != nil {
			return err
		}
	}
	return nil
}
