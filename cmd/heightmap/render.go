package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/twpayne/go-heightmap"
)

func newRenderCmd(a *app) *cobra.Command {
	var square string

	renderCmd := &cobra.Command{
		Use:   "render [tile...]",
		Short: "Render tiles as a grayscale height map",
		Long: `Render composites the given tiles, or every tile in the square given with
--square, and writes a grayscale height map. The output format is taken from
--format or from the output file's extension (.png, .tif, or .tiff).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			catalog := a.catalog()

			names, err := selectTiles(cmd, catalog, square, args)
			if err != nil {
				return err
			}

			builder, err := a.builder(catalog)
			if err != nil {
				return err
			}

			var degenerateErr *heightmap.DegenerateRangeError
			raster, err := builder.Build(ctx, names)
			switch {
			case errors.As(err, &degenerateErr):
				a.logger.WarnContext(ctx, "flat height map, writing uniform image", "value", degenerateErr.Value)
				if raster, err = builder.Composite(ctx, names); err != nil {
					return err
				}
				raster.Fill(0)
			case err != nil:
				return err
			}

			format := a.cfg.OutputFormat
			if format == "" {
				format = formatFromPath(a.cfg.OutputPath)
			}
			if err := writeImage(a.cfg.OutputPath, format, raster); err != nil {
				return err
			}
			a.logger.InfoContext(ctx, "wrote height map",
				"path", a.cfg.OutputPath,
				"format", format,
				"width", raster.Width,
				"height", raster.Height,
			)
			return nil
		},
	}

	renderCmd.Flags().StringVarP(&square, "square", "s", "", "render every tile in this square")
	renderCmd.Flags().StringP("output", "o", "heightmap.png", "output file")
	renderCmd.Flags().String("format", "", "output format: png or tiff")

	return renderCmd
}

// selectTiles returns the tiles named by args or, if square is set, all the
// tiles in square.
func selectTiles(cmd *cobra.Command, catalog *heightmap.Terr50Catalog, square string, args []string) ([]string, error) {
	switch {
	case square != "" && len(args) > 0:
		return nil, errors.New("tiles and --square are mutually exclusive")
	case square != "":
		names, err := catalog.SquareTiles(cmd.Context(), square)
		if err != nil {
			return nil, err
		}
		if len(names) == 0 {
			return nil, fmt.Errorf("%s: no tiles in square", square)
		}
		return names, nil
	case len(args) > 0:
		return args, nil
	default:
		return nil, errors.New("no tiles selected")
	}
}
