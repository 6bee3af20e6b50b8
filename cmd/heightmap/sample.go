package main

import (
	"fmt"
	"math"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/twpayne/go-heightmap"
)

func newSampleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sample easting northing tile...",
		Short: "Print the interpolated elevation at a point",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return err
			}
			y, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return err
			}

			builder, err := a.builder(a.catalog())
			if err != nil {
				return err
			}
			elevations, err := builder.Elevation(cmd.Context(), args[2:], []heightmap.Coord{{X: x, Y: y}})
			if err != nil {
				return err
			}
			if math.IsNaN(elevations[0]) {
				return fmt.Errorf("%g,%g: no elevation", x, y)
			}
			fmt.Fprintln(cmd.OutOrStdout(), elevations[0])
			return nil
		},
	}
}
