package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

const squaresPerLine = 4

func newSquaresCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "squares",
		Short: "List OS National Grid squares",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			squares, err := a.catalog().Squares(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, "OS National Grid squares:")
			for i := 0; i < len(squares); i += squaresPerLine {
				fmt.Fprintln(w, strings.Join(squares[i:min(i+squaresPerLine, len(squares))], ", "))
			}
			return nil
		},
	}
}

func newTilesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tiles square",
		Short: "List the tiles in an OS National Grid square",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := a.catalog().SquareTiles(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
