package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmcdole/citadel/internal/domain"
	"github.com/mmcdole/citadel/internal/tui/styles"
	"github.com/mmcdole/citadel/internal/views"
)

var mapFavoritesOnly bool

var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "List map positions of cached characters",
	Args:  cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		pins := views.NewMap(a.service.Queries, a.bus, a.loop, a.logger)
		defer pins.Close()
		pins.Load()

		snap := pins.Snapshot()
		shown := snap.Pins
		if mapFavoritesOnly {
			shown = shown[:0:0]
			for _, p := range snap.Pins {
				if p.IsFavorite {
					shown = append(shown, p)
				}
			}
		}

		out := cmd.OutOrStdout()
		if len(shown) == 0 {
			fmt.Fprintln(out, styles.DimStyle.Render("No cached characters to place"))
			return nil
		}
		fmt.Fprintln(out, pinTable(shown))
		fmt.Fprintln(out, styles.DimStyle.Render(boundsLine(snap.Region)))
		return nil
	}),
}

func boundsLine(b domain.Bounds) string {
	return fmt.Sprintf("region %.4f..%.4f N, %.4f..%.4f E",
		b.MinLatitude, b.MaxLatitude, b.MinLongitude, b.MaxLongitude)
}

func init() {
	mapCmd.Flags().BoolVarP(&mapFavoritesOnly, "favorites", "f", false, "only favorite characters")
	rootCmd.AddCommand(mapCmd)
}
