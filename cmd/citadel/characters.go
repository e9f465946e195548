package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmcdole/citadel/internal/domain"
	"github.com/mmcdole/citadel/internal/tui/styles"
	"github.com/mmcdole/citadel/internal/views"
)

var charactersFlags struct {
	pages   int
	name    string
	status  string
	species string
}

var charactersCmd = &cobra.Command{
	Use:     "characters",
	Aliases: []string{"ls"},
	Short:   "List characters from the catalog",
	Long: `List characters page by page. Every fetched page is written to the local
cache; when the catalog is unreachable the cached characters are shown instead.`,
	Args: cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		filter := domain.CharacterFilter{
			Name:    charactersFlags.name,
			Species: charactersFlags.species,
		}
		if charactersFlags.status != "" {
			filter.Status = domain.ParseStatus(charactersFlags.status)
		}

		list := views.NewCharacterList(a.service, a.bus, a.loop, a.logger)
		defer list.Close()

		err := withSpinner(cmd.ErrOrStderr(), "Fetching characters...", func() error {
			if err := list.ApplyFilter(ctx, filter); err != nil {
				return err
			}
			for i := 1; i < charactersFlags.pages; i++ {
				if !list.Snapshot().HasMorePages {
					break
				}
				if err := list.LoadMore(ctx); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return err
		}

		snap := list.Snapshot()
		out := cmd.OutOrStdout()
		if snap.State.Offline {
			fmt.Fprintln(out, styles.BannerStyle.Render("Offline: showing cached characters"))
		}
		if snap.State.Phase == views.PhaseEmpty {
			fmt.Fprintln(out, styles.DimStyle.Render("No characters found"))
			return nil
		}
		fmt.Fprintln(out, characterTable(snap.Characters))
		fmt.Fprintln(out, styles.DimStyle.Render(fmt.Sprintf("page %d of %d", snap.CurrentPage, snap.TotalPages)))
		return nil
	}),
}

func init() {
	f := charactersCmd.Flags()
	f.IntVarP(&charactersFlags.pages, "pages", "p", 1, "number of pages to load")
	f.StringVarP(&charactersFlags.name, "name", "n", "", "filter by name (substring)")
	f.StringVarP(&charactersFlags.status, "status", "s", "", "filter by status: alive, dead or unknown")
	f.StringVar(&charactersFlags.species, "species", "", "filter by species")
	rootCmd.AddCommand(charactersCmd)
}
