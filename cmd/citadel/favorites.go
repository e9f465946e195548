package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmcdole/citadel/internal/tui/styles"
	"github.com/mmcdole/citadel/internal/views"
)

var favoriteYes bool

var favoriteCmd = &cobra.Command{
	Use:   "favorite <id>",
	Short: "Toggle a character's favorite flag",
	Long: `Mark a cached character as favorite, or remove it from favorites.
Removing asks for confirmation unless --yes is given.`,
	Args: cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "character")
		if err != nil {
			return err
		}
		c, ok := a.service.GetCachedCharacter(id)
		if !ok {
			return fmt.Errorf("character %d is not cached yet; list it with `citadel characters` first", id)
		}

		detail := views.NewDetail(c, a.service, a.bus, a.loop, a.logger)
		defer detail.Close()

		toggle, err := detail.ToggleFavorite(favoriteYes)
		if errors.Is(err, views.ErrConfirmRemoval) {
			if !confirm(cmd, fmt.Sprintf("Remove %s from favorites? [y/N] ", c.Name)) {
				return nil
			}
			toggle, err = detail.ToggleFavorite(true)
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if toggle.IsFavorite {
			fmt.Fprintf(out, "%s Added %s to favorites\n", styles.FavoriteStar, c.Name)
		} else {
			fmt.Fprintf(out, "%s Removed %s from favorites\n", styles.PlainStar, c.Name)
		}
		return nil
	}),
}

var favoritesCmd = &cobra.Command{
	Use:   "favorites",
	Short: "List favorite characters (requires your PIN)",
	Long: `Unlock the favorites with your PIN and list them by name.
Set a PIN first with ` + "`citadel pin`" + `.`,
	Args: cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		if !a.cfg.HasPIN() {
			return errors.New("no PIN set; run `citadel pin` first")
		}

		favs := views.NewFavoritesList(a.service, a.bus, a.session, a.cfg.Session.Reason, a.loop, a.logger)
		defer favs.Close()

		if err := favs.Unlock(ctx); err != nil {
			return err
		}

		snap := favs.Snapshot()
		out := cmd.OutOrStdout()
		if len(snap.Favorites) == 0 {
			fmt.Fprintln(out, styles.DimStyle.Render("No favorites yet"))
			return nil
		}
		fmt.Fprintln(out, characterTable(snap.Favorites))
		return nil
	}),
}

func init() {
	favoriteCmd.Flags().BoolVarP(&favoriteYes, "yes", "y", false, "remove without asking")
	rootCmd.AddCommand(favoriteCmd)
	rootCmd.AddCommand(favoritesCmd)
}
