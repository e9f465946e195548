package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmcdole/citadel/internal/domain"
	"github.com/mmcdole/citadel/internal/tui/styles"
)

var showOpen bool

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a single character",
	Long:  `Fetch one character from the catalog and show it with its local favorite flag.`,
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "character")
		if err != nil {
			return err
		}

		var c domain.Character
		err = withSpinner(cmd.ErrOrStderr(), "Fetching character...", func() error {
			c, err = a.service.GetCharacter(ctx, id)
			return err
		})
		if err != nil {
			cached, ok := a.service.GetCachedCharacter(id)
			if !ok {
				return err
			}
			a.logger.Warn("showing cached character", "id", id, "error", err)
			fmt.Fprintln(cmd.OutOrStdout(), styles.BannerStyle.Render("Offline: showing cached character"))
			c = cached
		}

		fmt.Fprintln(cmd.OutOrStdout(), characterCard(c))
		if showOpen {
			if c.ImageURL == "" {
				return fmt.Errorf("character %d has no image", id)
			}
			return a.launcher.Open(c.ImageURL)
		}
		return nil
	}),
}

func init() {
	showCmd.Flags().BoolVarP(&showOpen, "open", "o", false, "open the character image in the configured viewer")
	rootCmd.AddCommand(showCmd)
}
