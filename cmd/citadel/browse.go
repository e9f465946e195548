package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/mmcdole/citadel/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the catalog interactively",
	Args:  cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		model := tui.NewModel(tui.Deps{
			Service: a.service,
			Bus:     a.bus,
			Session: a.session,
			UI:      a.loop,
			Reason:  a.cfg.Session.Reason,
			Open:    a.launcher.Open,
			Logger:  a.logger,
		})
		defer model.Close()

		p := tea.NewProgram(
			model,
			tea.WithAltScreen(),
			tea.WithReportFocus(),
			tea.WithContext(ctx),
		)

		a.logger.Info("starting TUI")
		if _, err := p.Run(); err != nil {
			a.logger.Error("TUI error", "error", err)
			return fmt.Errorf("TUI error: %w", err)
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(browseCmd)
}
