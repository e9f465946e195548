package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmcdole/citadel/internal/tui/styles"
	"github.com/mmcdole/citadel/internal/views"
)

var episodesAll string

var episodesCmd = &cobra.Command{
	Use:   "episodes <character-id>",
	Short: "List the episodes a character appears in",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "character")
		if err != nil {
			return err
		}

		c, ok := a.service.GetCachedCharacter(id)
		if !ok {
			err = withSpinner(cmd.ErrOrStderr(), "Fetching character...", func() error {
				c, err = a.service.GetCharacter(ctx, id)
				return err
			})
			if err != nil {
				return err
			}
		}

		detail := views.NewDetail(c, a.service, a.bus, a.loop, a.logger)
		defer detail.Close()

		err = withSpinner(cmd.ErrOrStderr(), "Fetching episodes...", func() error {
			return detail.LoadEpisodes(ctx)
		})
		if err != nil {
			return err
		}

		switch episodesAll {
		case "":
		case "watched":
			err = detail.MarkAllWatched()
		case "unwatched":
			err = detail.UnmarkAllWatched()
		default:
			err = fmt.Errorf("--mark-all must be watched or unwatched, got %q", episodesAll)
		}
		if err != nil {
			return err
		}

		snap := detail.Snapshot()
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, styles.TitleStyle.Render(c.Name))
		if snap.EpisodesState.Phase == views.PhaseEmpty {
			fmt.Fprintln(out, styles.DimStyle.Render("No episodes"))
			return nil
		}
		fmt.Fprintln(out, episodeTable(snap.Episodes))
		p := snap.Progress
		fmt.Fprintf(out, "%s %d/%d watched\n", styles.ProgressBar(p.Ratio(), 24), p.Watched, p.Total)
		return nil
	}),
}

var watchCmd = &cobra.Command{
	Use:   "watch <episode-id>",
	Short: "Mark an episode watched",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		return setWatched(a, cmd, args[0], true)
	}),
}

var unwatchCmd = &cobra.Command{
	Use:   "unwatch <episode-id>",
	Short: "Clear an episode's watched mark",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		return setWatched(a, cmd, args[0], false)
	}),
}

func setWatched(a *app, cmd *cobra.Command, arg string, watched bool) error {
	id, err := parseID(arg, "episode")
	if err != nil {
		return err
	}
	if watched {
		err = a.service.MarkWatched(id)
	} else {
		err = a.service.UnmarkWatched(id)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s episode %d\n", styles.Watched(watched), id)
	return nil
}

func init() {
	episodesCmd.Flags().StringVar(&episodesAll, "mark-all", "", "mark every listed episode: watched or unwatched")
	rootCmd.AddCommand(episodesCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(unwatchCmd)
}

