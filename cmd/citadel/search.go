package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmcdole/citadel/internal/tui/styles"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search cached characters by name",
	Long: `Fuzzy-search the characters in the local cache. Works offline; names
with small typos still match.`,
	Args: cobra.MinimumNArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		results := a.service.Search(strings.Join(args, " "), searchLimit)
		out := cmd.OutOrStdout()
		if len(results) == 0 {
			fmt.Fprintln(out, styles.DimStyle.Render("No cached characters match"))
			return nil
		}
		fmt.Fprintln(out, searchTable(results))
		return nil
	}),
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "l", 20, "maximum number of results (0 for all)")
	rootCmd.AddCommand(searchCmd)
}
