package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmcdole/citadel/internal/adapter"
	"github.com/mmcdole/citadel/internal/adapter/biometric"
	"github.com/mmcdole/citadel/internal/tui/styles"
)

var pinCmd = &cobra.Command{
	Use:   "pin",
	Short: "Set the PIN that unlocks favorites",
	Long: fmt.Sprintf(`Prompt for a new PIN of at least %d digits and store its bcrypt hash
in the config file.`, biometric.MinPINLength),
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := adapter.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cfg.HasPIN() && !confirm(cmd, "A PIN is already set. Replace it? [y/N] ") {
			return nil
		}

		pin, err := biometric.ReadNewPIN(os.Stdin, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		hash, err := biometric.HashPIN(pin)
		if err != nil {
			return err
		}
		cfg.Auth.PINHash = hash

		path := configFile
		if path == "" {
			path = adapter.ConfigFilePath()
		}
		if err := adapter.SaveConfigTo(cfg, path); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), styles.SuccessStyle.Render("✓ PIN saved to "+path))
		return nil
	},
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the local cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete cached characters, favorites and watched marks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := adapter.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if !confirm(cmd, "This also deletes your favorites. Continue? [y/N] ") {
			return nil
		}
		if err := adapter.ClearCache(cfg); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), styles.SuccessStyle.Render("✓ Cache cleared"))
		return nil
	},
}

// confirm asks a yes/no question on the command's input
func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	reader := bufio.NewReader(cmd.InOrStdin())
	answer, err := reader.ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(pinCmd)
	rootCmd.AddCommand(cacheCmd)
}
