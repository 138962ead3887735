package cli

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

const maskedValue = "********"

var settingsReveal bool

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change the values in config.toml.

Keys use dot notation, for example:
  stores.pages.driver    postgres or sqlite
  stores.pages.dsn_env   environment variable holding the DSN
  blob.base_url          origin every file link is relative to
  cache.backend          memory or redis`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a setting",
	Long: `Sets a key in config.toml. Integers, decimals and true/false are
stored as such; anything else is stored as a string.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

func init() {
	settingsShowCmd.Flags().BoolVar(&settingsReveal, "reveal", false, "show connection strings unmasked")
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	cmd.Printf("Config file: %s\n\n", cfg.Path())

	keys := cfg.Keys()
	if len(keys) == 0 {
		cmd.Println("No settings. Defaults apply.")
		return nil
	}
	slices.Sort(keys)

	for _, key := range keys {
		value, _ := cfg.Get(key)
		shown := fmt.Sprint(value)
		if isSecretKey(key) && !settingsReveal {
			shown = maskedValue
		}
		cmd.Printf("  %s = %s\n", key, shown)
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	key := strings.TrimSpace(args[0])
	if key == "" {
		return errors.New("key must not be empty")
	}

	if err := cfg.Set(key, parseValue(args[1])); err != nil {
		return fmt.Errorf("saving setting: %w", err)
	}

	cmd.Printf("Set %s\n", key)
	return nil
}

// parseValue converts a command line value into a TOML scalar.
func parseValue(raw string) any {
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}

// isSecretKey reports whether a key may hold credentials.
func isSecretKey(key string) bool {
	return strings.HasSuffix(key, ".dsn") || strings.HasSuffix(key, "redis_addr")
}
