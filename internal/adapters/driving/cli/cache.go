package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the blob cache",
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove stale and corrupt cache entries",
	Long: `Removes leftover temporary files and unreadable entries from the
durable file cache, then evicts the least recently used entries until the
cache fits cache.max_bytes.`,
	Args: cobra.NoArgs,
	RunE: runCachePrune,
}

func init() {
	cacheCmd.AddCommand(cachePruneCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCachePrune(cmd *cobra.Command, _ []string) error {
	svc, err := loadServices()
	if err != nil {
		return err
	}
	if svc.Cache == nil {
		return errors.New("cache service not configured")
	}

	removed, err := svc.Cache.PruneCache()
	if err != nil {
		return fmt.Errorf("pruning cache: %w", err)
	}

	cmd.Printf("Removed %d cache entries.\n", removed)
	return nil
}
