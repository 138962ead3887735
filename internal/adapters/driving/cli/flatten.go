package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sitesearch/internal/core/domain"
)

var flattenCmd = &cobra.Command{
	Use:   "flatten [site]",
	Short: "Print a site's whole text",
	Long: `Prints the text of every record of a site, separated by blank lines.
File records are headed with "=== File: <link> ===".`,
	Args: cobra.ExactArgs(1),
	RunE: runFlatten,
}

func init() {
	rootCmd.AddCommand(flattenCmd)
}

func runFlatten(cmd *cobra.Command, args []string) error {
	svc, err := loadServices()
	if err != nil {
		return err
	}

	text, err := svc.Content.FlattenSite(cmd.Context(), args[0])
	if errors.Is(err, domain.ErrSiteNotFound) {
		return fmt.Errorf("site %q not found", args[0])
	}
	if err != nil {
		return fmt.Errorf("flattening site: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}
