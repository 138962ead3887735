package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var sitesJSON bool

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "List published sites",
	Args:  cobra.NoArgs,
	RunE:  runSites,
}

func init() {
	sitesCmd.Flags().BoolVar(&sitesJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(sitesCmd)
}

func runSites(cmd *cobra.Command, _ []string) error {
	svc, err := loadServices()
	if err != nil {
		return err
	}

	names, err := svc.Content.AvailableSites(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing sites: %w", err)
	}

	if sitesJSON {
		if names == nil {
			names = []string{}
		}
		data, err := json.Marshal(names)
		if err != nil {
			return fmt.Errorf("failed to marshal sites: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	if len(names) == 0 {
		cmd.Println("No published sites.")
		return nil
	}
	for _, name := range names {
		fmt.Fprintln(cmd.OutOrStdout(), name)
	}
	return nil
}
