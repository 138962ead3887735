package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sitesearch/internal/core/domain"
	"github.com/custodia-labs/sitesearch/internal/logger"
)

var (
	contentJSON  bool
	contentType  string
	contentLimit int
)

var contentCmd = &cobra.Command{
	Use:   "content [site]",
	Short: "Stream a site's content",
	Long: `Streams every page, file and list of a site as text records.
Pages come first, then files, then lists.

With --json each record is written as one JSON line:
  {"content": "...", "metadata": {...}, "source": "page"}`,
	Args: cobra.ExactArgs(1),
	RunE: runContent,
}

func init() {
	contentCmd.Flags().BoolVar(&contentJSON, "json", false, "output records as JSON lines")
	contentCmd.Flags().StringVarP(&contentType, "type", "t", "", "only output records of this type (page, file, list)")
	contentCmd.Flags().IntVarP(&contentLimit, "limit", "n", 0, "maximum number of records (0 = all)")
	rootCmd.AddCommand(contentCmd)
}

// contentLine is one NDJSON output line.
type contentLine struct {
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
	Source   string         `json:"source"`
}

func runContent(cmd *cobra.Command, args []string) error {
	filter := domain.ContentType(contentType)
	if filter != "" && !filter.IsValid() {
		return fmt.Errorf("invalid type %q: must be page, file or list", contentType)
	}

	svc, err := loadServices()
	if err != nil {
		return err
	}

	records, err := svc.Content.SiteContent(cmd.Context(), args[0])
	if errors.Is(err, domain.ErrSiteNotFound) {
		return fmt.Errorf("site %q not found", args[0])
	}
	if err != nil {
		return fmt.Errorf("reading site: %w", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetEscapeHTML(false)

	count := 0
	for rec, err := range records {
		if err != nil {
			logger.Warn("%v", err)
			continue
		}
		if filter != "" && rec.Type() != filter {
			continue
		}

		if contentJSON {
			line := contentLine{Content: rec.Content, Metadata: rec.Metadata, Source: string(rec.Type())}
			if err := enc.Encode(line); err != nil {
				return fmt.Errorf("writing record: %w", err)
			}
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "--- %s %d ---\n%s\n\n", rec.Type(), rec.ID(), rec.Content)
		}

		count++
		if contentLimit > 0 && count >= contentLimit {
			break
		}
	}

	logger.Info("wrote %d records", count)
	return nil
}
