// Package cli implements the sitesearch command line interface.
package cli

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sitesearch/internal/core/ports/driving"
	"github.com/custodia-labs/sitesearch/internal/logger"
)

// ConfigEditor reads and edits the configuration file.
type ConfigEditor interface {
	Get(key string) (any, bool)
	Set(key string, value any) error
	Keys() []string
	Path() string
}

// Services holds the application services the commands call into.
type Services struct {
	Content driving.ContentService
	Cache   driving.CacheService

	// Metrics serves the Prometheus registry. Optional.
	Metrics http.Handler

	// Close releases everything the services hold. Optional.
	Close func() error
}

// App tells the CLI how to open configuration and build services.
// Both are called lazily so commands that need neither start instantly.
type App struct {
	OpenConfig func(configDir string) (ConfigEditor, error)
	Build      func(config ConfigEditor) (*Services, error)
}

var (
	version   = "dev"
	verbose   bool
	configDir string

	app      App
	config   ConfigEditor
	services *Services
)

var rootCmd = &cobra.Command{
	Use:   "sitesearch",
	Short: "Read site content as text",
	Long: `sitesearch aggregates the pages, files and lists of a site into one
stream of text records, ready for search indexing or AI assistants.

Configuration lives in ~/.sitesearch/config.toml.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug output")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.sitesearch)")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command and releases services on return.
func Execute(a App) error {
	app = a
	defer func() {
		if err := closeServices(); err != nil {
			logger.Warn("shutdown: %v", err)
		}
	}()
	return rootCmd.Execute()
}

// loadConfig opens the configuration on first use.
func loadConfig() (ConfigEditor, error) {
	if config != nil {
		return config, nil
	}
	if app.OpenConfig == nil {
		return nil, errors.New("configuration not available")
	}
	cfg, err := app.OpenConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("opening configuration: %w", err)
	}
	config = cfg
	return config, nil
}

// loadServices builds the services on first use.
func loadServices() (*Services, error) {
	if services != nil {
		return services, nil
	}
	if app.Build == nil {
		return nil, errors.New("services not configured")
	}
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	svc, err := app.Build(cfg)
	if err != nil {
		return nil, fmt.Errorf("starting: %w", err)
	}
	services = svc
	return services, nil
}

func closeServices() error {
	if services == nil || services.Close == nil {
		return nil
	}
	err := services.Close()
	services = nil
	return err
}
