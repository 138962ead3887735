// Command sitesearch streams site content from the page, file and list
// stores as text.
package main

import (
	"os"

	"github.com/custodia-labs/sitesearch/internal/adapters/driven/config/file"
	"github.com/custodia-labs/sitesearch/internal/adapters/driving/cli"
	"github.com/custodia-labs/sitesearch/internal/logger"
)

var version = "dev"

func main() {
	if err := file.LoadEnv(".env"); err != nil {
		logger.Warn("loading .env: %v", err)
	}

	cli.SetVersion(version)
	if err := cli.Execute(cli.App{OpenConfig: openConfig, Build: build}); err != nil {
		os.Exit(1)
	}
}
