package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/sitesearch/internal/adapters/driving/mcp"
	"github.com/custodia-labs/sitesearch/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

By default, the server communicates over stdio using JSON-RPC and can be
used with Claude Desktop and other MCP-compatible AI assistants.

Use --port to start an HTTP server instead, and --metrics-port to expose
Prometheus metrics alongside either transport.

Examples:
  # Stdio mode (default, for Claude Desktop)
  sitesearch mcp serve

  # HTTP mode with metrics
  sitesearch mcp serve --port 8080 --metrics-port 9090

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "sitesearch": {
        "command": "/path/to/sitesearch",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().Int("metrics-port", 0, "Prometheus metrics port (0 = disabled)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	metricsPort, err := cmd.Flags().GetInt("metrics-port")
	if err != nil {
		return fmt.Errorf("getting metrics-port flag: %w", err)
	}

	svc, err := loadServices()
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(&mcp.Ports{Content: svc.Content})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	if metricsPort > 0 {
		if svc.Metrics == nil {
			return errors.New("metrics not configured")
		}
		addr := fmt.Sprintf(":%d", metricsPort)
		logger.Info("metrics listening on http://localhost%s/metrics", addr)
		mux := http.NewServeMux()
		mux.Handle("/metrics", svc.Metrics)
		g.Go(func() error {
			return mcp.ServeHTTP(ctx, addr, mux)
		})
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://localhost%s\n", addr)
		g.Go(func() error {
			defer cancel()
			return server.RunHTTP(ctx, addr)
		})
	} else {
		// The metrics listener stops when the client closes stdio.
		g.Go(func() error {
			defer cancel()
			return server.Run(ctx)
		})
	}

	return g.Wait()
}
