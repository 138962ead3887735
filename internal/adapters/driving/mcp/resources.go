package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sitesearch/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for sitesearch resources.
	uriScheme = "sitesearch://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "sites",
		Name:        "sites",
		Description: "Names of all published sites",
		MIMEType:    "application/json",
	}, s.handleSitesResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "sites/{name}/text",
		Name:        "site-text",
		Description: "The whole text of a site, pages first, then files and lists",
		MIMEType:    "text/plain",
	}, s.handleSiteTextResource)
}

// handleSitesResource returns the published site names as JSON.
func (s *Server) handleSitesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	names, err := s.ports.Content.AvailableSites(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing sites: %w", err)
	}
	if names == nil {
		names = []string{}
	}

	data, err := json.MarshalIndent(names, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling sites: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleSiteTextResource returns a site's flattened text.
func (s *Server) handleSiteTextResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	name := extractSiteName(req.Params.URI)
	if name == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	text, err := s.ports.Content.FlattenSite(ctx, name)
	if errors.Is(err, domain.ErrSiteNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("flattening site: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     text,
		}},
	}, nil
}

// extractSiteName extracts the site name from a URI like sitesearch://sites/{name}/text.
func extractSiteName(uri string) string {
	const prefix = uriScheme + "sites/"
	const suffix = "/text"

	if !strings.HasPrefix(uri, prefix) || !strings.HasSuffix(uri, suffix) {
		return ""
	}
	name := strings.TrimSuffix(strings.TrimPrefix(uri, prefix), suffix)
	if strings.Contains(name, "/") {
		return ""
	}
	return name
}
