package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sitesearch/internal/core/domain"
)

// Limits for the site_content tool.
const (
	defaultContentLimit = 20
	maxContentLimit     = 200
)

// ListSitesInput is the input schema for the list_sites tool.
type ListSitesInput struct{}

// ListSitesOutput is the output schema for the list_sites tool.
type ListSitesOutput struct {
	Sites []string `json:"sites"`
	Count int      `json:"count"`
}

// UseSiteInput is the input schema for the use_site tool.
type UseSiteInput struct {
	Site string `json:"site" jsonschema:"name of the site to use for later calls"`
}

// UseSiteOutput is the output schema for the use_site tool.
type UseSiteOutput struct {
	Site string `json:"site"`
}

// SiteContentInput is the input schema for the site_content tool.
type SiteContentInput struct {
	Site  string `json:"site,omitempty" jsonschema:"site name (defaults to the site chosen with use_site)"`
	Type  string `json:"type,omitempty" jsonschema:"only return records of this type: page, file or list"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of records to return (default 20, max 200)"`
}

// SiteContentOutput is the output schema for the site_content tool.
type SiteContentOutput struct {
	Site    string         `json:"site"`
	Records []RecordOutput `json:"records"`
	Count   int            `json:"count"`
	Errors  []string       `json:"errors,omitempty"`
}

// RecordOutput represents a single content record.
type RecordOutput struct {
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
}

// ResetSessionInput is the input schema for the reset_session tool.
type ResetSessionInput struct{}

// ResetSessionOutput is the output schema for the reset_session tool.
type ResetSessionOutput struct {
	Reset bool `json:"reset"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_sites",
		Description: "List the names of all published sites",
	}, s.handleListSites)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "use_site",
		Description: "Select the site that later site_content calls read from",
	}, s.handleUseSite)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "site_content",
		Description: "Read a site's pages, files and lists as text records",
	}, s.handleSiteContent)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "reset_session",
		Description: "Forget the site selected with use_site",
	}, s.handleResetSession)
}

// handleListSites handles the list_sites tool invocation.
func (s *Server) handleListSites(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListSitesInput,
) (*mcp.CallToolResult, ListSitesOutput, error) {
	names, err := s.ports.Content.AvailableSites(ctx)
	if err != nil {
		return nil, ListSitesOutput{}, err
	}
	if names == nil {
		names = []string{}
	}
	return nil, ListSitesOutput{Sites: names, Count: len(names)}, nil
}

// handleUseSite handles the use_site tool invocation.
func (s *Server) handleUseSite(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input UseSiteInput,
) (*mcp.CallToolResult, UseSiteOutput, error) {
	names, err := s.ports.Content.AvailableSites(ctx)
	if err != nil {
		return nil, UseSiteOutput{}, err
	}
	for _, name := range names {
		if name == input.Site {
			s.sessions.Select(requestSession(req), name)
			return nil, UseSiteOutput{Site: name}, nil
		}
	}
	return nil, UseSiteOutput{}, fmt.Errorf("%w: %q", domain.ErrSiteNotFound, input.Site)
}

// handleSiteContent handles the site_content tool invocation.
func (s *Server) handleSiteContent(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input SiteContentInput,
) (*mcp.CallToolResult, SiteContentOutput, error) {
	site := input.Site
	if site == "" {
		var ok bool
		if site, ok = s.sessions.Current(requestSession(req)); !ok {
			return nil, SiteContentOutput{}, ErrNoSiteSelected
		}
	}

	filter := domain.ContentType(input.Type)
	if filter != "" && !filter.IsValid() {
		return nil, SiteContentOutput{}, ErrInvalidType
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultContentLimit
	}
	limit = min(limit, maxContentLimit)

	records, err := s.ports.Content.SiteContent(ctx, site)
	if err != nil {
		return nil, SiteContentOutput{}, err
	}

	output := SiteContentOutput{Site: site, Records: []RecordOutput{}}
	for rec, err := range records {
		if err != nil {
			// Source errors end one source; the others keep going.
			output.Errors = append(output.Errors, err.Error())
			continue
		}
		if filter != "" && rec.Type() != filter {
			continue
		}
		output.Records = append(output.Records, RecordOutput{
			Content:  rec.Content,
			Metadata: rec.Metadata,
		})
		if len(output.Records) >= limit {
			break
		}
	}
	output.Count = len(output.Records)

	return nil, output, nil
}

// handleResetSession handles the reset_session tool invocation.
func (s *Server) handleResetSession(
	_ context.Context,
	req *mcp.CallToolRequest,
	_ ResetSessionInput,
) (*mcp.CallToolResult, ResetSessionOutput, error) {
	return nil, ResetSessionOutput{Reset: s.sessions.Reset(requestSession(req))}, nil
}

// requestSession returns the session key of a tool call.
func requestSession(req *mcp.CallToolRequest) string {
	if req == nil {
		return localSession
	}
	return sessionID(req.Session)
}
