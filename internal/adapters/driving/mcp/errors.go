// Package mcp provides an MCP (Model Context Protocol) server adapter for
// sitesearch. It lets AI assistants list sites and read their content.
package mcp

import "errors"

var (
	// ErrMissingContentService is returned when the content service is not provided.
	ErrMissingContentService = errors.New("mcp: content service is required")

	// ErrNoSiteSelected is returned when a tool needs a site and the session
	// has not selected one.
	ErrNoSiteSelected = errors.New("mcp: no site given and none selected; call use_site first")

	// ErrInvalidType is returned for an unknown content type filter.
	ErrInvalidType = errors.New("mcp: type must be page, file or list")
)
