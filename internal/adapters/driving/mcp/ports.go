package mcp

import (
	"github.com/custodia-labs/sitesearch/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Content streams site content.
	Content driving.ContentService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Content == nil {
		return ErrMissingContentService
	}
	return nil
}
