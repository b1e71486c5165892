package mcp

import (
	"github.com/custodia-labs/descry-cli/internal/core/ports/driven"
	"github.com/custodia-labs/descry-cli/internal/core/ports/driving"
)

// Ports aggregates all port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Research drives research runs.
	Research driving.ResearchService

	// Reports is the report archive. Optional; the report resources
	// return empty results when nil.
	Reports driven.ReportStore
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Research == nil {
		return ErrMissingResearchService
	}
	// Reports is optional
	return nil
}
