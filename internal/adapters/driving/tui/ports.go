// Package tui provides an interactive terminal user interface for Descry.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/descry-cli/internal/core/ports/driven"
	"github.com/custodia-labs/descry-cli/internal/core/ports/driving"
)

// Ports aggregates all port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Research drives research runs.
	Research driving.ResearchService

	// Reports is the report archive. Optional; the reports view shows
	// an empty list when nil.
	Reports driven.ReportStore
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(research driving.ResearchService, reports driven.ReportStore) *Ports {
	return &Ports{
		Research: research,
		Reports:  reports,
	}
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
