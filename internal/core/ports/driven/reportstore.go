package driven

import (
	"context"

	"github.com/custodia-labs/descry-cli/internal/core/domain"
)

// ReportStore archives finished research reports. Run state is never
// persisted - only the final report artifact.
type ReportStore interface {
	// Save archives a report.
	Save(ctx context.Context, report domain.Report) error

	// Get retrieves a report by ID.
	// Returns domain.ErrNotFound if no such report exists.
	Get(ctx context.Context, id string) (*domain.Report, error)

	// List returns all archived reports, newest first.
	List(ctx context.Context) ([]domain.Report, error)

	// Delete removes a report from the archive.
	Delete(ctx context.Context, id string) error

	// Close releases resources.
	Close() error
}
