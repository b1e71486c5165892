package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/descry-cli/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for Descry resources.
	uriScheme = "descry://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing archived reports.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "reports",
		Name:        "reports",
		Description: "List of archived research reports",
		MIMEType:    "application/json",
	}, s.handleReportsResource)

	// Template for report content.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "reports/{reportId}",
		Name:        "report-content",
		Description: "Markdown body of an archived research report",
		MIMEType:    "text/markdown",
	}, s.handleReportContentResource)
}

// handleReportsResource returns a list of all archived reports.
func (s *Server) handleReportsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Reports == nil {
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     "[]",
			}},
		}, nil
	}

	reports, err := s.ports.Reports.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}

	// Build simplified report list.
	type reportInfo struct {
		ID        string `json:"id"`
		Query     string `json:"query"`
		CreatedAt string `json:"created_at"`
	}

	infos := make([]reportInfo, len(reports))
	for i, r := range reports {
		infos[i] = reportInfo{
			ID:        r.ID,
			Query:     r.Query,
			CreatedAt: r.CreatedAt.Format(time.RFC3339),
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling reports: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleReportContentResource returns the body of a specific report.
func (s *Server) handleReportContentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Reports == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// Extract reportId from URI: descry://reports/{reportId}
	reportID := extractReportID(req.Params.URI)
	if reportID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	report, err := s.ports.Reports.Get(ctx, reportID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		return nil, fmt.Errorf("getting report: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/markdown",
			Text:     report.Body,
		}},
	}, nil
}

// extractReportID extracts the report ID from a URI like descry://reports/{reportId}.
func extractReportID(uri string) string {
	const prefix = uriScheme + "reports/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return strings.TrimPrefix(uri, prefix)
}
