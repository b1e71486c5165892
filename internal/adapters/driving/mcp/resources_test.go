package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/descry-cli/internal/core/domain"
)

func TestExtractReportID(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{
			name:     "valid report URI",
			uri:      "descry://reports/rep-123",
			expected: "rep-123",
		},
		{
			name:     "invalid prefix",
			uri:      "file://reports/rep-123",
			expected: "",
		},
		{
			name:     "list URI has no id",
			uri:      "descry://reports",
			expected: "",
		},
		{
			name:     "empty URI",
			uri:      "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractReportID(tt.uri)
			assert.Equal(t, tt.expected, result)
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleReportsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil report store returns empty list", func(t *testing.T) {
		ports := &Ports{Research: &mockResearchService{}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		req := makeReadResourceRequest("descry://reports")
		result, err := server.handleReportsResource(ctx, req)

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("returns archived reports", func(t *testing.T) {
		createdAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
		store := &mockReportStore{
			reports: []domain.Report{
				{ID: "rep-1", Query: "quantum batteries", Body: "body", CreatedAt: createdAt},
				{ID: "rep-2", Query: "solar sails", Body: "body", CreatedAt: createdAt},
			},
		}
		ports := &Ports{Research: &mockResearchService{}, Reports: store}
		server, err := NewServer(ports)
		require.NoError(t, err)

		req := makeReadResourceRequest("descry://reports")
		result, err := server.handleReportsResource(ctx, req)
		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)

		var infos []struct {
			ID        string `json:"id"`
			Query     string `json:"query"`
			CreatedAt string `json:"created_at"`
		}
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &infos))
		require.Len(t, infos, 2)
		assert.Equal(t, "rep-1", infos[0].ID)
		assert.Equal(t, "quantum batteries", infos[0].Query)
		assert.Equal(t, "2026-08-01T12:00:00Z", infos[0].CreatedAt)
	})

	t.Run("propagates list errors", func(t *testing.T) {
		store := &mockReportStore{listErr: assert.AnError}
		ports := &Ports{Research: &mockResearchService{}, Reports: store}
		server, err := NewServer(ports)
		require.NoError(t, err)

		req := makeReadResourceRequest("descry://reports")
		_, err = server.handleReportsResource(ctx, req)
		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestServer_handleReportContentResource(t *testing.T) {
	ctx := context.Background()

	store := &mockReportStore{
		reports: []domain.Report{
			{ID: "rep-1", Query: "quantum batteries", Body: "# Findings\n\nDetails."},
		},
	}

	newServer := func(t *testing.T) *Server {
		t.Helper()
		server, err := NewServer(&Ports{Research: &mockResearchService{}, Reports: store})
		require.NoError(t, err)
		return server
	}

	t.Run("returns report body", func(t *testing.T) {
		server := newServer(t)

		req := makeReadResourceRequest("descry://reports/rep-1")
		result, err := server.handleReportContentResource(ctx, req)

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "text/markdown", result.Contents[0].MIMEType)
		assert.Equal(t, "# Findings\n\nDetails.", result.Contents[0].Text)
	})

	t.Run("unknown report is not found", func(t *testing.T) {
		server := newServer(t)

		req := makeReadResourceRequest("descry://reports/rep-missing")
		_, err := server.handleReportContentResource(ctx, req)
		require.Error(t, err)
	})

	t.Run("malformed URI is not found", func(t *testing.T) {
		server := newServer(t)

		req := makeReadResourceRequest("descry://other/rep-1")
		_, err := server.handleReportContentResource(ctx, req)
		require.Error(t, err)
	})

	t.Run("nil report store is not found", func(t *testing.T) {
		server, err := NewServer(&Ports{Research: &mockResearchService{}})
		require.NoError(t, err)

		req := makeReadResourceRequest("descry://reports/rep-1")
		_, err = server.handleReportContentResource(ctx, req)
		require.Error(t, err)
	})
}
