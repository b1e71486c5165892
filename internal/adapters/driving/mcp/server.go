package mcp

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/descry-cli/internal/core/ports/driving"
)

// Version is the MCP server version.
const Version = "0.1.0"

// Server is the MCP server for Descry.
//
// Runs started over MCP are tracked by the server so a later
// complete_research call can resume them and wait for the report.
type Server struct {
	ports  *Ports
	server *mcp.Server

	mu      sync.Mutex
	handles map[string]*driving.RunHandle
}

// NewServer creates a new MCP server with the given ports.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	impl := &mcp.Implementation{
		Name:    "descry",
		Version: Version,
	}

	s := &Server{
		ports:   ports,
		server:  mcp.NewServer(impl, nil),
		handles: make(map[string]*driving.RunHandle),
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Run starts the MCP server over stdio.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP starts the MCP server over HTTP on the specified address.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown when context is cancelled
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background()) //nolint:errcheck
	}()

	err := httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// trackRun remembers the handle of a run started over MCP.
func (s *Server) trackRun(handle *driving.RunHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handles[handle.ID] = handle
}

// takeRun removes and returns the handle for a tracked run.
func (s *Server) takeRun(runID string) (*driving.RunHandle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	handle, ok := s.handles[runID]
	if ok {
		delete(s.handles, runID)
	}
	return handle, ok
}
