// Package mcp provides an MCP (Model Context Protocol) server adapter for Descry.
// It enables AI assistants to drive research runs: starting a run, answering
// its clarifying questions and collecting the finished report.
package mcp

import "errors"

// ErrMissingResearchService is returned when the research service is not provided.
var ErrMissingResearchService = errors.New("mcp: research service is required")

// ErrUnknownRun is returned when a tool references a run this server did not start.
var ErrUnknownRun = errors.New("mcp: unknown run id")
