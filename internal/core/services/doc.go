// Package services implements the research orchestration core: the
// completion gateway, the search fan-out coordinator, the run event
// stream and the pipeline orchestrator that sequences them.
//
// Services depend only on domain types and driven ports; they implement
// the driving ports consumed by the CLI, TUI and MCP adapters.
package services
