// Package domain defines the core business entities for Descry.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RawQuery / OptimizedQuery / EnrichedQuery: the query as it moves
//     through the pipeline
//   - ClarifyingQuestion / Answer: the clarification exchange with the user
//   - SearchPlanItem / SearchOutcome / SearchResultSet: the parallel
//     search phase
//   - Report: the synthesised research report
//   - RunState / Stage / ProgressEvent: orchestration state and progress
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
