// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the pipeline to function:
//
//   - CompletionService: structured calls to a language model provider
//   - SearchProvider: executes one web search term
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - Notifier: delivers the finished report. Without it, delivery is skipped.
//   - TraceSink: records spans for observability. Without it, no spans are recorded.
//   - ReportStore: archives finished reports. Without it, reports are only printed.
//   - PromptStore: customisable prompt templates. Without it, built-in defaults are used.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
