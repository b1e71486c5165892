package driven

import "context"

// SearchProvider executes a single web search term and returns raw
// result text (titles, snippets, URLs) for summarisation.
//
// Implementations may include:
//   - Google Programmable Search
//   - GitHub repository/code search
//   - DuckDuckGo HTML (keyless fallback)
type SearchProvider interface {
	// Search runs the term and returns the raw result text.
	// Failures must be wrapped with domain.ErrProvider.
	Search(ctx context.Context, term string) (string, error)

	// Name identifies the provider in logs and events.
	Name() string
}
