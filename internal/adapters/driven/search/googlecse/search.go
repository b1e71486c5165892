// Package googlecse provides a search provider adapter using Google
// Programmable Search (Custom Search Engine).
package googlecse

import (
	"context"
	"fmt"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	"github.com/custodia-labs/descry-cli/internal/adapters/driven/search"
	"github.com/custodia-labs/descry-cli/internal/core/domain"
	"github.com/custodia-labs/descry-cli/internal/core/ports/driven"
)

// Ensure Provider implements the interface.
var _ driven.SearchProvider = (*Provider)(nil)

// Default configuration values.
const (
	// DefaultMaxResults is how many hits one search returns.
	DefaultMaxResults = 8

	// Google allows 100 queries per day on the free tier; the limiter
	// only smooths bursts inside one run.
	defaultRatePerSecond = 5.0
	defaultBurst         = 5
)

// Config holds configuration for the Google Programmable Search provider.
type Config struct {
	// APIKey is the Google API key (required).
	APIKey string

	// EngineID is the Programmable Search Engine ID (required).
	EngineID string

	// MaxResults caps hits per search (default: 8, API max: 10).
	MaxResults int
}

// Provider executes searches against Google Programmable Search.
type Provider struct {
	service    *customsearch.Service
	engineID   string
	maxResults int
	limiter    *search.RateLimiter
}

// New creates a Google Programmable Search provider.
func New(ctx context.Context, cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("googlecse: API key is required")
	}
	if cfg.EngineID == "" {
		return nil, fmt.Errorf("googlecse: engine ID is required")
	}
	if cfg.MaxResults <= 0 || cfg.MaxResults > 10 {
		cfg.MaxResults = DefaultMaxResults
	}

	service, err := customsearch.NewService(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("googlecse: create service: %w", err)
	}

	return &Provider{
		service:    service,
		engineID:   cfg.EngineID,
		maxResults: cfg.MaxResults,
		limiter: search.NewRateLimiter(search.RateLimitConfig{
			RequestsPerSecond: defaultRatePerSecond,
			BurstSize:         defaultBurst,
		}),
	}, nil
}

// Search runs the term and returns formatted result text.
func (p *Provider) Search(ctx context.Context, term string) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: googlecse: rate limit wait: %v", domain.ErrProvider, err)
	}

	resp, err := p.service.Cse.List().
		Q(term).
		Cx(p.engineID).
		Num(int64(p.maxResults)).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("%w: googlecse: search %q: %v", domain.ErrProvider, term, err)
	}

	if len(resp.Items) == 0 {
		return "", fmt.Errorf("%w: googlecse: no results for %q", domain.ErrProvider, term)
	}

	results := make([]search.Result, 0, len(resp.Items))
	for _, item := range resp.Items {
		results = append(results, search.Result{
			Title:   item.Title,
			URL:     item.Link,
			Snippet: item.Snippet,
		})
	}

	return search.FormatResults(results), nil
}

// Name identifies the provider.
func (p *Provider) Name() string {
	return "google"
}
