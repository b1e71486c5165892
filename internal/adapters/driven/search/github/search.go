// Package github provides a search provider adapter using the GitHub
// search API. It is most useful for research that touches software
// projects: results are repositories matching the term.
package github

import (
	"context"
	"fmt"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/descry-cli/internal/adapters/driven/search"
	"github.com/custodia-labs/descry-cli/internal/core/domain"
	"github.com/custodia-labs/descry-cli/internal/core/ports/driven"
)

// Ensure Provider implements the interface.
var _ driven.SearchProvider = (*Provider)(nil)

// Default configuration values.
const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxResults is how many repositories one search returns.
	DefaultMaxResults = 8

	// GitHub allows 30 search requests per minute when authenticated.
	defaultRatePerSecond = 0.5
	defaultBurst         = 3
)

// Config holds configuration for the GitHub search provider.
type Config struct {
	// Token is a GitHub personal access token. Optional; unauthenticated
	// search works with a much lower rate limit.
	Token string

	// MaxResults caps repositories per search (default: 8).
	MaxResults int
}

// Provider executes searches against the GitHub repository search API.
type Provider struct {
	gh         *gh.Client
	maxResults int
	limiter    *search.RateLimiter
}

// New creates a GitHub search provider.
func New(ctx context.Context, cfg Config) *Provider {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultMaxResults
	}

	client := gh.NewClient(nil)
	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: cfg.Token},
		)
		tc := oauth2.NewClient(ctx, ts)
		tc.Timeout = DefaultTimeout
		client = gh.NewClient(tc)
	}

	return &Provider{
		gh:         client,
		maxResults: cfg.MaxResults,
		limiter: search.NewRateLimiter(search.RateLimitConfig{
			RequestsPerSecond: defaultRatePerSecond,
			BurstSize:         defaultBurst,
		}),
	}
}

// Search runs the term against repository search and returns formatted
// result text.
func (p *Provider) Search(ctx context.Context, term string) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: github: rate limit wait: %v", domain.ErrProvider, err)
	}

	opts := &gh.SearchOptions{
		Sort:        "stars",
		Order:       "desc",
		ListOptions: gh.ListOptions{PerPage: p.maxResults},
	}

	result, resp, err := p.gh.Search.Repositories(ctx, term, opts)
	if err != nil {
		if resp != nil && resp.StatusCode == 403 {
			p.limiter.RecordRateLimitError(time.Minute)
		}
		return "", fmt.Errorf("%w: github: search %q: %v", domain.ErrProvider, term, err)
	}

	if len(result.Repositories) == 0 {
		return "", fmt.Errorf("%w: github: no results for %q", domain.ErrProvider, term)
	}

	results := make([]search.Result, 0, len(result.Repositories))
	for _, repo := range result.Repositories {
		results = append(results, search.Result{
			Title:   repo.GetFullName(),
			URL:     repo.GetHTMLURL(),
			Snippet: repo.GetDescription(),
		})
	}

	return search.FormatResults(results), nil
}

// Name identifies the provider.
func (p *Provider) Name() string {
	return "github"
}
