// Package duckduckgo provides a keyless search provider adapter that
// scrapes the DuckDuckGo lite HTML interface. It is the fallback when
// neither Google nor GitHub credentials are configured.
package duckduckgo

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/custodia-labs/descry-cli/internal/adapters/driven/search"
	"github.com/custodia-labs/descry-cli/internal/core/domain"
	"github.com/custodia-labs/descry-cli/internal/core/ports/driven"
)

// Ensure Provider implements the interface.
var _ driven.SearchProvider = (*Provider)(nil)

// Default configuration values.
const (
	DefaultTimeout    = 15 * time.Second
	DefaultMaxResults = 8

	liteEndpoint = "https://lite.duckduckgo.com/lite/"
	userAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// The lite endpoint tolerates about one query per second.
	defaultRatePerSecond = 1.0
	defaultBurst         = 1
)

// Patterns for the lite page structure. Link class position varies.
var (
	linkPattern    = regexp.MustCompile(`<a[^>]*class=['"]result-link['"][^>]*href=['"]([^'"]+)['"][^>]*>([^<]+)</a>`)
	linkPatternAlt = regexp.MustCompile(`<a[^>]*href=['"]([^'"]+)['"][^>]*class=['"]result-link['"][^>]*>([^<]+)</a>`)
	snippetPattern = regexp.MustCompile(`<td[^>]*class=['"]result-snippet['"][^>]*>([^<]+(?:<[^>]+>[^<]*</[^>]+>)*[^<]*)</td>`)
	tagPattern     = regexp.MustCompile(`<[^>]+>`)
)

// Provider executes searches against DuckDuckGo lite.
type Provider struct {
	client     *http.Client
	maxResults int
	limiter    *search.RateLimiter
}

// New creates a DuckDuckGo provider with a modest timeout.
func New() *Provider {
	return NewWithClient(&http.Client{Timeout: DefaultTimeout})
}

// NewWithClient creates a DuckDuckGo provider using the supplied HTTP
// client. Useful for overriding the default timeout and for tests.
func NewWithClient(client *http.Client) *Provider {
	return &Provider{
		client:     client,
		maxResults: DefaultMaxResults,
		limiter: search.NewRateLimiter(search.RateLimitConfig{
			RequestsPerSecond: defaultRatePerSecond,
			BurstSize:         defaultBurst,
		}),
	}
}

// Search scrapes the lite HTML page and returns formatted result text.
func (p *Provider) Search(ctx context.Context, term string) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: duckduckgo: rate limit wait: %v", domain.ErrProvider, err)
	}

	formData := url.Values{}
	formData.Set("q", term)

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, liteEndpoint, strings.NewReader(formData.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: duckduckgo: create request: %v", domain.ErrProvider, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: duckduckgo: send request: %v", domain.ErrProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		p.limiter.RecordRateLimitError(30 * time.Second)
		return "", fmt.Errorf("%w: duckduckgo: rate limited", domain.ErrProvider)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: duckduckgo: http %d", domain.ErrProvider, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: duckduckgo: read response: %v", domain.ErrProvider, err)
	}

	results := parseLiteResults(string(body), p.maxResults)
	if len(results) == 0 {
		return "", fmt.Errorf("%w: duckduckgo: no results for %q", domain.ErrProvider, term)
	}

	return search.FormatResults(results), nil
}

// Name identifies the provider.
func (p *Provider) Name() string {
	return "duckduckgo"
}

// parseLiteResults extracts results from the DuckDuckGo lite HTML. The
// lite page has a simple table structure with result links and snippets.
func parseLiteResults(page string, limit int) []search.Result {
	matches := linkPattern.FindAllStringSubmatch(page, -1)
	if len(matches) == 0 {
		matches = linkPatternAlt.FindAllStringSubmatch(page, -1)
	}
	snippetMatches := snippetPattern.FindAllStringSubmatch(page, -1)

	var results []search.Result
	for i, match := range matches {
		if len(match) < 3 {
			continue
		}

		urlStr := strings.TrimSpace(match[1])
		title := cleanHTML(match[2])
		if urlStr == "" || title == "" {
			continue
		}

		snippet := ""
		if i < len(snippetMatches) && len(snippetMatches[i]) > 1 {
			snippet = cleanHTML(snippetMatches[i][1])
		}

		results = append(results, search.Result{
			Title:   title,
			URL:     urlStr,
			Snippet: snippet,
		})
		if len(results) >= limit {
			break
		}
	}
	return results
}

// cleanHTML strips tags and decodes entities.
func cleanHTML(s string) string {
	s = tagPattern.ReplaceAllString(s, "")
	return strings.TrimSpace(html.UnescapeString(s))
}
