// Package fetch retrieves page HTML for the menu extraction pipeline,
// optionally through a headless-browser rendering step for script-driven
// sites.
package fetch

import (
	"context"

	"go.uber.org/zap"
)

// Page is fetched HTML plus the final URL after redirects.
type Page struct {
	HTML     string
	FinalURL string
}

// Fetcher retrieves a single URL.
type Fetcher interface {
	Name() string
	Available() bool
	Fetch(ctx context.Context, url string) (*Page, error)
}

// Chain tries fetchers in order, returning the first success. Unavailable
// fetchers are skipped silently, so a rendering fetcher with no browser in
// the runtime degrades to the raw HTTP path.
type Chain struct {
	fetchers []Fetcher
}

// NewChain creates a Chain over the given fetchers.
func NewChain(fetchers ...Fetcher) *Chain {
	return &Chain{fetchers: fetchers}
}

// Fetch tries each fetcher in order for the URL.
func (c *Chain) Fetch(ctx context.Context, url string) (*Page, error) {
	var lastErr error
	for _, f := range c.fetchers {
		if !f.Available() {
			continue
		}
		page, err := f.Fetch(ctx, url)
		if err == nil && page != nil {
			return page, nil
		}
		if err != nil {
			zap.L().Debug("fetch: fetcher failed, trying next",
				zap.String("fetcher", f.Name()),
				zap.String("url", url),
				zap.Error(err),
			)
			lastErr = err
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, errNoFetcher
}
