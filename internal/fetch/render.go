package fetch

import (
	"context"
	"os/exec"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"
)

// RenderFetcher loads pages in a headless browser so script-driven menus are
// present in the returned HTML. Available only when a Chrome binary can be
// found; otherwise the chain falls through to the raw HTTP fetcher.
type RenderFetcher struct {
	enabled     bool
	timeout     time.Duration
	settleDelay time.Duration

	checkOnce sync.Once
	hasChrome bool
}

// NewRenderFetcher creates a RenderFetcher. When enabled is false the
// fetcher reports unavailable without probing for a browser. settle is how
// long to wait after navigation for scripts to populate the page.
func NewRenderFetcher(enabled bool, timeout, settle time.Duration) *RenderFetcher {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if settle <= 0 {
		settle = 2 * time.Second
	}
	return &RenderFetcher{
		enabled:     enabled,
		timeout:     timeout,
		settleDelay: settle,
	}
}

func (f *RenderFetcher) Name() string { return "render" }

// Available probes for a usable browser once and caches the answer.
func (f *RenderFetcher) Available() bool {
	if !f.enabled {
		return false
	}
	f.checkOnce.Do(func() {
		for _, bin := range []string{"google-chrome", "chromium", "chromium-browser", "headless-shell"} {
			if _, err := exec.LookPath(bin); err == nil {
				f.hasChrome = true
				return
			}
		}
	})
	return f.hasChrome
}

// Fetch navigates to the URL, waits for the page to settle, and returns the
// rendered document.
func (f *RenderFetcher) Fetch(ctx context.Context, url string) (*Page, error) {
	browserCtx, cancel := chromedp.NewContext(ctx)
	defer cancel()
	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, f.timeout)
	defer cancelTimeout()

	var html, finalURL string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.Sleep(f.settleDelay),
		chromedp.Location(&finalURL),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return nil, eris.Wrapf(err, "fetch: render %s", url)
	}
	if finalURL == "" {
		finalURL = url
	}
	return &Page{HTML: html, FinalURL: finalURL}, nil
}
