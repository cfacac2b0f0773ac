// Package menu extracts structured menu data from heterogeneous restaurant
// web pages.
//
// Extraction is a cascade of named strategies tried in order until one yields
// items; link discovery (PDF and image menus), structured-data capture, and
// category discovery always run and merge into whatever the item strategies
// produced. The asymmetry is deliberate: a page may carry a PDF menu next to
// an unparseable item list.
package menu

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/crystal-maps/venue-cli/internal/model"
)

// itemScanLimit bounds how many candidate elements a strategy inspects.
const itemScanLimit = 100

// textScanLimit bounds the free-text price-line scan.
const textScanLimit = 200

// maxDescriptionLen truncates item descriptions.
const maxDescriptionLen = 500

// strategy is one extraction heuristic. Strategies are pure over the parsed
// document and return nil when they find nothing.
type strategy struct {
	name string
	run  func(doc *goquery.Document) []model.MenuItem
}

// Extract applies the strategy cascade to fetched HTML. It returns nil when
// no menu content was found, which is a normal outcome, not an error.
func Extract(html, pageURL string) (*model.MenuDocument, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, eris.Wrap(err, "menu: parse html")
	}

	result := &model.MenuDocument{
		Source: model.MenuSourceWebsite,
		URL:    pageURL,
	}

	// Item discovery: first non-empty strategy wins.
	sections := scanSections(doc)
	if len(sections) > 0 {
		result.Sections = sections
	} else {
		for _, s := range []strategy{
			{name: "item_cards", run: scanItemCards},
			{name: "text_lines", run: scanTextLines},
		} {
			items := s.run(doc)
			if len(items) > 0 {
				zap.L().Debug("menu: strategy matched",
					zap.String("strategy", s.name),
					zap.Int("items", len(items)),
				)
				result.Items = items
				break
			}
		}
	}

	// Always-on passes, merged regardless of item-strategy outcome.
	base := parseBase(pageURL)
	result.StructuredData = scanStructuredData(doc)
	result.Categories = scanCategories(doc)
	result.PDFMenus, result.ImageMenus = scanMenuLinks(doc, base)

	if !result.Present() {
		return nil, nil
	}
	return result, nil
}

func parseBase(pageURL string) *url.URL {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}
	return base
}

func resolveURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || base == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
