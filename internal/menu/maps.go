package menu

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/crystal-maps/venue-cli/internal/model"
)

// mapsItemLimit caps how many priced entries are taken from one listing.
const mapsItemLimit = 50

// ExtractMaps pulls priced entries out of a rendered Google Maps listing.
// Maps obfuscates class names per build except the typography classes, so
// the scan keys on fontBodyMedium/fontBodySmall text nodes that carry a
// price pattern. Requires rendered HTML; a raw fetch of a Maps URL has none
// of these nodes and simply yields nil.
func ExtractMaps(html, mapsURL string) (*model.MenuDocument, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, eris.Wrap(err, "menu: parse maps html")
	}

	result := &model.MenuDocument{
		Source: model.MenuSourceGoogleMaps,
		URL:    mapsURL,
	}

	seen := make(map[string]bool)
	doc.Find("div").
		FilterFunction(func(_ int, sel *goquery.Selection) bool {
			class, ok := sel.Attr("class")
			return ok && (strings.Contains(class, "fontBodyMedium") || strings.Contains(class, "fontBodySmall"))
		}).
		EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			text := collapseSpace(sel.Text())
			if len(text) < 3 || len(text) > 200 {
				return true
			}
			price := findPrice(text)
			if price == "" {
				return true
			}
			name := stripPriceAndLeaders(text, price)
			if name == "" || seen[name] {
				return true
			}
			seen[name] = true
			p := price
			result.Items = append(result.Items, model.MenuItem{Name: name, Price: &p})
			return len(result.Items) < mapsItemLimit
		})

	if !result.Present() {
		return nil, nil
	}
	return result, nil
}
