// Package listing parses a brand directory page into venue records.
package listing

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/crystal-maps/venue-cli/internal/address"
	"github.com/crystal-maps/venue-cli/internal/model"
)

// Parse extracts venues from a listing page. Each gallery item is one
// brand; each information block inside it is one branch. A brand with
// no information blocks still yields a single bare record so it is not
// silently dropped.
func Parse(html, pageURL string) ([]model.Venue, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, eris.Wrap(err, "listing: parse html")
	}

	base, _ := url.Parse(pageURL)

	var venues []model.Venue
	doc.Find("div.gallery-item").Each(func(_ int, item *goquery.Selection) {
		brand := cleanText(item.Find(".gallery-right h3").First().Text())
		if brand == "" {
			return
		}

		info := item.Find(".gallery-information-item")
		if info.Length() == 0 {
			venues = append(venues, model.Venue{Brand: brand})
			return
		}

		info.Each(func(_ int, block *goquery.Selection) {
			venues = append(venues, parseBranch(brand, block, base))
		})
	})

	return venues, nil
}

func parseBranch(brand string, block *goquery.Selection, base *url.URL) model.Venue {
	v := model.Venue{Brand: brand}

	if branch := cleanText(block.Find("h4").First().Text()); branch != "" {
		v.Branch = &branch
	}

	var paragraphs []string
	block.Find("p").Each(func(_ int, p *goquery.Selection) {
		if text := cleanText(p.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	if len(paragraphs) > 0 {
		v.Address = address.Normalize(&paragraphs[0])
	}
	if len(paragraphs) > 1 {
		v.Phone = &paragraphs[1]
	}
	if len(paragraphs) > 2 {
		extra := strings.Join(paragraphs[2:], " | ")
		v.ExtraInfo = &extra
	}

	block.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if href == "" || strings.HasPrefix(strings.ToLower(href), "javascript:") {
			return true
		}
		site := resolveHref(base, href)
		v.Website = &site
		return false
	})

	return v
}

func resolveHref(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil || base == nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
