package menu

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/crystal-maps/venue-cli/internal/model"
)

// Vocabulary for recognising menu links and images.
var menuKeywords = []string{"menu", "menü", "yemek", "food"}

// scanMenuLinks discovers PDF and image menu links. Targets are recorded
// against the page base URL, never fetched. Runs regardless of whether the
// item strategies succeeded.
func scanMenuLinks(doc *goquery.Document, base *url.URL) (pdfs, images []model.MenuLink) {
	seenPDF := make(map[string]bool)
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(strings.ToLower(href), "javascript:") {
			return
		}

		// Keyword-less PDFs still count; a bare "fiyatlar.pdf" href is the
		// common case on small restaurant sites.
		text := collapseSpace(sel.Text())
		if !isPDFHref(href) {
			return
		}

		resolved := resolveURL(base, href)
		if resolved == "" || seenPDF[resolved] {
			return
		}
		seenPDF[resolved] = true

		label := text
		if label == "" {
			label = "PDF Menü"
		}
		pdfs = append(pdfs, model.MenuLink{URL: resolved, Label: label})
	})

	seenImage := make(map[string]bool)
	doc.Find("img[src]").Each(func(_ int, sel *goquery.Selection) {
		src, _ := sel.Attr("src")
		alt, _ := sel.Attr("alt")
		if !containsKeyword(src, menuKeywords) && !containsKeyword(alt, menuKeywords) {
			return
		}

		resolved := resolveURL(base, src)
		if resolved == "" || seenImage[resolved] {
			return
		}
		seenImage[resolved] = true

		label := collapseSpace(alt)
		if label == "" {
			label = "Menü görseli"
		}
		images = append(images, model.MenuLink{URL: resolved, Label: label})
	})

	return pdfs, images
}

// isPDFHref reports whether the href path points at a PDF, ignoring query
// and fragment.
func isPDFHref(href string) bool {
	parsed, err := url.Parse(href)
	if err != nil {
		return strings.HasSuffix(strings.ToLower(href), ".pdf")
	}
	return strings.HasSuffix(strings.ToLower(parsed.Path), ".pdf")
}

// FindMenuLink returns the first anchor on the page whose text or href
// matches the menu vocabulary and does not point at a PDF, resolved against
// the page URL. Used by the website source to follow a homepage's menu link
// when the homepage itself yields nothing.
func FindMenuLink(html, pageURL string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	base := parseBase(pageURL)

	var found string
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(strings.ToLower(href), "javascript:") || isPDFHref(href) {
			return true
		}
		text := collapseSpace(sel.Text())
		if containsKeyword(text, menuKeywords) || containsKeyword(href, menuKeywords) {
			found = resolveURL(base, href)
			return false
		}
		return true
	})

	if found == pageURL {
		return ""
	}
	return found
}
