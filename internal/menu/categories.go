package menu

import (
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var navClassRe = regexp.MustCompile(`(?i)tab|nav|category`)

// Menu-domain keywords accepted from navigation and tab labels, with Turkish
// locale equivalents.
var categoryKeywords = []string{
	"menu", "menü", "food", "yemek", "ana",
	"başlangıç", "starter", "tatlı", "dessert",
	"içecek", "drink", "çorba", "soup",
}

// navScanLimit bounds how many navigation labels are inspected.
const navScanLimit = 20

// scanCategories collects distinct section headings and menu-keyword
// navigation labels as a deduplicated sorted category list.
func scanCategories(doc *goquery.Document) []string {
	seen := make(map[string]bool)

	for _, container := range menuContainers(doc) {
		heading := collapseSpace(container.Find(headingSelector).First().Text())
		if heading != "" && len(heading) < 100 {
			seen[heading] = true
		}
	}

	doc.Find("a, button").
		FilterFunction(func(_ int, sel *goquery.Selection) bool {
			return attrMatches(sel, navClassRe)
		}).
		EachWithBreak(func(i int, sel *goquery.Selection) bool {
			text := collapseSpace(sel.Text())
			if text != "" && len(text) < 50 && containsKeyword(text, categoryKeywords) {
				seen[text] = true
			}
			return i < navScanLimit
		})

	if len(seen) == 0 {
		return nil
	}
	categories := make([]string, 0, len(seen))
	for c := range seen {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	return categories
}

// Labels are lowercased with Turkish casing rules so uppercase labels like
// "TATLILAR" fold to the dotless form the keywords use.
func containsKeyword(text string, keywords []string) bool {
	lowered := cases.Lower(language.Turkish).String(text)
	for _, kw := range keywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}
