package menu

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/crystal-maps/venue-cli/internal/model"
)

var (
	// Menu-related vocabulary for container class/id attributes, including
	// Turkish locale equivalents.
	sectionAttrRe = regexp.MustCompile(`(?i)menu|menü|yemek|food|dish|meal|category`)

	itemClassRe = regexp.MustCompile(`(?i)menu-item|food-item|dish|product`)

	headingSelector = "h1, h2, h3, h4, h5, h6"
)

func attrMatches(sel *goquery.Selection, re *regexp.Regexp) bool {
	if class, ok := sel.Attr("class"); ok && re.MatchString(class) {
		return true
	}
	if id, ok := sel.Attr("id"); ok && re.MatchString(id) {
		return true
	}
	return false
}

// menuContainers selects the outermost div/section/article elements whose
// class or id matches the menu vocabulary. Nested matches are folded into
// their ancestor so items are not double-counted.
func menuContainers(doc *goquery.Document) []*goquery.Selection {
	var containers []*goquery.Selection
	doc.Find("div, section, article").Each(func(_ int, sel *goquery.Selection) {
		if !attrMatches(sel, sectionAttrRe) {
			return
		}
		nested := false
		sel.Parents().EachWithBreak(func(_ int, p *goquery.Selection) bool {
			if attrMatches(p, sectionAttrRe) {
				nested = true
				return false
			}
			return true
		})
		if !nested {
			containers = append(containers, sel)
		}
	})
	return containers
}

// scanSections is the structural section strategy: for each menu-vocabulary
// container, list items become priced menu items under the container's
// heading.
func scanSections(doc *goquery.Document) []model.MenuSection {
	var sections []model.MenuSection
	for _, container := range menuContainers(doc) {
		name := "Menü"
		if heading := collapseSpace(container.Find(headingSelector).First().Text()); heading != "" && len(heading) < 100 {
			name = heading
		}

		candidates := container.Find("li")
		if candidates.Length() == 0 {
			candidates = container.Find("div, article").FilterFunction(func(_ int, sel *goquery.Selection) bool {
				return attrMatches(sel, itemClassRe)
			})
		}

		var items []model.MenuItem
		candidates.EachWithBreak(func(i int, sel *goquery.Selection) bool {
			if item := extractItem(sel); item != nil {
				items = append(items, *item)
			}
			return i < itemScanLimit
		})
		if len(items) > 0 {
			sections = append(sections, model.MenuSection{Name: name, Items: items})
		}
	}
	return sections
}

// extractItem reads a name and price out of one item-like element. The item
// is kept only when it has a non-empty name.
func extractItem(sel *goquery.Selection) *model.MenuItem {
	fullText := collapseSpace(sel.Text())

	var name string
	nameSel := sel.Find(headingSelector).First()
	if nameSel.Length() == 0 {
		nameSel = sel.Find("strong, b, em").First()
	}
	if nameSel.Length() > 0 {
		name = collapseSpace(nameSel.Text())
	}

	price := priceFromElement(sel, fullText)

	if name == "" {
		// Plain list entries carry "name ... price" in one text node.
		name = stripPriceAndLeaders(fullText, price)
	}
	if name == "" {
		return nil
	}

	item := &model.MenuItem{Name: name}
	if price != "" {
		item.Price = &price
	}
	return item
}

// priceFromElement prefers a price-classed child, then regex over the text.
func priceFromElement(sel *goquery.Selection, fullText string) string {
	var price string
	sel.Find("span, div, p, em, strong, b").EachWithBreak(func(_ int, child *goquery.Selection) bool {
		if attrMatches(child, priceClassRe) {
			if p := findPrice(collapseSpace(child.Text())); p != "" {
				price = p
				return false
			}
		}
		return true
	})
	if price == "" {
		price = findPrice(fullText)
	}
	return price
}

// stripPriceAndLeaders removes the matched price and any trailing dot
// leaders or dashes from an item line.
func stripPriceAndLeaders(text, price string) string {
	if price != "" {
		if idx := strings.LastIndex(text, price); idx >= 0 {
			text = text[:idx]
		}
	}
	return strings.TrimRight(strings.TrimSpace(text), ".-–— \t")
}
