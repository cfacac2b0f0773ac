package menu

import (
	"regexp"

	"github.com/PuerkitoBio/goquery"

	"github.com/crystal-maps/venue-cli/internal/model"
)

var categoryAncestorRe = regexp.MustCompile(`(?i)category|section`)

// scanItemCards is the flat item-card strategy: the whole document is
// searched for menu-item/product-like elements, each yielding a name, price,
// optional short description, and the nearest ancestor section's heading as
// category.
func scanItemCards(doc *goquery.Document) []model.MenuItem {
	var items []model.MenuItem
	doc.Find("div, li, article").
		FilterFunction(func(_ int, sel *goquery.Selection) bool {
			return attrMatches(sel, itemClassRe)
		}).
		EachWithBreak(func(i int, sel *goquery.Selection) bool {
			if item := extractCardItem(sel); item != nil {
				items = append(items, *item)
			}
			return i < itemScanLimit
		})
	return items
}

func extractCardItem(sel *goquery.Selection) *model.MenuItem {
	item := extractItem(sel)
	if item == nil {
		// Cards may carry the name in a classed element with no heading.
		name := ""
		sel.Find("span, div, p").EachWithBreak(func(_ int, child *goquery.Selection) bool {
			if attrMatches(child, nameClassRe) {
				name = collapseSpace(child.Text())
				return name == ""
			}
			return true
		})
		if name == "" {
			return nil
		}
		item = &model.MenuItem{Name: name}
		if price := priceFromElement(sel, collapseSpace(sel.Text())); price != "" {
			item.Price = &price
		}
	}

	if desc := extractDescription(sel, item.Name); desc != "" {
		item.Description = &desc
	}
	if category := nearestCategory(sel); category != "" {
		item.Category = &category
	}
	return item
}

// extractDescription picks a description-classed child or the first adjacent
// paragraph, skipping text that repeats the name, truncated to 500 runes.
func extractDescription(sel *goquery.Selection, name string) string {
	descSel := sel.Find("span, div, p").FilterFunction(func(_ int, child *goquery.Selection) bool {
		return attrMatches(child, descClassRe)
	}).First()
	if descSel.Length() == 0 {
		descSel = sel.Find("p").First()
	}
	desc := collapseSpace(descSel.Text())
	if desc == "" || desc == name || len(desc) <= 10 {
		return ""
	}
	return truncateRunes(desc, maxDescriptionLen)
}

// nearestCategory walks ancestors for a category/section container and
// returns its heading.
func nearestCategory(sel *goquery.Selection) string {
	var category string
	sel.Parents().EachWithBreak(func(_ int, p *goquery.Selection) bool {
		if attrMatches(p, categoryAncestorRe) {
			category = collapseSpace(p.Find(headingSelector).First().Text())
			return false
		}
		return true
	})
	return category
}

// scanTextLines is the last-resort strategy: short text nodes matching a
// "name, separator run, price" pattern become a flat item list.
func scanTextLines(doc *goquery.Document) []model.MenuItem {
	var items []model.MenuItem
	doc.Find("p, li, div").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if sel.Children().Length() > 0 {
			return i < textScanLimit
		}
		text := collapseSpace(sel.Text())
		if text == "" || len(text) > 200 {
			return i < textScanLimit
		}
		if name, price, ok := splitPriceLine(text); ok {
			p := price
			items = append(items, model.MenuItem{Name: name, Price: &p})
		}
		return i < textScanLimit
	})
	return items
}
