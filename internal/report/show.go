package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/crystal-maps/venue-cli/internal/model"
)

// ShowOptions controls the plain-text menu report.
type ShowOptions struct {
	Limit   int
	Details bool
}

// WriteMenus prints stored menus followed by coverage statistics.
func WriteMenus(w io.Writer, venues []model.Venue, opts ShowOptions) error {
	var withMenus []model.Venue
	for _, v := range venues {
		if v.Menu != nil && v.Menu.Present() {
			withMenus = append(withMenus, v)
		}
	}

	if len(withMenus) == 0 {
		fmt.Fprintln(w, "No menu data found.")
	} else {
		shown := withMenus
		if opts.Limit > 0 && len(shown) > opts.Limit {
			shown = shown[:opts.Limit]
		}

		fmt.Fprintf(w, "\nFound %d venues with menu data:\n\n", len(withMenus))
		fmt.Fprintln(w, strings.Repeat("=", 80))
		for i, v := range shown {
			writeVenueMenu(w, i+1, v, opts.Details)
			fmt.Fprintln(w, strings.Repeat("-", 80))
		}
	}

	writeStats(w, venues)
	return nil
}

func writeVenueMenu(w io.Writer, idx int, v model.Venue, details bool) {
	fmt.Fprintf(w, "\n%d. %s\n", idx, v.String())
	source := "unknown"
	if v.MenuSource != nil {
		source = string(*v.MenuSource)
	}
	fmt.Fprintf(w, "   Source: %s\n", source)
	if v.MenuLastUpdated != nil {
		fmt.Fprintf(w, "   Last updated: %s\n", v.MenuLastUpdated.Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(w, "   Items found: %d\n", v.Menu.ItemCount())

	if len(v.Menu.Categories) > 0 {
		cats := v.Menu.Categories
		if len(cats) > 5 {
			cats = cats[:5]
		}
		fmt.Fprintf(w, "   Categories: %s\n", strings.Join(cats, ", "))
	}
	if len(v.Menu.PDFMenus) > 0 {
		fmt.Fprintf(w, "   PDF menus: %d\n", len(v.Menu.PDFMenus))
	}
	if v.Menu.Summary != nil {
		fmt.Fprintf(w, "   Summary: %s\n", *v.Menu.Summary)
	}

	if details {
		writeSampleItems(w, v.Menu)
	}
}

func writeSampleItems(w io.Writer, m *model.MenuDocument) {
	items := m.Items
	for _, section := range m.Sections {
		items = append(items, section.Items...)
	}
	if len(items) == 0 {
		return
	}
	if len(items) > 5 {
		items = items[:5]
	}

	fmt.Fprintln(w, "\n   Sample items:")
	for _, item := range items {
		line := "     - " + item.Name
		if item.Price != nil {
			line += " " + *item.Price
		}
		fmt.Fprintln(w, line)
		if item.Category != nil {
			fmt.Fprintf(w, "       Category: %s\n", *item.Category)
		}
		if item.Description != nil {
			desc := *item.Description
			if runes := []rune(desc); len(runes) > 50 {
				desc = string(runes[:50]) + "..."
			}
			fmt.Fprintf(w, "       %s\n", desc)
		}
	}
}

func writeStats(w io.Writer, venues []model.Venue) {
	var withSites, withMaps, withMenus, attempted int
	bySource := make(map[model.MenuSource]int)
	for _, v := range venues {
		if site := v.DisplayWebsite(); site != nil {
			withSites++
		}
		if v.GeocodeMapsURL != nil && *v.GeocodeMapsURL != "" {
			withMaps++
		}
		if v.Menu != nil && v.Menu.Present() {
			withMenus++
			if v.MenuSource != nil {
				bySource[*v.MenuSource]++
			}
		}
		if v.MenuLastUpdated != nil {
			attempted++
		}
	}

	fmt.Fprintln(w, "\nMenu Scraping Statistics:")
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "Total venues: %d\n", len(venues))
	fmt.Fprintf(w, "Venues with websites: %d\n", withSites)
	fmt.Fprintf(w, "Venues with Google Maps URLs: %d\n", withMaps)
	fmt.Fprintf(w, "Menu scraping attempted: %d\n", attempted)
	fmt.Fprintf(w, "Menus successfully scraped: %d\n", withMenus)
	for _, source := range []model.MenuSource{model.MenuSourceWebsite, model.MenuSourceGoogleMaps, model.MenuSourceGooglePlaces} {
		if n := bySource[source]; n > 0 {
			fmt.Fprintf(w, "  from %s: %d\n", source, n)
		}
	}
	if attempted > 0 {
		fmt.Fprintf(w, "Success rate: %.1f%%\n", float64(withMenus)/float64(attempted)*100)
	}
	fmt.Fprintln(w, strings.Repeat("=", 60))
}
