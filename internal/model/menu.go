package model

import "encoding/json"

// MenuSource records the provenance of an extracted menu.
type MenuSource string

const (
	MenuSourceWebsite      MenuSource = "website"
	MenuSourceGoogleMaps   MenuSource = "google_maps"
	MenuSourceGooglePlaces MenuSource = "google_places"
)

// MenuItem is one priced entry on a menu. Name is required; everything else
// is best-effort.
type MenuItem struct {
	Name        string  `json:"name"`
	Price       *string `json:"price,omitempty"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
}

// MenuSection groups items under a heading.
type MenuSection struct {
	Name  string     `json:"name"`
	Items []MenuItem `json:"items"`
}

// MenuLink points at a PDF or image menu discovered on a page. The target is
// recorded, never fetched.
type MenuLink struct {
	URL   string `json:"url"`
	Label string `json:"label,omitempty"`
}

// MenuDocument is the extracted menu content for one venue.
type MenuDocument struct {
	Source     MenuSource    `json:"source"`
	URL        string        `json:"url"`
	Sections   []MenuSection `json:"sections,omitempty"`
	Items      []MenuItem    `json:"items,omitempty"`
	Categories []string      `json:"categories,omitempty"`
	PDFMenus   []MenuLink    `json:"pdf_menus,omitempty"`
	ImageMenus []MenuLink    `json:"image_menus,omitempty"`

	// StructuredData carries a raw schema.org payload (Restaurant, Menu,
	// FoodEstablishment) when one was embedded in the page. Auxiliary only:
	// it never satisfies Present by itself.
	StructuredData json.RawMessage `json:"structured_data,omitempty"`

	// Summary is the editorial summary from the places fallback.
	Summary *string `json:"summary,omitempty"`
}

// ItemCount counts items across sections plus the flat list.
func (m *MenuDocument) ItemCount() int {
	n := len(m.Items)
	for _, s := range m.Sections {
		n += len(s.Items)
	}
	return n
}

// Present reports whether the document counts as a found menu: at least one
// item, one section with an item, one PDF link, one image link, or an
// editorial summary. Empty extraction results are "not found", not an empty
// success.
func (m *MenuDocument) Present() bool {
	if m == nil {
		return false
	}
	if len(m.Items) > 0 || len(m.PDFMenus) > 0 || len(m.ImageMenus) > 0 {
		return true
	}
	for _, s := range m.Sections {
		if len(s.Items) > 0 {
			return true
		}
	}
	return m.Summary != nil && *m.Summary != ""
}
