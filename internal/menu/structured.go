package menu

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// scanStructuredData returns the first embedded JSON-LD block whose declared
// @type mentions a restaurant, menu, or food establishment. The payload is
// attached raw as auxiliary data; it never counts as a found menu by itself.
func scanStructuredData(doc *goquery.Document) json.RawMessage {
	var payload json.RawMessage
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		raw := strings.TrimSpace(sel.Text())
		if raw == "" {
			return true
		}

		var decoded any
		if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
			return true
		}

		switch v := decoded.(type) {
		case map[string]any:
			if isFoodSchema(v) {
				payload = json.RawMessage(raw)
				return false
			}
		case []any:
			for _, entry := range v {
				obj, ok := entry.(map[string]any)
				if !ok || !isFoodSchema(obj) {
					continue
				}
				if encoded, err := json.Marshal(obj); err == nil {
					payload = encoded
					return false
				}
			}
		}
		return true
	})
	return payload
}

func isFoodSchema(obj map[string]any) bool {
	schemaType, _ := obj["@type"].(string)
	lowered := strings.ToLower(schemaType)
	for _, want := range []string{"restaurant", "menu", "foodestablishment"} {
		if strings.Contains(lowered, want) {
			return true
		}
	}
	return false
}
