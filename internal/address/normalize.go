// Package address cleans free-text venue addresses into geocoder-friendly queries.
package address

import (
	"regexp"
	"strings"
)

var (
	labelRe      = regexp.MustCompile(`(?i)^(adres|address)\s*[:=]\s*`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Normalize cleans a raw address string: strips leading "adres:"/"address:"
// labels, turns " / " and " - " separators into ", ", collapses whitespace
// runs, and trims stray punctuation. Returns nil when nothing usable remains.
func Normalize(raw *string) *string {
	if raw == nil {
		return nil
	}
	cleaned := strings.TrimSpace(*raw)
	cleaned = labelRe.ReplaceAllString(cleaned, "")
	cleaned = strings.ReplaceAll(cleaned, " / ", ", ")
	cleaned = strings.ReplaceAll(cleaned, " - ", ", ")
	cleaned = whitespaceRe.ReplaceAllString(cleaned, " ")
	cleaned = strings.Trim(cleaned, ",; ")
	if cleaned == "" {
		return nil
	}
	return &cleaned
}

// genericBranch is the listing's placeholder branch label; it adds no signal
// to a geocode query.
const genericBranch = "genel"

// SearchQuery builds the geocoder query for a venue: brand, branch (unless
// generic or redundant with the brand), cleaned address, de-duplicated in
// order, with a country hint appended when none is present.
func SearchQuery(brand string, branch *string, cleanedAddress string) string {
	parts := []string{strings.TrimSpace(brand)}
	if branch != nil {
		b := strings.TrimSpace(*branch)
		if b != "" && !strings.EqualFold(b, genericBranch) && !strings.EqualFold(b, brand) {
			parts = append(parts, b)
		}
	}
	parts = append(parts, strings.TrimSpace(cleanedAddress))

	seen := make(map[string]bool, len(parts))
	uniq := parts[:0]
	for _, p := range parts {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		uniq = append(uniq, p)
	}
	query := strings.Join(uniq, ", ")
	if query == "" {
		return ""
	}
	if !strings.Contains(query, "Türkiye") && !strings.Contains(query, "Turkey") {
		query += ", Türkiye"
	}
	return query
}
