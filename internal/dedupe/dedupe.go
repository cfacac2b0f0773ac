// Package dedupe collapses near-duplicate venue records before rendering.
//
// Records are grouped by a tiered identity key so the most specific available
// signal decides whether two records are the same physical place, and within
// a group the record with the higher quality score is kept. The reduction is
// pure and deterministic; re-running it is safe.
package dedupe

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/crystal-maps/venue-cli/internal/model"
)

// coordPrecision rounds coordinates to 6 decimal places (~0.11 m) before
// comparison.
const coordPrecision = 6

// Lowercasing uses Turkish casing rules so dotted and dotless I fold
// correctly ("KADIKÖY" and "kadıköy" must produce the same key).
func normalizeText(value *string) string {
	if value == nil {
		return ""
	}
	lowered := cases.Lower(language.Turkish).String(strings.TrimSpace(*value))
	return strings.Join(strings.Fields(lowered), " ")
}

func coordKey(v *model.Venue) string {
	if !v.HasCoordinates() {
		return ""
	}
	return fmt.Sprintf("%.*f,%.*f", coordPrecision, *v.Latitude, coordPrecision, *v.Longitude)
}

// Key computes the tiered identity key for a venue. The tier tag is part of
// the key, so records keyed at different tiers never collide.
func Key(v *model.Venue) string {
	brand := normalizeText(&v.Brand)
	branch := normalizeText(v.Branch)
	addr := normalizeText(v.DisplayAddress())
	phone := normalizeText(v.DisplayPhone())
	coords := coordKey(v)

	switch {
	case branch != "":
		return strings.Join([]string{"branch", brand, branch, coords, addr}, "|")
	case coords != "" && addr != "":
		return strings.Join([]string{"coord_addr", brand, coords, addr}, "|")
	case coords != "":
		return strings.Join([]string{"coord", brand, coords, phone}, "|")
	default:
		return strings.Join([]string{"fallback", brand, addr, phone}, "|")
	}
}

// Quality scores a venue by the richness of its resolved fields. A canonical
// maps URL dominates; a small bonus goes to google-resolved records since
// that provider supplies the full canonical field set.
func Quality(v *model.Venue) float64 {
	score := 0.0
	if v.GeocodeMapsURL != nil && *v.GeocodeMapsURL != "" {
		score += 5.0
	}
	if v.ResolvedAddress != nil && *v.ResolvedAddress != "" {
		score += 2.0
	}
	if v.ResolvedPhone != nil && *v.ResolvedPhone != "" {
		score += 1.5
	}
	if v.ResolvedWebsite != nil && *v.ResolvedWebsite != "" {
		score += 1.0
	}
	if v.ExtraInfo != nil && *v.ExtraInfo != "" {
		score += 0.5
	}
	if v.GeocodeProvider != nil && strings.EqualFold(*v.GeocodeProvider, "google") {
		score += 0.5
	}
	return score
}

// Deduplicate keeps the best-scoring venue per identity key, preserving
// first-seen order. Ties keep the first-seen record.
func Deduplicate(venues []model.Venue) []model.Venue {
	type slot struct {
		index int
		score float64
	}
	best := make(map[string]slot, len(venues))
	order := make([]string, 0, len(venues))

	for i := range venues {
		key := Key(&venues[i])
		score := Quality(&venues[i])
		existing, ok := best[key]
		if !ok {
			best[key] = slot{index: i, score: score}
			order = append(order, key)
			continue
		}
		if score > existing.score {
			best[key] = slot{index: i, score: score}
		}
	}

	out := make([]model.Venue, 0, len(order))
	for _, key := range order {
		out = append(out, venues[best[key].index])
	}
	return out
}
