package menu

import "regexp"

// Currency-symbol-adjacent numeric patterns, symbol on either side, with
// "." or "," decimal separators.
var (
	priceRe     = regexp.MustCompile(`[₺$€£]\s*\d+(?:[.,]\d{2})?|\d+(?:[.,]\d{2})?\s*[₺$€£]`)
	priceLineRe = regexp.MustCompile(`^(.+?)\s*[.\-\s]{2,}\s*([₺$€£]\s*\d+(?:[.,]\d{2})?|\d+(?:[.,]\d{2})?\s*[₺$€£])$`)

	priceClassRe = regexp.MustCompile(`(?i)price|cost|amount|fiyat`)
	nameClassRe  = regexp.MustCompile(`(?i)name|title|heading`)
	descClassRe  = regexp.MustCompile(`(?i)description|desc|detail|info`)
)

// findPrice returns the first currency-adjacent price in the text, or "".
func findPrice(text string) string {
	return priceRe.FindString(text)
}

// splitPriceLine splits a short "name ... price" line, returning ok=false
// when the line does not match.
func splitPriceLine(text string) (name, price string, ok bool) {
	m := priceLineRe.FindStringSubmatch(text)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}
