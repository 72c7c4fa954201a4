package ledger

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// categoryPrefixes maps the stock categories to their SKU prefixes.
var categoryPrefixes = map[string]string{
	"Tools":      "TOL",
	"Safety":     "SAF",
	"Testing":    "TST",
	"Mechanical": "MEC",
	"Electrical": "ELE",
	"General":    "GEN",
}

// skuPrefix derives the three-letter SKU prefix for a category. Unknown
// categories use their first three letters, with non-letters replaced by X
// and short prefixes padded with Z.
func skuPrefix(category string) string {
	if prefix, ok := categoryPrefixes[category]; ok {
		return prefix
	}

	upper := strings.ToUpper(category)
	if len(upper) > 3 {
		upper = upper[:3]
	}

	var b strings.Builder
	for _, r := range upper {
		if r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
		} else if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r) {
			b.WriteRune('X')
		}
	}

	prefix := b.String()
	for len(prefix) < 3 {
		prefix += "Z"
	}
	return prefix
}

// nextSKU generates the next SKU for a category given the existing inventory
// SKUs: highest numeric suffix among SKUs sharing the prefix, plus one,
// zero-padded to three digits. There is no collision policy beyond this.
func nextSKU(category string, existing []string) string {
	prefix := skuPrefix(category)
	pattern := regexp.MustCompile(`^` + regexp.QuoteMeta(prefix) + `-(\d+)$`)

	highest := 0
	for _, sku := range existing {
		if !strings.HasPrefix(sku, prefix) {
			continue
		}
		if m := pattern.FindStringSubmatch(sku); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > highest {
				highest = n
			}
		}
	}

	return fmt.Sprintf("%s-%03d", prefix, highest+1)
}
