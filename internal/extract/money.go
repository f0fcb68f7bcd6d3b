package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var reCurrency = regexp.MustCompile(`[$£€]|(?i)\b(aud|nzd|usd|gbp|eur)\b`)

// ParseMoney converts a matched textual cost ("$80", "80.00", "80") into a
// non-negative amount. Currency symbols, codes, and thousands separators are
// stripped before parsing; anything unparsable — or negative — normalizes to
// zero. This path is total and never errors.
func ParseMoney(s string) float64 {
	s = reCurrency.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
