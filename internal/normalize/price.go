package normalize

import (
	"math"
	"strconv"
	"strings"
)

// ParsePrice converts a feed price string into integer cents. It is
// total: any input that cannot be parsed yields 0, never an error, so
// a record always gets a price.
//
// The comma is the decimal separator of the feeds we ingest; when one
// is present, periods are thousands separators and are dropped.
// "1.200,00 RON" → 120000, "120,50" → 12050, "2500" → 250000.
func ParsePrice(raw string) int64 {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == ',' || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0
	}

	if strings.Contains(cleaned, ",") {
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		if strings.Count(cleaned, ",") > 1 {
			return 0
		}
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	}

	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || f < 0 || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0
	}
	if f > float64(math.MaxInt64)/100 {
		return 0
	}
	return int64(math.Round(f * 100))
}
