package normalize

import "strings"

// knownBrands is scanned in order when a feed carries no brand field;
// the first case-insensitive substring hit in the title wins, so put
// the more specific names first.
var knownBrands = []string{
	"Apple", "Samsung", "Xiaomi", "Huawei", "OnePlus",
	"Dell", "HP", "Lenovo", "ASUS", "Acer", "MSI",
	"Sony", "LG", "Philips", "Bosch", "Whirlpool",
	"Zara", "H&M", "Nike", "Adidas", "Puma",
}

// topBrands earn a +2 indexation priority boost.
var topBrands = map[string]bool{
	"Apple":   true,
	"Samsung": true,
	"Dell":    true,
	"HP":      true,
	"Nike":    true,
	"Adidas":  true,
}

// BrandFromTitle extracts a brand from the product title: first a scan
// of the well-known brand list, then the first whitespace-delimited
// token as a fallback. Returns "" for an empty title.
func BrandFromTitle(title string) string {
	upper := strings.ToUpper(title)
	for _, b := range knownBrands {
		if strings.Contains(upper, strings.ToUpper(b)) {
			return b
		}
	}
	fields := strings.Fields(title)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
