package catalog

import "strings"

// Regions is the storefront fallback order: home region first, then the
// storefronts where globally distributed apps usually show up.
var Regions = []string{
	"cn", "us", "hk", "tw", "jp", "kr", "gb", "sg", "au",
	"de", "fr", "ca", "it", "es", "ru", "br", "mx", "in", "th", "vn",
}

var regionNames = map[string]string{
	"cn": "China", "us": "United States", "hk": "Hong Kong", "tw": "Taiwan",
	"jp": "Japan", "kr": "South Korea", "gb": "United Kingdom",
	"sg": "Singapore", "au": "Australia", "de": "Germany", "fr": "France",
	"ca": "Canada", "it": "Italy", "es": "Spain", "ru": "Russia",
	"br": "Brazil", "mx": "Mexico", "in": "India", "th": "Thailand",
	"vn": "Vietnam",
}

// RegionName returns the display name for a storefront code, or the
// upper-cased code when it is not one we know.
func RegionName(code string) string {
	if name, ok := regionNames[code]; ok {
		return name
	}
	return strings.ToUpper(code)
}

// ClampTryLimit bounds the region try limit to [1, len(Regions)].
func ClampTryLimit(n int) int {
	if n < 1 {
		return 1
	}
	if n > len(Regions) {
		return len(Regions)
	}
	return n
}
