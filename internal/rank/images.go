package rank

import "strings"

// imageUpgrade rewrites a storefront CDN thumbnail path to a higher
// resolution asset. One substitution rule per known CDN.
type imageUpgrade struct {
	hostMarker string
	from       string
	to         string
}

var imageUpgrades = []imageUpgrade{
	{hostMarker: "steamstatic", from: "capsule_184x69.jpg", to: "header.jpg"},
	{hostMarker: "gog-statics.com", from: "_product_tile_117h.webp", to: "_product_tile_256.webp"},
}

// UpgradeImageURL applies the first matching CDN substitution rule. URLs on
// unknown hosts, including empty ones, pass through unchanged.
func UpgradeImageURL(u string) string {
	for _, rule := range imageUpgrades {
		if strings.Contains(u, rule.hostMarker) {
			return strings.Replace(u, rule.from, rule.to, 1)
		}
	}
	return u
}
