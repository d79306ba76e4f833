// Package stores holds the store directory: the per-run mapping from store
// identifiers to display names.
package stores

import (
	"dealfeed/internal/constants"
)

// Directory maps a store ID to its display name. It is built once per run
// and read-only afterwards.
type Directory map[string]string

// Resolve returns the display name for a store ID. Unknown IDs resolve to a
// fallback label embedding the raw identifier instead of failing.
func (d Directory) Resolve(storeID string) string {
	if name, ok := d[storeID]; ok && name != "" {
		return name
	}
	return constants.StoreFallbackPrefix + storeID
}
