// Package rank orders the surviving deals by savings and produces the
// display-ready output records.
package rank

import (
	"fmt"
	"math"
	"net/url"
	"sort"

	"dealfeed/internal/constants"
	"dealfeed/internal/normalize"
	"dealfeed/internal/stores"
)

// Deal is one record of the published feed.
type Deal struct {
	ID                 int     `json:"id"`
	Title              string  `json:"title"`
	Platform           string  `json:"platform"`
	Price              float64 `json:"price"`
	OldPrice           float64 `json:"oldPrice"`
	Store              string  `json:"store"`
	URL                string  `json:"url"`
	ImageURL           string  `json:"imageUrl"`
	DiscountPercentage int     `json:"discountPercentage"`
	Featured           bool    `json:"featured"`
}

type Ranker struct {
	directory     stores.Directory
	redirectBase  string
	featuredCount int
}

func NewRanker(directory stores.Directory, redirectBase string, featuredCount int) *Ranker {
	if redirectBase == "" {
		redirectBase = constants.DefaultRedirectBase
	}
	if featuredCount < 0 {
		featuredCount = 0
	}
	return &Ranker{
		directory:     directory,
		redirectBase:  redirectBase,
		featuredCount: featuredCount,
	}
}

// Rank sorts deals by savings descending, ties broken by title ascending so
// the output order never depends on input iteration, and formats each entry
// with its 1-based rank. The first featuredCount entries are flagged
// featured. The input slice is not modified.
func (r *Ranker) Rank(deals []normalize.Deal) []Deal {
	sorted := make([]normalize.Deal, len(deals))
	copy(sorted, deals)

	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Savings != sorted[j].Savings {
			return sorted[i].Savings > sorted[j].Savings
		}
		return sorted[i].Title < sorted[j].Title
	})

	out := make([]Deal, 0, len(sorted))
	for i, d := range sorted {
		out = append(out, r.format(d, i))
	}
	return out
}

func (r *Ranker) format(d normalize.Deal, index int) Deal {
	return Deal{
		ID:                 index + 1,
		Title:              d.Title,
		Platform:           constants.OutputPlatform,
		Price:              d.SalePrice,
		OldPrice:           d.NormalPrice,
		Store:              r.directory.Resolve(d.StoreID),
		URL:                r.redirectURL(d.DealID),
		ImageURL:           UpgradeImageURL(d.ImageURL),
		DiscountPercentage: DiscountPercentage(d.SalePrice, d.NormalPrice),
		Featured:           index < r.featuredCount,
	}
}

// redirectURL builds the outbound redirect link. A missing deal ID still
// yields the template with an empty identifier: a visibly dead link is
// preferred over dropping the field.
func (r *Ranker) redirectURL(dealID string) string {
	return fmt.Sprintf("%s?dealID=%s", r.redirectBase, url.QueryEscape(dealID))
}

// DiscountPercentage computes the rounded discount percentage, 0 when the
// normal price is zero. Rounding is half away from zero.
func DiscountPercentage(sale, normal float64) int {
	if normal <= 0 {
		return 0
	}
	return int(math.Round((normal - sale) / normal * 100))
}
