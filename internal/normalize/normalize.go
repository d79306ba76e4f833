// Package normalize coerces heterogeneous raw deal records into the one
// canonical shape the rest of the pipeline operates on.
package normalize

import (
	"math"
	"strings"

	"dealfeed/internal/source"
)

// Deal is the canonical normalized record. Title is non-empty, prices are
// non-negative, and Savings always equals NormalPrice - SalePrice.
type Deal struct {
	Title       string
	SalePrice   float64
	NormalPrice float64
	StoreID     string
	DealID      string
	ImageURL    string
	Savings     float64
}

// savingsTolerance bounds how far an upstream savings figure may drift from
// the recomputed price difference before it is discarded.
const savingsTolerance = 0.01

// Record coerces one raw record into a Deal. The second return value reports
// whether the record was usable; a false means the record is dropped and
// nothing propagates downstream. Normalization never fails the caller.
func Record(rec source.RawRecord) (Deal, bool) {
	switch rec.Kind {
	case source.KindListing:
		if rec.Listing == nil {
			return Deal{}, false
		}
		return listing(*rec.Listing)
	case source.KindLookup:
		if rec.Lookup == nil {
			return Deal{}, false
		}
		return lookup(*rec.Lookup)
	default:
		return Deal{}, false
	}
}

func listing(d source.ListingDeal) (Deal, bool) {
	return build(d.Title, d.SalePrice, d.NormalPrice, d.Savings, d.StoreID, d.DealID, d.Thumb)
}

func lookup(d source.LookupDeal) (Deal, bool) {
	return build(d.Title, d.Price, d.RetailPrice, d.Savings, d.StoreID, d.DealID, d.Thumb)
}

func build(title string, sale, normal, savings source.Amount, storeID, dealID, thumb string) (Deal, bool) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Deal{}, false
	}

	salePrice, ok := sale.Float64()
	if !ok || salePrice < 0 {
		return Deal{}, false
	}

	normalPrice, ok := normal.Float64()
	if !ok || normalPrice < 0 {
		return Deal{}, false
	}

	return Deal{
		Title:       title,
		SalePrice:   salePrice,
		NormalPrice: normalPrice,
		StoreID:     storeID,
		DealID:      dealID,
		ImageURL:    thumb,
		Savings:     savingsAmount(salePrice, normalPrice, savings),
	}, true
}

// savingsAmount recomputes the savings from the two prices unless the
// upstream figure is present and consistent with them. Upstream sources are
// known to report savings as a percentage, so the recomputed difference wins
// in practice.
func savingsAmount(sale, normal float64, upstream source.Amount) float64 {
	computed := normal - sale

	v, ok := upstream.Float64()
	if !ok {
		return computed
	}
	if math.Abs(v-computed) > savingsTolerance {
		return computed
	}
	return v
}
