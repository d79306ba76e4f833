// Package dedup is the filter-dedup engine: it applies the acceptance
// predicate to normalized deals and collapses multiple offers per title into
// the single cheapest surviving one.
package dedup

import (
	"dealfeed/internal/normalize"
)

// RejectReason labels why a deal failed the acceptance predicate.
type RejectReason string

const (
	ReasonNotOnSale        RejectReason = "not_on_sale"
	ReasonBelowMinDiscount RejectReason = "below_min_discount"
	ReasonAboveMaxPrice    RejectReason = "above_max_price"
)

type Config struct {
	// MinDiscountAmount is the least absolute discount a deal must offer.
	MinDiscountAmount float64
	// MaxPrice caps the normal price of accepted deals.
	MaxPrice float64
}

// Engine accumulates deals over one linear pass. It is single-owner state:
// one goroutine feeds it, then reads the results. For a fixed input sequence
// and config the outcome is exactly reproducible.
type Engine struct {
	cfg        Config
	cheapest   map[string]normalize.Deal
	order      []string
	rejections map[RejectReason]int
	replaced   int
	seen       int
}

func NewEngine(cfg Config) *Engine {
	return &Engine{
		cfg:        cfg,
		cheapest:   make(map[string]normalize.Deal),
		rejections: make(map[RejectReason]int),
	}
}

// Add offers one deal to the engine. It returns whether the deal passed the
// acceptance predicate and, if not, the rejection reason. A rejected deal has
// no effect beyond its rejection counter.
func (e *Engine) Add(d normalize.Deal) (bool, RejectReason) {
	e.seen++

	if reason, ok := e.reject(d); ok {
		e.rejections[reason]++
		return false, reason
	}

	current, exists := e.cheapest[d.Title]
	if !exists {
		e.cheapest[d.Title] = d
		e.order = append(e.order, d.Title)
		return true, ""
	}

	// Strictly cheaper replaces; equal keeps the first-seen record.
	if d.SalePrice < current.SalePrice {
		e.cheapest[d.Title] = d
		e.replaced++
	}
	return true, ""
}

func (e *Engine) reject(d normalize.Deal) (RejectReason, bool) {
	onSale := d.SalePrice > 0 && d.SalePrice < d.NormalPrice
	if !onSale {
		return ReasonNotOnSale, true
	}

	if d.NormalPrice-d.SalePrice < e.cfg.MinDiscountAmount {
		return ReasonBelowMinDiscount, true
	}

	if d.NormalPrice > e.cfg.MaxPrice {
		return ReasonAboveMaxPrice, true
	}

	return "", false
}

// Results returns the surviving cheapest deal per title, in the order each
// title was first accepted.
func (e *Engine) Results() []normalize.Deal {
	deals := make([]normalize.Deal, 0, len(e.order))
	for _, title := range e.order {
		deals = append(deals, e.cheapest[title])
	}
	return deals
}

// Seen returns how many deals were offered to the engine.
func (e *Engine) Seen() int {
	return e.seen
}

// Rejected returns the total number of deals that failed the predicate.
func (e *Engine) Rejected() int {
	total := 0
	for _, n := range e.rejections {
		total += n
	}
	return total
}

// Rejections returns the per-reason rejection counts.
func (e *Engine) Rejections() map[RejectReason]int {
	out := make(map[RejectReason]int, len(e.rejections))
	for reason, n := range e.rejections {
		out[reason] = n
	}
	return out
}

// Replacements returns how many times a cheaper offer replaced an earlier one
// for the same title.
func (e *Engine) Replacements() int {
	return e.replaced
}
