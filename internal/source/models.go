package source

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Amount is a price field the upstream API serializes inconsistently: bulk
// listing records carry strings ("4.99"), per-title lookups carry numbers.
// Unparseable input never fails the decode of a whole batch; it just leaves
// the amount invalid so the normalizer can drop the record.
type Amount struct {
	value float64
	valid bool
}

func NewAmount(v float64) Amount {
	return Amount{value: v, valid: true}
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	s := string(data)
	if s[0] == '"' {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return nil
		}
		s = unquoted
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}

	a.value = v
	a.valid = true
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.valid {
		return []byte("null"), nil
	}
	return json.Marshal(a.value)
}

// Float64 returns the parsed value and whether the field held a usable number.
func (a Amount) Float64() (float64, bool) {
	return a.value, a.valid
}

// ListingDeal is one record from the paginated bulk listing endpoint.
type ListingDeal struct {
	Title       string `json:"title"`
	DealID      string `json:"dealID"`
	StoreID     string `json:"storeID"`
	SalePrice   Amount `json:"salePrice"`
	NormalPrice Amount `json:"normalPrice"`
	Savings     Amount `json:"savings"`
	Thumb       string `json:"thumb"`
}

// LookupDeal is one offer from a per-title game lookup. Title and Thumb are
// copied down from the lookup envelope; DealID may be empty for offers the
// upstream synthesizes without a redirect identifier.
type LookupDeal struct {
	Title       string `json:"title"`
	Thumb       string `json:"thumb"`
	StoreID     string `json:"storeID"`
	DealID      string `json:"dealID"`
	Price       Amount `json:"price"`
	RetailPrice Amount `json:"retailPrice"`
	Savings     Amount `json:"savings"`
}

type RecordKind int

const (
	KindListing RecordKind = iota
	KindLookup
)

func (k RecordKind) String() string {
	if k == KindLookup {
		return "lookup"
	}
	return "listing"
}

// RawRecord is the tagged variant handed to the normalizer. Exactly one of
// Listing and Lookup is set, matching Kind.
type RawRecord struct {
	Kind    RecordKind
	Listing *ListingDeal
	Lookup  *LookupDeal
}

func ListingRecord(d ListingDeal) RawRecord {
	return RawRecord{Kind: KindListing, Listing: &d}
}

func LookupRecord(d LookupDeal) RawRecord {
	return RawRecord{Kind: KindLookup, Lookup: &d}
}

// StoreInfo is one entry of the upstream store list.
type StoreInfo struct {
	StoreID   string `json:"storeID"`
	StoreName string `json:"storeName"`
	IsActive  int    `json:"isActive"`
}

type gameSearchResult struct {
	GameID   json.Number `json:"gameID"`
	External string      `json:"external"`
	Thumb    string      `json:"thumb"`
}

type gameInfo struct {
	Title string `json:"title"`
	Thumb string `json:"thumb"`
}

type gameLookupResponse struct {
	Info  gameInfo     `json:"info"`
	Deals []LookupDeal `json:"deals"`
}
