package models

import "strconv"

// Marketplace tags for Product.Source
const (
	SourceAliExpress   = "aliexpress"
	SourceMercadoLivre = "mercadolivre"
	SourceGrocery      = "grocery"
)

// Product is the normalized view of a vendor search result. Only records
// with a non-empty title and outbound link are ever surfaced to the user.
type Product struct {
	ID       string  `json:"product_id"`
	Title    string  `json:"product_title"`
	Price    string  `json:"target_sale_price"`
	Currency string  `json:"currency"`
	Rating   float64 `json:"evaluate_rate"` // 0 when the vendor sent none
	Link     string  `json:"promotion_link"`
	ImageURL string  `json:"product_main_image_url"`
	Source   string  `json:"source"`
}

// PriceValue parses the display price into a number. Returns false when the
// price is missing or unparseable.
func (p *Product) PriceValue() (float64, bool) {
	if p.Price == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(p.Price, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// SearchContext is derived from a single inbound message: the cleaned
// search terms plus optional price bounds parsed from phrases like
// "até 300 reais" or "de 100 a 300 reais".
type SearchContext struct {
	Terms    string
	MinPrice *float64
	MaxPrice *float64
	Grocery  bool // terms mention grocery shopping
}

// LastSearch remembers the most recent results for one sender so a
// follow-up "manda os links" can be answered without re-querying.
type LastSearch struct {
	Query    string
	Products []Product
}
