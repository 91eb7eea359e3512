package domain

import "github.com/shopspring/decimal"

// ProductRef is the slice of a catalog product that travels inside a cart
// line item. The backend embeds it verbatim in every cart response.
type ProductRef struct {
	ID     string          `json:"_id"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
	Stock  int             `json:"stock"`
	Images []ProductImage  `json:"images,omitempty"`
}

type ProductImage struct {
	URL string `json:"url"`
}

// CartLineItem is one product plus a quantity of at least one.
type CartLineItem struct {
	Product  ProductRef `json:"product"`
	Quantity int        `json:"quantity"`
}

// CartSnapshot is the complete cart state at a point in time. Total and
// ItemCount are derived from Items and are never set independently, except
// through the trusted mirror seed path.
type CartSnapshot struct {
	Items     []CartLineItem  `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"itemCount"`
	Loading   bool            `json:"loading"`
	Error     string          `json:"error,omitempty"`
}

// EmptySnapshot returns the initial cart state.
func EmptySnapshot() CartSnapshot {
	return CartSnapshot{Items: []CartLineItem{}}
}
