package domain

import "github.com/shopspring/decimal"

// Product is the full catalog entry as served by the product endpoints.
type Product struct {
	ID          string          `json:"_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Images      []ProductImage  `json:"images,omitempty"`
	Category    string          `json:"category,omitempty"`
	Rating      float64         `json:"rating,omitempty"`
	NumReviews  int             `json:"numReviews,omitempty"`
}

// Ref projects the product down to the subset carried in cart line items.
func (p Product) Ref() ProductRef {
	return ProductRef{
		ID:     p.ID,
		Name:   p.Name,
		Price:  p.Price,
		Stock:  p.Stock,
		Images: p.Images,
	}
}

type Category struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}
