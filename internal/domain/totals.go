package domain

import "github.com/shopspring/decimal"

var (
	freeShippingThreshold = decimal.NewFromInt(100)
	flatShippingRate      = decimal.RequireFromString("9.99")
	taxRate               = decimal.RequireFromString("0.08")
)

// Recompute derives total and itemCount from the line items. It runs after
// every mutation of Items so the derived fields cannot drift.
func Recompute(items []CartLineItem) (total decimal.Decimal, itemCount int) {
	for _, item := range items {
		itemCount += item.Quantity
		total = total.Add(item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total, itemCount
}

// Partition splits line items into available (stock > 0) and unavailable
// (stock <= 0). Unavailable items stay visible and removable but are excluded
// from checkout totals. The split is derived at read time, never stored.
func Partition(items []CartLineItem) (available, unavailable []CartLineItem) {
	available = []CartLineItem{}
	unavailable = []CartLineItem{}
	for _, item := range items {
		if item.Product.Stock > 0 {
			available = append(available, item)
		} else {
			unavailable = append(unavailable, item)
		}
	}
	return available, unavailable
}

// CheckoutSummary is the order total breakdown shown on the cart page.
type CheckoutSummary struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// Summarize computes the checkout totals over available items only.
// Shipping is free above 100, otherwise a 9.99 flat rate; tax is 8%.
func Summarize(items []CartLineItem) CheckoutSummary {
	available, _ := Partition(items)
	subtotal, _ := Recompute(available)

	shipping := flatShippingRate
	if subtotal.GreaterThan(freeShippingThreshold) {
		shipping = decimal.Zero
	}
	tax := subtotal.Mul(taxRate)

	return CheckoutSummary{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal.Add(shipping).Add(tax),
	}
}
