package domain

import (
	"github.com/shopspring/decimal"
)

// Carts under this subtotal pay the flat shipping fee.
// Strictly greater than the threshold means free shipping.
var (
	FreeShippingThreshold = decimal.RequireFromString("20.00")
	StandardShippingFee   = decimal.RequireFromString("3.50")
)

// DefaultAvailableStock is assumed when the backend omits the stock
// snapshot of a cart line.
const DefaultAvailableStock = 100

// CartLine is one product entry in the shopping cart. Price, image,
// seller and stock are snapshots copied from the product at add time,
// not live references.
type CartLine struct {
	LineID         string          `json:"line_id"`
	ProductID      int64           `json:"producto_id"`
	Name           string          `json:"nombre"`
	UnitPrice      decimal.Decimal `json:"precio"`
	Quantity       int             `json:"cantidad"`
	ImageRef       string          `json:"imagen"`
	SellerName     string          `json:"vendedor"`
	AvailableStock int             `json:"disponibles"`
}

// Subtotal is the line contribution to the cart subtotal.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Totals are derived values, recomputed on every read and never stored.
type Totals struct {
	Subtotal      decimal.Decimal
	ShippingFee   decimal.Decimal
	Total         decimal.Decimal
	TotalQuantity int
}

// ComputeTotals derives subtotal, shipping and total from the given
// lines. Shipping is free only when the subtotal strictly exceeds the
// threshold: a subtotal of exactly 20.00 still pays 3.50.
func ComputeTotals(lines []CartLine) Totals {
	subtotal := decimal.Zero
	quantity := 0
	for _, line := range lines {
		subtotal = subtotal.Add(line.Subtotal())
		quantity += line.Quantity
	}

	shipping := StandardShippingFee
	if subtotal.GreaterThan(FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	return Totals{
		Subtotal:      subtotal,
		ShippingFee:   shipping,
		Total:         subtotal.Add(shipping),
		TotalQuantity: quantity,
	}
}
