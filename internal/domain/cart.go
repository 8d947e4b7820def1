package domain

import "github.com/shopspring/decimal"

// CartLine is one product entry in the cart. Index is the stable key of the
// line inside the cart, not a catalog id.
type CartLine struct {
	Index     int             `json:"index"`
	ProductID string          `json:"productId,omitempty"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"price"`
	ImageRef  string          `json:"image"`
	Quantity  int             `json:"quantity"`
}

// Subtotal is UnitPrice x Quantity.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type CartTotal struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Count    int             `json:"count"`
}

// SumLines derives the cart total from a line set.
func SumLines(lines []CartLine) CartTotal {
	total := CartTotal{Subtotal: decimal.Zero}
	for _, l := range lines {
		total.Subtotal = total.Subtotal.Add(l.Subtotal())
		total.Count += l.Quantity
	}
	return total
}
