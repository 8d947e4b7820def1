package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusConfirmed OrderStatus = "confirmed"
)

type ShippingAddress struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
}

// OrderRecord is an immutable snapshot of a completed checkout.
type OrderRecord struct {
	OrderID         string          `json:"orderId"`
	CreatedAt       time.Time       `json:"date"`
	UserID          string          `json:"userId,omitempty"`
	Lines           []CartLine      `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Tax             decimal.Decimal `json:"tax"`
	Total           decimal.Decimal `json:"total"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	Status          OrderStatus     `json:"status"`
}
