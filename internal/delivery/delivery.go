package delivery

import "github.com/shopspring/decimal"

// Wilaya is a delivery zone with a flat delivery fee.
type Wilaya struct {
	ID            int             `json:"id"`
	Name          string          `json:"name"`
	DeliveryPrice decimal.Decimal `json:"delivery_price"`
}

// Quote is the delivery price lookup response. Exactly one of Wilaya or
// Message is set.
type Quote struct {
	DeliveryPrice float64 `json:"delivery_price"`
	Wilaya        string  `json:"wilaya,omitempty"`
	Message       string  `json:"message,omitempty"`
}
