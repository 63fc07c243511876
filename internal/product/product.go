package product

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/hvmc-store-backend/internal/pricing"
)

// Product maps to the `product` table. MetrePrice is nil for products sold
// only by unit.
type Product struct {
	ID          int              `json:"id"`
	CategoryID  int              `json:"category"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       decimal.Decimal  `json:"price"`
	MetrePrice  *decimal.Decimal `json:"metre_price"`
	Weight      *decimal.Decimal `json:"poids,omitempty"`
	Image       *string          `json:"image,omitempty"`
	IsAvailable bool             `json:"is_available"`
	CreatedAt   time.Time        `json:"created_at"`
}

// Pricing returns the view of the product used by the pricing policy.
func (p Product) Pricing() pricing.Product {
	return pricing.Product{UnitPrice: p.Price, MetrePrice: p.MetrePrice}
}

// Filter narrows List results. Zero value lists everything.
type Filter struct {
	CategoryID    *int
	AvailableOnly bool
}

func (f Filter) match(p Product) bool {
	if f.CategoryID != nil && p.CategoryID != *f.CategoryID {
		return false
	}
	if f.AvailableOnly && !p.IsAvailable {
		return false
	}
	return true
}
