package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/hvmc-store-backend/internal/pricing"
	"github.com/wichananm65/hvmc-store-backend/internal/product"
)

var ErrProductNotFound = errors.New("product not found")

type ProductReader interface {
	GetByID(ctx context.Context, id int) (product.Product, error)
}

// Service prices a cart the same way checkout does, without persisting it.
type Service struct {
	products ProductReader
	fees     pricing.FeeTable
}

func NewService(products ProductReader, fees pricing.FeeTable) *Service {
	return &Service{products: products, fees: fees}
}

func (s *Service) Quote(ctx context.Context, req QuoteRequest) (Quote, error) {
	if len(req.Items) == 0 {
		return Quote{}, &pricing.ValidationError{Field: "items", Err: pricing.ErrNoItems}
	}

	lines := make([]pricing.Line, 0, len(req.Items))
	out := make([]QuoteLine, 0, len(req.Items))
	for i, it := range req.Items {
		if err := pricing.ValidateLine(it.Quantity, it.Length); err != nil {
			var verr *pricing.ValidationError
			if errors.As(err, &verr) {
				return Quote{}, &pricing.ValidationError{Field: fmt.Sprintf("items[%d].%s", i, verr.Field), Err: verr.Err}
			}
			return Quote{}, err
		}
		p, err := s.products.GetByID(ctx, it.ProductID)
		if err != nil {
			if errors.Is(err, product.ErrNotFound) {
				return Quote{}, fmt.Errorf("items[%d]: %w: %d", i, ErrProductNotFound, it.ProductID)
			}
			return Quote{}, err
		}
		pp := p.Pricing()
		lines = append(lines, pricing.Line{Product: pp, Quantity: it.Quantity, Length: it.Length})
		out = append(out, QuoteLine{
			ProductID:   p.ID,
			Name:        p.Name,
			Quantity:    it.Quantity,
			Length:      it.Length,
			UnitPrice:   pp.UnitPrice,
			MetrePrice:  pp.MetrePrice,
			Calculation: describe(pp, it.Quantity, it.Length),
		})
	}

	fee, err := pricing.LookupDeliveryFee(ctx, s.fees, req.Wilaya)
	if err != nil {
		return Quote{}, fmt.Errorf("delivery fee: %w", err)
	}
	sum, err := pricing.Compute(lines, fee)
	if err != nil {
		return Quote{}, err
	}
	for i := range out {
		out[i].Price = sum.Lines[i]
	}
	return Quote{
		Lines:         out,
		Subtotal:      sum.Subtotal,
		DeliveryPrice: sum.Delivery,
		Total:         sum.Total,
	}, nil
}

// describe renders the formula used for a line, e.g. "1000.00 DA/m × 2.5m × 3".
func describe(p pricing.Product, quantity int, length *decimal.Decimal) string {
	var b strings.Builder
	if length != nil && p.SoldByLength() {
		fmt.Fprintf(&b, "%s DA/m × %sm", p.MetrePrice.StringFixed(2), length.String())
	} else {
		fmt.Fprintf(&b, "%s DA", p.UnitPrice.StringFixed(2))
	}
	fmt.Fprintf(&b, " × %d", quantity)
	return b.String()
}
