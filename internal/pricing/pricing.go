package pricing

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrInvalidLength   = errors.New("length must be greater than 0")
	ErrLengthPrecision = errors.New("length must have at most 2 decimal places")
	ErrNoItems         = errors.New("at least one item is required")

	// ErrUnknownRegion is returned by a FeeTable that has no entry for a region.
	ErrUnknownRegion = errors.New("unknown region")
)

// ValidationError reports malformed input for a single field.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Product is the pricing view of a catalog product. MetrePrice is nil for
// products that are only sold by unit.
type Product struct {
	UnitPrice  decimal.Decimal
	MetrePrice *decimal.Decimal
}

// SoldByLength reports whether the product carries a usable metre price.
func (p Product) SoldByLength() bool {
	return p.MetrePrice != nil && p.MetrePrice.IsPositive()
}

// Line is one requested cart or order line.
type Line struct {
	Product  Product
	Quantity int
	Length   *decimal.Decimal
}

// Summary aggregates the computed prices of an order.
type Summary struct {
	Lines    []decimal.Decimal
	Subtotal decimal.Decimal
	Delivery decimal.Decimal
	Total    decimal.Decimal
}

// ValidateLine checks quantity and length without looking at the product.
func ValidateLine(quantity int, length *decimal.Decimal) error {
	if quantity < 1 {
		return &ValidationError{Field: "quantity", Err: ErrInvalidQuantity}
	}
	if length != nil {
		if !length.IsPositive() {
			return &ValidationError{Field: "length", Err: ErrInvalidLength}
		}
		// Stored as NUMERIC(10,2); a finer length would be priced on a value
		// that is not the one persisted.
		if !length.Equal(length.Round(2)) {
			return &ValidationError{Field: "length", Err: ErrLengthPrecision}
		}
	}
	return nil
}

// LineItemPrice returns metre_price × length × quantity when a length is
// requested and the product is sold by length, otherwise unit_price × quantity.
// The result is rounded to 2 fraction digits.
func LineItemPrice(p Product, quantity int, length *decimal.Decimal) (decimal.Decimal, error) {
	if err := ValidateLine(quantity, length); err != nil {
		return decimal.Zero, err
	}
	qty := decimal.NewFromInt(int64(quantity))
	if length != nil && p.SoldByLength() {
		return p.MetrePrice.Mul(*length).Mul(qty).Round(2), nil
	}
	return p.UnitPrice.Mul(qty).Round(2), nil
}

// OrderTotal sums line prices and adds the delivery fee.
func OrderTotal(linePrices []decimal.Decimal, deliveryFee decimal.Decimal) decimal.Decimal {
	return decimal.Sum(decimal.Zero, linePrices...).Add(deliveryFee).Round(2)
}

// Compute prices every line and aggregates them with the delivery fee.
func Compute(lines []Line, deliveryFee decimal.Decimal) (Summary, error) {
	if len(lines) == 0 {
		return Summary{}, &ValidationError{Field: "items", Err: ErrNoItems}
	}
	prices := make([]decimal.Decimal, 0, len(lines))
	for _, l := range lines {
		price, err := LineItemPrice(l.Product, l.Quantity, l.Length)
		if err != nil {
			return Summary{}, err
		}
		prices = append(prices, price)
	}
	subtotal := decimal.Sum(decimal.Zero, prices...).Round(2)
	return Summary{
		Lines:    prices,
		Subtotal: subtotal,
		Delivery: deliveryFee,
		Total:    OrderTotal(prices, deliveryFee),
	}, nil
}

// FeeTable resolves a delivery fee by exact region name.
type FeeTable interface {
	DeliveryFee(ctx context.Context, region string) (decimal.Decimal, error)
}

// LookupDeliveryFee trims the region and asks the table for its fee. An empty
// or unknown region costs nothing.
func LookupDeliveryFee(ctx context.Context, table FeeTable, region string) (decimal.Decimal, error) {
	region = strings.TrimSpace(region)
	if region == "" {
		return decimal.Zero, nil
	}
	fee, err := table.DeliveryFee(ctx, region)
	if err != nil {
		if errors.Is(err, ErrUnknownRegion) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return fee, nil
}
