package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/hvmc-store-backend/internal/delivery"
	"github.com/wichananm65/hvmc-store-backend/internal/pricing"
	"github.com/wichananm65/hvmc-store-backend/internal/product"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func newService() *Service {
	products := product.NewInMemoryRepository([]product.Product{
		{ID: 1, Name: "Tissu lin", Price: dec("120.00"), MetrePrice: decPtr("1000.00"), IsAvailable: true},
		{ID: 2, Name: "Ruban", Price: dec("250.00"), IsAvailable: true},
	})
	fees := delivery.NewService(delivery.NewInMemoryRepository([]delivery.Wilaya{
		{ID: 1, Name: "Alger", DeliveryPrice: dec("500.00")},
	}))
	return NewService(products, fees)
}

func TestQuote_MixedCart(t *testing.T) {
	q, err := newService().Quote(context.Background(), QuoteRequest{
		Wilaya: "Alger",
		Items: []Item{
			{ProductID: 1, Quantity: 3, Length: decPtr("2.5")},
			{ProductID: 2, Quantity: 4},
		},
	})
	require.NoError(t, err)
	require.Len(t, q.Lines, 2)

	assert.Equal(t, "7500.00", q.Lines[0].Price.StringFixed(2))
	assert.Equal(t, "1000.00 DA/m × 2.5m × 3", q.Lines[0].Calculation)
	assert.Equal(t, "1000.00", q.Lines[1].Price.StringFixed(2))
	assert.Equal(t, "250.00 DA × 4", q.Lines[1].Calculation)
	assert.Equal(t, "8500.00", q.Subtotal.StringFixed(2))
	assert.Equal(t, "500.00", q.DeliveryPrice.StringFixed(2))
	assert.Equal(t, "9000.00", q.Total.StringFixed(2))
}

func TestQuote_UnknownWilayaIsFree(t *testing.T) {
	q, err := newService().Quote(context.Background(), QuoteRequest{
		Wilaya: "Tamanrasset",
		Items:  []Item{{ProductID: 2, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.True(t, q.DeliveryPrice.IsZero())
	assert.Equal(t, "250.00", q.Total.StringFixed(2))
}

func TestQuote_LengthOnUnitProduct(t *testing.T) {
	q, err := newService().Quote(context.Background(), QuoteRequest{
		Items: []Item{{ProductID: 2, Quantity: 2, Length: decPtr("3")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "500.00", q.Lines[0].Price.StringFixed(2))
	assert.Equal(t, "250.00 DA × 2", q.Lines[0].Calculation)
}

func TestQuote_Errors(t *testing.T) {
	s := newService()

	_, err := s.Quote(context.Background(), QuoteRequest{})
	assert.ErrorIs(t, err, pricing.ErrNoItems)

	_, err = s.Quote(context.Background(), QuoteRequest{Items: []Item{{ProductID: 1, Quantity: 1, Length: decPtr("0")}}})
	var verr *pricing.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "items[0].length", verr.Field)

	_, err = s.Quote(context.Background(), QuoteRequest{Items: []Item{{ProductID: 99, Quantity: 1}}})
	assert.ErrorIs(t, err, ErrProductNotFound)
}
