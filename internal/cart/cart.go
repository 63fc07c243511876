package cart

import "github.com/shopspring/decimal"

// Item is one line of a storefront cart as sent by the client.
type Item struct {
	ProductID int              `json:"product"`
	Quantity  int              `json:"quantity"`
	Length    *decimal.Decimal `json:"longueur"`
	Color     string           `json:"color,omitempty"`
}

type QuoteRequest struct {
	Wilaya string `json:"wilaya"`
	Items  []Item `json:"items"`
}

// QuoteLine shows how a line price was obtained.
type QuoteLine struct {
	ProductID   int              `json:"product"`
	Name        string           `json:"product_name"`
	Quantity    int              `json:"quantity"`
	Length      *decimal.Decimal `json:"longueur,omitempty"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
	MetrePrice  *decimal.Decimal `json:"metre_price,omitempty"`
	Price       decimal.Decimal  `json:"price"`
	Calculation string           `json:"calculation"`
}

type Quote struct {
	Lines         []QuoteLine     `json:"lines"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	DeliveryPrice decimal.Decimal `json:"delivery_price"`
	Total         decimal.Decimal `json:"total"`
}
