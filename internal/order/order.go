package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Guest holds the contact details sent with a checkout. They are ignored for
// display when the order is linked to a client account.
type Guest struct {
	Name    string `json:"guest_name"`
	Email   string `json:"guest_email"`
	Phone   string `json:"guest_phone"`
	Wilaya  string `json:"guest_wilaya"`
	Address string `json:"guest_address"`
}

// LineItem is one priced line of an order. ProductName is a snapshot taken
// when the line was created.
type LineItem struct {
	ID          int              `json:"id"`
	ProductID   int              `json:"product"`
	Quantity    int              `json:"quantity"`
	Length      *decimal.Decimal `json:"longueur"`
	Color       string           `json:"color"`
	ProductName string           `json:"product_name"`
	Price       decimal.Decimal  `json:"price"`
}

// Order is a placed order. DeliveryPrice and TotalPrice are fixed at creation.
type Order struct {
	ID        int       `json:"id"`
	Reference uuid.UUID `json:"reference"`
	ClientID  *int      `json:"client"`
	Guest
	CreatedAt     time.Time       `json:"created_at"`
	IsSent        bool            `json:"is_sent"`
	DeliveryPrice decimal.Decimal `json:"delivery_price"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	Items         []LineItem      `json:"items"`
}

func (o Order) HasClient() bool { return o.ClientID != nil }

// OwnedBy reports whether the order is linked to the given client.
func (o Order) OwnedBy(userID int) bool {
	return o.ClientID != nil && userID > 0 && *o.ClientID == userID
}

// ItemsSubtotal sums the stored line prices.
func (o Order) ItemsSubtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range o.Items {
		sum = sum.Add(it.Price)
	}
	return sum
}

// ItemRequest is a requested line as sent by the storefront. Any client-side
// price is ignored.
type ItemRequest struct {
	ProductID   int              `json:"product"`
	Quantity    int              `json:"quantity"`
	Length      *decimal.Decimal `json:"longueur"`
	Color       string           `json:"color"`
	ProductName string           `json:"product_name"`
}

// Identity is who places an order. ClientID is zero for guest checkouts.
type Identity struct {
	ClientID int
	Guest    Guest
}

// Patch is a partial order update. Nil fields are left untouched; a non-empty
// Items list replaces every line.
type Patch struct {
	IsSent       *bool         `json:"is_sent"`
	GuestName    *string       `json:"guest_name"`
	GuestEmail   *string       `json:"guest_email"`
	GuestPhone   *string       `json:"guest_phone"`
	GuestWilaya  *string       `json:"guest_wilaya"`
	GuestAddress *string       `json:"guest_address"`
	Items        []ItemRequest `json:"items"`
}

// Caller is the authenticated principal acting on existing orders.
type Caller struct {
	UserID  int
	IsStaff bool
}

func (c Caller) canAccess(o Order) bool {
	return c.IsStaff || o.OwnedBy(c.UserID)
}

type Filter struct {
	IsSent *bool
}

// CreatedEvent is published once an order is committed.
type CreatedEvent struct {
	Type string `json:"type"`
	Order
}
