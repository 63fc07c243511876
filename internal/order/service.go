package order

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wichananm65/hvmc-store-backend/internal/events"
	"github.com/wichananm65/hvmc-store-backend/internal/pricing"
	"github.com/wichananm65/hvmc-store-backend/internal/product"
	"github.com/wichananm65/hvmc-store-backend/internal/user"
)

// ProductReader resolves catalog products for pricing.
type ProductReader interface {
	GetByID(ctx context.Context, id int) (product.Product, error)
}

// ClientReader resolves linked client accounts for reporting.
type ClientReader interface {
	GetByID(ctx context.Context, id int) (user.User, error)
}

// Service assembles, prices and persists orders.
type Service struct {
	repo     Repository
	products ProductReader
	fees     pricing.FeeTable
	clients  ClientReader
	events   events.Publisher
	now      func() time.Time
}

func NewService(repo Repository, products ProductReader, fees pricing.FeeTable, clients ClientReader, pub events.Publisher) *Service {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Service{
		repo:     repo,
		products: products,
		fees:     fees,
		clients:  clients,
		events:   pub,
		now:      time.Now,
	}
}

// Create prices every requested line, resolves the delivery fee from the
// guest wilaya and stores the order with its items in one transaction.
func (s *Service) Create(ctx context.Context, id Identity, reqs []ItemRequest) (Order, error) {
	items, err := s.priceItems(ctx, reqs)
	if err != nil {
		return Order{}, err
	}

	fee, err := pricing.LookupDeliveryFee(ctx, s.fees, id.Guest.Wilaya)
	if err != nil {
		return Order{}, fmt.Errorf("delivery fee: %w", err)
	}

	prices := make([]decimal.Decimal, 0, len(items))
	for _, it := range items {
		prices = append(prices, it.Price)
	}

	o := Order{
		Reference:     uuid.New(),
		Guest:         trimGuest(id.Guest),
		CreatedAt:     s.now().UTC(),
		DeliveryPrice: fee,
		TotalPrice:    pricing.OrderTotal(prices, fee),
		Items:         items,
	}
	if id.ClientID > 0 {
		clientID := id.ClientID
		o.ClientID = &clientID
	}

	created, err := s.repo.Create(ctx, o)
	if err != nil {
		return Order{}, err
	}

	if err := s.events.Publish(ctx, created.Reference.String(), CreatedEvent{Type: "order.created", Order: created}); err != nil {
		log.Printf("[order] publish order.created for %d failed: %v", created.ID, err)
	}
	return created, nil
}

// Update applies a partial update. Replaced items are repriced but the stored
// delivery and total prices are kept as they were at creation.
func (s *Service) Update(ctx context.Context, caller Caller, id int, patch Patch) (Order, error) {
	o, err := s.load(ctx, caller, id)
	if err != nil {
		return Order{}, err
	}

	if patch.IsSent != nil {
		o.IsSent = *patch.IsSent
	}
	if !o.HasClient() {
		applyGuestPatch(&o.Guest, patch)
	}

	replace := len(patch.Items) > 0
	if replace {
		items, err := s.priceItems(ctx, patch.Items)
		if err != nil {
			return Order{}, err
		}
		o.Items = items
	}
	return s.repo.Update(ctx, o, replace)
}

func (s *Service) Get(ctx context.Context, caller Caller, id int) (Order, error) {
	return s.load(ctx, caller, id)
}

func (s *Service) Delete(ctx context.Context, caller Caller, id int) error {
	if _, err := s.load(ctx, caller, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// ListForClient returns the orders linked to the client, newest first.
func (s *Service) ListForClient(ctx context.Context, clientID int) ([]Order, error) {
	if clientID <= 0 {
		return nil, ErrPermissionDenied
	}
	return s.repo.ListByClient(ctx, clientID)
}

func (s *Service) List(ctx context.Context, caller Caller, f Filter) ([]Order, error) {
	if !caller.IsStaff {
		return nil, ErrPermissionDenied
	}
	return s.repo.List(ctx, f)
}

// SetSent flags the given orders as sent or unsent and returns how many rows
// changed.
func (s *Service) SetSent(ctx context.Context, caller Caller, ids []int, sent bool) (int, error) {
	if !caller.IsStaff {
		return 0, ErrPermissionDenied
	}
	if len(ids) == 0 {
		return 0, &pricing.ValidationError{Field: "ids", Err: errors.New("at least one order id is required")}
	}
	return s.repo.SetSent(ctx, ids, sent)
}

// ExportRows builds report rows for the given ids, or for every order
// matching f when ids is empty.
func (s *Service) ExportRows(ctx context.Context, caller Caller, ids []int, f Filter) ([]ExportRow, error) {
	if !caller.IsStaff {
		return nil, ErrPermissionDenied
	}
	var (
		orders []Order
		err    error
	)
	if len(ids) > 0 {
		orders, err = s.repo.ListByIDs(ctx, ids)
	} else {
		orders, err = s.repo.List(ctx, f)
	}
	if err != nil {
		return nil, err
	}
	return BuildExportRows(ctx, s.clients, orders), nil
}

func (s *Service) load(ctx context.Context, caller Caller, id int) (Order, error) {
	if caller.UserID <= 0 && !caller.IsStaff {
		return Order{}, ErrPermissionDenied
	}
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if !caller.canAccess(o) {
		return Order{}, ErrNotFound
	}
	return o, nil
}

func (s *Service) priceItems(ctx context.Context, reqs []ItemRequest) ([]LineItem, error) {
	if len(reqs) == 0 {
		return nil, &pricing.ValidationError{Field: "items", Err: pricing.ErrNoItems}
	}

	items := make([]LineItem, 0, len(reqs))
	for i, r := range reqs {
		if err := pricing.ValidateLine(r.Quantity, r.Length); err != nil {
			return nil, itemError(i, err)
		}

		p, err := s.products.GetByID(ctx, r.ProductID)
		if err != nil {
			if errors.Is(err, product.ErrNotFound) {
				return nil, fmt.Errorf("items[%d]: %w: %d", i, ErrProductNotFound, r.ProductID)
			}
			return nil, err
		}

		price, err := pricing.LineItemPrice(p.Pricing(), r.Quantity, r.Length)
		if err != nil {
			return nil, itemError(i, err)
		}

		name := strings.TrimSpace(r.ProductName)
		if name == "" {
			name = p.Name
		}
		items = append(items, LineItem{
			ProductID:   p.ID,
			Quantity:    r.Quantity,
			Length:      r.Length,
			Color:       strings.TrimSpace(r.Color),
			ProductName: name,
			Price:       price,
		})
	}
	return items, nil
}

func itemError(i int, err error) error {
	var verr *pricing.ValidationError
	if errors.As(err, &verr) {
		return &pricing.ValidationError{Field: fmt.Sprintf("items[%d].%s", i, verr.Field), Err: verr.Err}
	}
	return err
}

func applyGuestPatch(g *Guest, p Patch) {
	if p.GuestName != nil {
		g.Name = strings.TrimSpace(*p.GuestName)
	}
	if p.GuestEmail != nil {
		g.Email = strings.TrimSpace(*p.GuestEmail)
	}
	if p.GuestPhone != nil {
		g.Phone = strings.TrimSpace(*p.GuestPhone)
	}
	if p.GuestWilaya != nil {
		g.Wilaya = strings.TrimSpace(*p.GuestWilaya)
	}
	if p.GuestAddress != nil {
		g.Address = *p.GuestAddress
	}
}

func trimGuest(g Guest) Guest {
	g.Name = strings.TrimSpace(g.Name)
	g.Email = strings.TrimSpace(g.Email)
	g.Phone = strings.TrimSpace(g.Phone)
	g.Wilaya = strings.TrimSpace(g.Wilaya)
	return g
}
