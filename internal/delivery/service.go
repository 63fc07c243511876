package delivery

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/hvmc-store-backend/internal/pricing"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]Wilaya, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int) (Wilaya, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, w Wilaya) (Wilaya, error) {
	if err := normalize(&w); err != nil {
		return Wilaya{}, err
	}
	return s.repo.Create(ctx, w)
}

func (s *Service) Update(ctx context.Context, id int, w Wilaya) (Wilaya, error) {
	if err := normalize(&w); err != nil {
		return Wilaya{}, err
	}
	return s.repo.Update(ctx, id, w)
}

func (s *Service) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

// DeliveryFee implements pricing.FeeTable. The name must match exactly.
func (s *Service) DeliveryFee(ctx context.Context, name string) (decimal.Decimal, error) {
	w, err := s.repo.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return decimal.Zero, pricing.ErrUnknownRegion
		}
		return decimal.Zero, err
	}
	return w.DeliveryPrice, nil
}

// Quote answers a storefront delivery price lookup. It never fails: a missing,
// unknown or unreadable region yields a zero price with an explanation.
func (s *Service) Quote(ctx context.Context, name string) Quote {
	name = strings.TrimSpace(name)
	if name == "" {
		return Quote{Message: "Wilaya not specified"}
	}

	w, err := s.repo.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Quote{Message: fmt.Sprintf("No delivery price found for %s", name)}
		}
		log.Printf("[delivery] quote lookup for %q failed: %v", name, err)
		return Quote{Message: fmt.Sprintf("Could not load delivery price for %s", name)}
	}
	return Quote{DeliveryPrice: w.DeliveryPrice.InexactFloat64(), Wilaya: w.Name}
}

func normalize(w *Wilaya) error {
	w.Name = strings.TrimSpace(w.Name)
	if w.Name == "" {
		return &pricing.ValidationError{Field: "name", Err: errors.New("name is required")}
	}
	if w.DeliveryPrice.IsNegative() {
		return &pricing.ValidationError{Field: "delivery_price", Err: errors.New("delivery_price must be >= 0")}
	}
	w.DeliveryPrice = w.DeliveryPrice.Round(2)
	return nil
}
