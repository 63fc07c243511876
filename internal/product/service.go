package product

import (
	"context"
	"errors"
	"strings"

	"github.com/wichananm65/hvmc-store-backend/internal/pricing"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, f Filter) ([]Product, error) {
	return s.repo.List(ctx, f)
}

func (s *Service) GetByID(ctx context.Context, id int) (Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, p Product) (Product, error) {
	if err := validate(&p); err != nil {
		return Product{}, err
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) Update(ctx context.Context, id int, p Product) (Product, error) {
	if err := validate(&p); err != nil {
		return Product{}, err
	}
	return s.repo.Update(ctx, id, p)
}

func (s *Service) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

func validate(p *Product) error {
	p.Name = strings.TrimSpace(p.Name)
	switch {
	case p.Name == "":
		return &pricing.ValidationError{Field: "name", Err: errors.New("name is required")}
	case p.CategoryID <= 0:
		return &pricing.ValidationError{Field: "category", Err: errors.New("category is required")}
	case p.Price.IsNegative():
		return &pricing.ValidationError{Field: "price", Err: errors.New("price must be >= 0")}
	case p.MetrePrice != nil && p.MetrePrice.IsNegative():
		return &pricing.ValidationError{Field: "metre_price", Err: errors.New("metre_price must be >= 0")}
	}
	p.Price = p.Price.Round(2)
	if p.MetrePrice != nil {
		m := p.MetrePrice.Round(2)
		p.MetrePrice = &m
	}
	return nil
}
