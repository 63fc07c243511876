package category

import (
	"context"
	"log"
)

const defaultLimit = 100

// Service provides business logic for categories.
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

// List returns up to `limit` category items. A failing store yields an empty
// list so the storefront menu still renders.
func (s *Service) List(ctx context.Context, limit int) []CategoryItem {
	if limit <= 0 {
		limit = defaultLimit
	}
	items, err := s.repo.List(ctx, limit)
	if err != nil {
		log.Printf("[category] list failed: %v", err)
		return []CategoryItem{}
	}
	return items
}
