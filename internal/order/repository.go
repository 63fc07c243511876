package order

import (
	"context"
	"errors"
	"sort"
	"sync"
)

var (
	ErrNotFound         = errors.New("order not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrPermissionDenied = errors.New("permission denied")
)

type Repository interface {
	// Create stores the order and its items atomically and returns them with
	// generated IDs.
	Create(ctx context.Context, o Order) (Order, error)
	GetByID(ctx context.Context, id int) (Order, error)
	ListByClient(ctx context.Context, clientID int) ([]Order, error)
	List(ctx context.Context, f Filter) ([]Order, error)
	ListByIDs(ctx context.Context, ids []int) ([]Order, error)
	// Update writes the order header and, when replaceItems is set, deletes
	// and recreates its items in the same transaction.
	Update(ctx context.Context, o Order, replaceItems bool) (Order, error)
	SetSent(ctx context.Context, ids []int, sent bool) (int, error)
	Delete(ctx context.Context, id int) error
}

// InMemoryRepository keeps orders in memory, newest first on listing.
type InMemoryRepository struct {
	mu         sync.RWMutex
	orders     map[int]Order
	nextID     int
	nextItemID int
}

func NewInMemoryRepository(seed []Order) *InMemoryRepository {
	r := &InMemoryRepository{orders: make(map[int]Order, len(seed)), nextID: 1, nextItemID: 1}
	for _, o := range seed {
		r.orders[o.ID] = cloneOrder(o)
		if o.ID >= r.nextID {
			r.nextID = o.ID + 1
		}
		for _, it := range o.Items {
			if it.ID >= r.nextItemID {
				r.nextItemID = it.ID + 1
			}
		}
	}
	return r
}

func (r *InMemoryRepository) Create(ctx context.Context, o Order) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o.ID = r.nextID
	r.nextID++
	r.assignItemIDs(o.Items)
	r.orders[o.ID] = cloneOrder(o)
	return cloneOrder(o), nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id int) (Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	return cloneOrder(o), nil
}

func (r *InMemoryRepository) ListByClient(ctx context.Context, clientID int) ([]Order, error) {
	return r.collect(func(o Order) bool { return o.OwnedBy(clientID) }), nil
}

func (r *InMemoryRepository) List(ctx context.Context, f Filter) ([]Order, error) {
	return r.collect(func(o Order) bool { return f.IsSent == nil || o.IsSent == *f.IsSent }), nil
}

func (r *InMemoryRepository) ListByIDs(ctx context.Context, ids []int) ([]Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Order, 0, len(ids))
	for _, id := range ids {
		if o, ok := r.orders[id]; ok {
			out = append(out, cloneOrder(o))
		}
	}
	return out, nil
}

func (r *InMemoryRepository) Update(ctx context.Context, o Order, replaceItems bool) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.orders[o.ID]
	if !ok {
		return Order{}, ErrNotFound
	}
	if replaceItems {
		r.assignItemIDs(o.Items)
	} else {
		o.Items = existing.Items
	}
	r.orders[o.ID] = cloneOrder(o)
	return cloneOrder(o), nil
}

func (r *InMemoryRepository) SetSent(ctx context.Context, ids []int, sent bool) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, id := range ids {
		if o, ok := r.orders[id]; ok {
			o.IsSent = sent
			r.orders[id] = o
			n++
		}
	}
	return n, nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[id]; !ok {
		return ErrNotFound
	}
	delete(r.orders, id)
	return nil
}

func (r *InMemoryRepository) assignItemIDs(items []LineItem) {
	for i := range items {
		items[i].ID = r.nextItemID
		r.nextItemID++
	}
}

func (r *InMemoryRepository) collect(keep func(Order) bool) []Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Order, 0)
	for _, o := range r.orders {
		if keep(o) {
			out = append(out, cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func cloneOrder(o Order) Order {
	o.Items = append([]LineItem(nil), o.Items...)
	if o.ClientID != nil {
		id := *o.ClientID
		o.ClientID = &id
	}
	return o
}
