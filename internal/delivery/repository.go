package delivery

import (
	"context"
	"errors"
	"sort"
	"sync"
)

var (
	ErrNotFound      = errors.New("wilaya not found")
	ErrDuplicateName = errors.New("wilaya already exists")
)

type Repository interface {
	List(ctx context.Context) ([]Wilaya, error)
	GetByID(ctx context.Context, id int) (Wilaya, error)
	GetByName(ctx context.Context, name string) (Wilaya, error)
	Create(ctx context.Context, w Wilaya) (Wilaya, error)
	Update(ctx context.Context, id int, w Wilaya) (Wilaya, error)
	Delete(ctx context.Context, id int) error
}

// InMemoryRepository keeps wilayas in a map keyed by ID. Used by tests and
// local runs without a database.
type InMemoryRepository struct {
	mu     sync.RWMutex
	byID   map[int]Wilaya
	nextID int
}

func NewInMemoryRepository(seed []Wilaya) *InMemoryRepository {
	r := &InMemoryRepository{byID: make(map[int]Wilaya, len(seed)), nextID: 1}
	for _, w := range seed {
		if w.ID == 0 {
			w.ID = r.nextID
		}
		r.byID[w.ID] = w
		if w.ID >= r.nextID {
			r.nextID = w.ID + 1
		}
	}
	return r
}

func (r *InMemoryRepository) List(ctx context.Context) ([]Wilaya, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Wilaya, 0, len(r.byID))
	for _, w := range r.byID {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id int) (Wilaya, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.byID[id]
	if !ok {
		return Wilaya{}, ErrNotFound
	}
	return w, nil
}

func (r *InMemoryRepository) GetByName(ctx context.Context, name string) (Wilaya, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, w := range r.byID {
		if w.Name == name {
			return w, nil
		}
	}
	return Wilaya{}, ErrNotFound
}

func (r *InMemoryRepository) Create(ctx context.Context, w Wilaya) (Wilaya, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.nameTaken(w.Name, 0) {
		return Wilaya{}, ErrDuplicateName
	}
	w.ID = r.nextID
	r.nextID++
	r.byID[w.ID] = w
	return w, nil
}

func (r *InMemoryRepository) Update(ctx context.Context, id int, w Wilaya) (Wilaya, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return Wilaya{}, ErrNotFound
	}
	if r.nameTaken(w.Name, id) {
		return Wilaya{}, ErrDuplicateName
	}
	w.ID = id
	r.byID[id] = w
	return w, nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *InMemoryRepository) nameTaken(name string, exceptID int) bool {
	for id, w := range r.byID {
		if id != exceptID && w.Name == name {
			return true
		}
	}
	return false
}
