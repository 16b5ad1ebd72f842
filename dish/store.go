package dish

import (
	"context"
	"slices"
	"sync"
)

// Store keeps dishes in insertion order for the lifetime of the process.
// Lookups scan linearly and act on the first match, so duplicate ids shadow
// each other until the earlier one is removed.
type Store struct {
	mu     sync.RWMutex
	dishes []Dish
}

// NewStore returns a store pre-populated with seed in the given order.
func NewStore(seed ...Dish) *Store {
	return &Store{dishes: slices.Clone(seed)}
}

// Append adds d to the end of the store without checking for duplicates.
func (s *Store) Append(d Dish) Dish {
	s.mu.Lock()
	s.dishes = append(s.dishes, d)
	s.mu.Unlock()
	return d
}

// List returns a copy of all dishes. The result is never nil.
func (s *Store) List() []Dish {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Dish, len(s.dishes))
	copy(out, s.dishes)
	return out
}

// Find returns the first dish with the given id.
func (s *Store) Find(id int64) (Dish, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.index(id); i >= 0 {
		return s.dishes[i], nil
	}
	return Dish{}, ErrNotFound
}

// Update overwrites the first dish with the given id. The replacement is
// stored as-is, including its own ID field.
func (s *Store) Update(id int64, d Dish) (Dish, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return Dish{}, ErrNotFound
	}
	s.dishes[i] = d
	return d, nil
}

// Delete removes the first dish with the given id.
func (s *Store) Delete(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return ErrNotFound
	}
	s.dishes = slices.Delete(s.dishes, i, i+1)
	return nil
}

// Len reports how many dishes are stored.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.dishes)
}

// Ping reports whether the store can serve requests. An in-memory store is
// always available once constructed.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil {
		return errNilStore
	}
	return ctx.Err()
}

func (s *Store) index(id int64) int {
	return slices.IndexFunc(s.dishes, func(d Dish) bool { return d.ID == id })
}
