package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/KyleRui0202/acme-wines/internal/orders/domain"
	"github.com/KyleRui0202/acme-wines/internal/orders/ports"
)

// Repository provides an in-memory store useful for local development and tests.
type Repository struct {
	mu     sync.RWMutex
	orders map[int64]domain.Record
}

// NewRepository constructs a new in-memory repository.
func NewRepository() *Repository {
	return &Repository{orders: make(map[int64]domain.Record)}
}

// Create stores a new order, stamping timestamps the way the database would.
func (r *Repository) Create(_ context.Context, rec domain.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[rec.ID]; exists {
		return ports.ErrDuplicateID
	}

	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	r.orders[rec.ID] = rec.Clone()
	return nil
}

// GetByID fetches a single order by identifier.
func (r *Repository) GetByID(_ context.Context, id int64) (*domain.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := rec.Clone()
	return &clone, nil
}

// List returns orders matching the filter, ordered by id ascending.
func (r *Repository) List(_ context.Context, filter ports.ListFilter) ([]domain.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Record, 0, len(r.orders))
	for _, rec := range r.orders {
		if matches(rec, filter) {
			result = append(result, rec.Clone())
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	if filter.Offset != nil {
		if *filter.Offset >= len(result) {
			return []domain.Record{}, nil
		}
		result = result[*filter.Offset:]
	}
	if filter.Limit != nil && *filter.Limit < len(result) {
		result = result[:*filter.Limit]
	}

	return result, nil
}

func matches(rec domain.Record, filter ports.ListFilter) bool {
	// A validity filter only matches orders whose flag is actually set,
	// mirroring SQL equality against a nullable column.
	if filter.Valid != nil && (rec.Valid == nil || *rec.Valid != *filter.Valid) {
		return false
	}
	for field, want := range filter.Equals {
		value, ok := rec.Value(field)
		if !ok || value != want {
			return false
		}
	}
	for field, want := range filter.Contains {
		value, ok := rec.Value(field)
		if !ok || !strings.Contains(strings.ToLower(value), strings.ToLower(want)) {
			return false
		}
	}
	return true
}
