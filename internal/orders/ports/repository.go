package ports

import (
	"context"
	"errors"

	"github.com/KyleRui0202/acme-wines/internal/orders/domain"
)

// OrderRepository exposes persistence operations required by the application layer.
type OrderRepository interface {
	// Create inserts a new order. An already-used id is an identity
	// violation and yields ErrDuplicateID, never a silent overwrite.
	Create(ctx context.Context, rec domain.Record) error
	GetByID(ctx context.Context, id int64) (*domain.Record, error)
	// List returns orders matching the filter, ordered by id ascending.
	List(ctx context.Context, filter ListFilter) ([]domain.Record, error)
}

// ListFilter narrows list queries. All predicates are combined with AND; nil
// or absent entries apply no restriction.
type ListFilter struct {
	Limit  *int
	Offset *int
	Valid  *bool
	// Equals holds exact-match predicates on normalized field values.
	Equals map[domain.Field]string
	// Contains holds case-insensitive substring predicates.
	Contains map[domain.Field]string
}

// EqualsFields and ContainsFields fix which fields can be filtered and the
// order predicates are evaluated in.
var (
	EqualsFields   = []domain.Field{domain.FieldName, domain.FieldEmail, domain.FieldState, domain.FieldZipcode}
	ContainsFields = []domain.Field{domain.FieldName, domain.FieldEmail, domain.FieldZipcode}
)

var (
	// ErrNotFound is returned when the requested order does not exist.
	ErrNotFound = errors.New("order not found")
	// ErrDuplicateID is returned when an order id is already taken.
	ErrDuplicateID = errors.New("order id already exists")
)
