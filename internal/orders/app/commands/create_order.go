package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/KyleRui0202/acme-wines/internal/orders/domain"
	"github.com/KyleRui0202/acme-wines/internal/orders/ports"
)

// CreateOrderCommand carries the raw field values of a new order. The id is
// caller-supplied; nil fields were not provided and are left to the
// required-field check at save time.
type CreateOrderCommand struct {
	ID       int64
	Name     *string
	Email    *string
	State    *string
	Zipcode  *string
	Birthday *string
}

// Validate checks the identity; everything else is recorded on the order
// itself, not rejected here.
func (c CreateOrderCommand) Validate() error {
	if c.ID <= 0 {
		return errors.New("id is required and must be positive")
	}
	return nil
}

// CommandHandler handles order creation.
type CommandHandler interface {
	Handle(ctx context.Context, cmd CreateOrderCommand) (*domain.Record, error)
}

// CreateOrderCommandHandler builds the order entity from the command, runs
// the deferred required-field check, and persists the result. Orders that
// fail validation are still saved, with valid=false and the failure map
// recorded, so the caller can inspect what went wrong.
type CreateOrderCommandHandler struct {
	repo   ports.OrderRepository
	events ports.EventBus
	rules  domain.Rules
}

// NewCreateOrderCommandHandler constructs a CreateOrderCommandHandler.
func NewCreateOrderCommandHandler(
	repo ports.OrderRepository,
	events ports.EventBus,
	rules domain.Rules,
) *CreateOrderCommandHandler {
	return &CreateOrderCommandHandler{
		repo:   repo,
		events: events,
		rules:  rules,
	}
}

// Handle creates and persists the order. When the event publish fails after
// a successful save, the saved record is returned along with the error.
func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*domain.Record, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	order := domain.New(cmd.ID, h.rules)
	for _, fv := range []struct {
		field domain.Field
		value *string
	}{
		{domain.FieldName, cmd.Name},
		{domain.FieldEmail, cmd.Email},
		{domain.FieldState, cmd.State},
		{domain.FieldZipcode, cmd.Zipcode},
		{domain.FieldBirthday, cmd.Birthday},
	} {
		if fv.value == nil {
			continue
		}
		if err := order.Set(fv.field, *fv.value); err != nil {
			return nil, err
		}
	}

	order.CheckRequired()
	rec := order.Snapshot()

	if err := h.repo.Create(ctx, rec); err != nil {
		return nil, err
	}

	if err := h.events.PublishOrderReceived(ctx, rec.ID, order.Valid()); err != nil {
		return &rec, fmt.Errorf("order saved but failed to publish event: %w", err)
	}

	return &rec, nil
}
