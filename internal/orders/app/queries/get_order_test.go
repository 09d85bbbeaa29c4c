package queries_test

import (
	"context"
	"errors"
	"testing"

	"github.com/KyleRui0202/acme-wines/internal/orders/app/queries"
	"github.com/KyleRui0202/acme-wines/internal/orders/domain"
	"github.com/KyleRui0202/acme-wines/internal/orders/ports"
)

func TestGetOrder(t *testing.T) {
	t.Run("returns the order when found", func(t *testing.T) {
		repo := &mockRepository{
			getByIDFn: func(_ context.Context, id int64) (*domain.Record, error) {
				return &domain.Record{ID: id}, nil
			},
		}
		handler := queries.NewGetOrderQueryHandler(repo)

		rec, err := handler.Handle(context.Background(), queries.GetOrderQuery{OrderID: 42})
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if rec == nil || rec.ID != 42 {
			t.Fatalf("expected record with id 42, got %+v", rec)
		}
	})

	t.Run("propagates not found", func(t *testing.T) {
		repo := &mockRepository{
			getByIDFn: func(_ context.Context, _ int64) (*domain.Record, error) {
				return nil, ports.ErrNotFound
			},
		}
		handler := queries.NewGetOrderQueryHandler(repo)

		_, err := handler.Handle(context.Background(), queries.GetOrderQuery{OrderID: 42})
		if !errors.Is(err, ports.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got: %v", err)
		}
	})

	t.Run("rejects a non-positive id", func(t *testing.T) {
		handler := queries.NewGetOrderQueryHandler(&mockRepository{})

		_, err := handler.Handle(context.Background(), queries.GetOrderQuery{OrderID: 0})
		if err == nil {
			t.Fatal("expected error, got nil")
		}
	})
}
