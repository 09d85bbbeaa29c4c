package app

import (
	"context"
	"log/slog"

	"github.com/KyleRui0202/acme-wines/internal/orders/app/commands"
	"github.com/KyleRui0202/acme-wines/internal/orders/app/queries"
	"github.com/KyleRui0202/acme-wines/internal/orders/domain"
	"github.com/KyleRui0202/acme-wines/internal/orders/metrics"
	"github.com/KyleRui0202/acme-wines/internal/orders/ports"
)

// Service bundles use cases for handling orders via the API.
type Service struct {
	rules              domain.Rules
	idemStore          ports.IdempotencyStore
	createOrderHandler commands.CommandHandler
	getOrderHandler    *queries.GetOrderQueryHandler
	listOrdersHandler  *queries.ListOrdersQueryHandler
}

// NewService wires required dependencies.
func NewService(
	repo ports.OrderRepository,
	events ports.EventBus,
	idem ports.IdempotencyStore,
	rules domain.Rules,
	logger *slog.Logger,
	metrics *metrics.Metrics,
) *Service {
	coreHandler := commands.NewCreateOrderCommandHandler(repo, events, rules)
	observableHandler := commands.NewObservableCommandHandler(coreHandler, logger, metrics)

	return &Service{
		rules:              rules,
		idemStore:          idem,
		createOrderHandler: observableHandler,
		getOrderHandler:    queries.NewGetOrderQueryHandler(repo),
		listOrdersHandler:  queries.NewListOrdersQueryHandler(repo),
	}
}

// CreateOrderInput captures the payload for creating an order. A nil ID means
// the caller omitted the required identity.
type CreateOrderInput struct {
	ID       *int64  `json:"id"`
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	State    *string `json:"state"`
	Zipcode  *string `json:"zipcode"`
	Birthday *string `json:"birthday"`
}

// CreateOrder validates, saves and announces a new order.
func (s *Service) CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Record, error) {
	cmd := commands.CreateOrderCommand{
		Name:     input.Name,
		Email:    input.Email,
		State:    input.State,
		Zipcode:  input.Zipcode,
		Birthday: input.Birthday,
	}
	if input.ID != nil {
		cmd.ID = *input.ID
	}
	return s.createOrderHandler.Handle(ctx, cmd)
}

// GetOrder retrieves an order by id.
func (s *Service) GetOrder(ctx context.Context, id int64) (*domain.Record, error) {
	return s.getOrderHandler.Handle(ctx, queries.GetOrderQuery{OrderID: id})
}

// ListOrders runs the filter task over the raw query parameters.
func (s *Service) ListOrders(ctx context.Context, params map[string]string) (*queries.EffectFilters, []domain.Record, error) {
	return s.listOrdersHandler.Handle(ctx, params)
}

// Rules exposes the validation configuration, e.g. for rendering views.
func (s *Service) Rules() domain.Rules {
	return s.rules
}

// SaveIdempotentResponse writes response details for a key.
func (s *Service) SaveIdempotentResponse(ctx context.Context, key string, response ports.StoredResponse) error {
	return s.idemStore.Save(ctx, key, response)
}

// GetIdempotentResponse retrieves previously stored response data.
func (s *Service) GetIdempotentResponse(ctx context.Context, key string) (*ports.StoredResponse, error) {
	return s.idemStore.Get(ctx, key)
}
