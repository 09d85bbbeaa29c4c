package ports

import "context"

// EventBus defines the contract for publishing order lifecycle events.
type EventBus interface {
	PublishOrderReceived(ctx context.Context, orderID int64, valid bool) error
}
