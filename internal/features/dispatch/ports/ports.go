package ports

import (
	"context"

	"manifest-dispatcher/internal/features/dispatch/domain"
)

// OrderGateway abstracts the remote logistics service used to create,
// optimize and route delivery orders.
type OrderGateway interface {
	// Login exchanges an API token for a session identifier.
	Login(ctx context.Context, token string) (string, error)
	// CreateOrder submits one order and returns the remote identifier.
	CreateOrder(ctx context.Context, sessionID string, order *domain.Order) (int64, error)
	// OptimizeRoute reorders a resource group's orders and returns the
	// visit sequence as an ordered slice of order ids.
	OptimizeRoute(ctx context.Context, sessionID string, req domain.OptimizationRequest) ([]int64, error)
	// UpdateRoutePath recalculates the road-following path for one order.
	UpdateRoutePath(ctx context.Context, sessionID string, orderID int64) error
}

// Limiter paces outbound remote calls.
type Limiter interface {
	// Wait blocks until the next call is allowed or the context ends.
	Wait(ctx context.Context) error
}
