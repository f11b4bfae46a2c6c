// Package broker defines the brokerage gateway abstraction consumed by the
// gates and the executor, plus the market-hours oracle. The execution core
// never owns brokerage state; it reads it fresh each time.
package broker

import (
	"context"
	"time"
)

// Balance is the account-level cash view returned by the gateway.
type Balance struct {
	AvailableAmount float64 // cash available for new orders, KRW
	TotalEvaluation float64 // total value of held positions, KRW
	UpdatedAt       time.Time
}

// Holding is one held position.
type Holding struct {
	Symbol     string
	Quantity   int64
	EvalAmount float64
}

// Side is the order direction on the wire.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// OrderRequest describes one order to place.
type OrderRequest struct {
	Symbol    string
	Side      Side
	Quantity  int64
	Price     float64 // 0 for market orders
	OrderType string  // "market" or "limit"
}

// Order submission statuses reported by the gateway.
const (
	OrderStatusSubmitted = "submitted"
	OrderStatusFailed    = "failed"
)

// OrderResult is the gateway's answer to a placement attempt.
type OrderResult struct {
	Status  string
	OrderNo string
	Message string
}

// Submitted reports whether the order was accepted by the brokerage.
func (r OrderResult) Submitted() bool { return r.Status == OrderStatusSubmitted }

// Gateway is the brokerage connection. All calls are I/O and must honor ctx.
type Gateway interface {
	GetBalance(ctx context.Context) (Balance, error)
	GetHoldings(ctx context.Context) ([]Holding, error)
	PlaceOrder(ctx context.Context, req OrderRequest) (OrderResult, error)
}

// MarketHours answers whether orders can be placed right now. The reason is
// human-readable and lands in audit events for queued signals.
type MarketHours interface {
	CanExecuteOrder(now time.Time) (bool, string)
}
