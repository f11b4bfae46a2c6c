// Package signal defines the unit of work of the execution core: an
// AI-proposed trade and its lifecycle status.
package signal

import (
	"strings"
	"time"
)

// Action is the trade intent produced by the classifier.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// ParseAction normalizes free-form agent output into an Action.
// Unknown values map to HOLD so that nothing is ever traded on garbage input.
func ParseAction(raw string) Action {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "BUY":
		return ActionBuy
	case "SELL":
		return ActionSell
	default:
		return ActionHold
	}
}

// Status is the lifecycle state of a signal. Transitions move strictly
// forward; terminal states are sinks.
type Status string

const (
	StatusPending      Status = "PENDING"
	StatusApproved     Status = "APPROVED"
	StatusRejected     Status = "REJECTED"
	StatusQueued       Status = "QUEUED"
	StatusExecuted     Status = "EXECUTED"
	StatusAutoExecuted Status = "AUTO_EXECUTED"
	StatusCancelled    Status = "CANCELLED"
	StatusExpired      Status = "EXPIRED"
)

// Terminal reports whether the status is a sink.
func (s Status) Terminal() bool {
	switch s {
	case StatusRejected, StatusExecuted, StatusAutoExecuted, StatusCancelled, StatusExpired:
		return true
	default:
		return false
	}
}

// CanTransition reports whether moving from s to next is a legal forward
// transition.
func (s Status) CanTransition(next Status) bool {
	if s.Terminal() {
		return false
	}
	switch s {
	case StatusPending:
		return next == StatusApproved || next == StatusRejected
	case StatusApproved:
		return next == StatusExecuted || next == StatusQueued
	case StatusQueued:
		return next == StatusAutoExecuted || next == StatusCancelled
	default:
		return false
	}
}

// InvestmentSignal is a proposed trade awaiting admission control and
// execution. Identity is assigned at creation and never changes.
type InvestmentSignal struct {
	ID          string
	Symbol      string
	CompanyName string
	Action      Action

	SuggestedQuantity int64
	SuggestedAmount   float64 // KRW
	TargetPrice       float64
	StopLoss          float64

	Confidence        float64 // 0.0 - 1.0
	QuantScore        float64 // 1 - 10
	FundamentalScore  float64 // 1 - 10
	NewsScore         float64 // 1 - 10
	AllocationPercent float64 // signed funding allocation signal
	TriggerSource     string  // e.g. "news"
	Reason            string

	Status     Status
	CreatedAt  time.Time
	ExecutedAt *time.Time
	OrderNo    string
}

// Clone returns an independent copy so callers can hand signals across
// goroutine boundaries without sharing mutable state.
func (s *InvestmentSignal) Clone() *InvestmentSignal {
	if s == nil {
		return nil
	}
	cp := *s
	if s.ExecutedAt != nil {
		ts := *s.ExecutedAt
		cp.ExecutedAt = &ts
	}
	return &cp
}
