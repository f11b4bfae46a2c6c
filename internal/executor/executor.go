// Package executor drives the signal lifecycle: admission gates on intake,
// operator approve/reject, order placement, the off-hours queue and its
// scheduled drain, and recovery of non-terminal signals after a restart.
//
// One mutex guards every state change. Each operation acquires it for its
// whole duration, brokerage calls included, so exactly one writer ever moves
// a signal at a time and each order is placed at most once per signal.
package executor

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Wingseter/signal-smith-sub001/internal/audit"
	"github.com/Wingseter/signal-smith-sub001/internal/broker"
	"github.com/Wingseter/signal-smith-sub001/internal/logger"
	"github.com/Wingseter/signal-smith-sub001/internal/risk"
	"github.com/Wingseter/signal-smith-sub001/internal/signal"
	"github.com/Wingseter/signal-smith-sub001/internal/store"

	"github.com/shopspring/decimal"
)

// Repository is the durable side of the lifecycle. *store.SignalStore
// satisfies it.
type Repository interface {
	InsertSignal(ctx context.Context, sig *signal.InvestmentSignal) error
	UpdateSignalStatus(ctx context.Context, id string, status signal.Status, extras store.StatusExtras) error
	ListPendingSignals(ctx context.Context) ([]*signal.InvestmentSignal, error)
}

// Sink receives audit events. Writes are best-effort; the recorder never
// fails a transition.
type Sink interface {
	Record(ctx context.Context, evt audit.Event)
}

// Deps wires the executor's collaborators.
type Deps struct {
	Gateway broker.Gateway
	Hours   broker.MarketHours
	Repo    Repository
	Sink    Sink
	Bus     *audit.Bus
	Limits  func() risk.Limits
	Now     func() time.Time
}

// Executor owns the in-memory pending set and the FIFO execution queue.
type Executor struct {
	mu      sync.Mutex
	pending map[string]*signal.InvestmentSignal
	queued  []*signal.InvestmentSignal

	feedFailures map[string]int

	gateway broker.Gateway
	hours   broker.MarketHours
	repo    Repository
	sink    Sink
	bus     *audit.Bus
	limits  func() risk.Limits
	now     func() time.Time
}

// New builds an Executor. Gateway, hours, repo and limits are mandatory.
func New(deps Deps) (*Executor, error) {
	if deps.Gateway == nil {
		return nil, fmt.Errorf("executor: gateway required")
	}
	if deps.Hours == nil {
		return nil, fmt.Errorf("executor: market hours required")
	}
	if deps.Repo == nil {
		return nil, fmt.Errorf("executor: repository required")
	}
	if deps.Limits == nil {
		return nil, fmt.Errorf("executor: limits provider required")
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Executor{
		pending:      make(map[string]*signal.InvestmentSignal),
		feedFailures: make(map[string]int),
		gateway:      deps.Gateway,
		hours:        deps.Hours,
		repo:         deps.Repo,
		sink:         deps.Sink,
		bus:          deps.Bus,
		limits:       deps.Limits,
		now:          now,
	}, nil
}

// Submit runs admission control on a freshly classified signal. Buy signals
// pass the data-quality gate and the A/B/C chain against a snapshot read
// inside this call; a block, or any failure to obtain the snapshot, rejects
// the signal. Admitted signals are persisted PENDING and await an operator.
// The returned copy carries the post-admission status.
func (e *Executor) Submit(ctx context.Context, sig *signal.InvestmentSignal) (*signal.InvestmentSignal, error) {
	if sig == nil || strings.TrimSpace(sig.ID) == "" || strings.TrimSpace(sig.Symbol) == "" {
		return nil, ErrSignalRequired
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	sig = sig.Clone()
	sig.Status = signal.StatusPending
	if sig.CreatedAt.IsZero() {
		sig.CreatedAt = e.now()
	}
	if err := e.repo.InsertSignal(ctx, sig); err != nil {
		return nil, fmt.Errorf("persisting signal %s: %w", sig.ID, err)
	}
	e.emit(ctx, sig, audit.EventSignalCreated, map[string]any{
		"trigger_source": sig.TriggerSource,
		"confidence":     sig.Confidence,
	})

	if sig.Action != signal.ActionBuy {
		e.pending[sig.ID] = sig
		return sig.Clone(), nil
	}

	if res := risk.EvaluateDataQuality(sig.Symbol, e.feedFailures[sig.Symbol]); res.Blocked {
		e.rejectLocked(ctx, sig, res.Gate, res.Reason)
		return sig.Clone(), nil
	}

	snap, err := e.readSnapshot(ctx)
	if err != nil {
		// No reliable account view means no admission. Closed, not open.
		e.rejectLocked(ctx, sig, "", fmt.Sprintf("account snapshot unavailable: %v", err))
		return sig.Clone(), nil
	}
	if res := risk.EvaluateBuy(snap, sig.Symbol, sig.SuggestedAmount, e.limits()); res.Blocked {
		e.rejectLocked(ctx, sig, res.Gate, res.Reason)
		return sig.Clone(), nil
	}

	e.pending[sig.ID] = sig
	return sig.Clone(), nil
}

// ApproveSignal moves a pending signal forward. HOLD signals are approved
// and retired without touching the brokerage. Outside market hours the
// signal is queued for the scheduled drain. A brokerage refusal also queues
// rather than terminating; only an operator reject or an exhausted queue
// replay ends a signal without an order.
func (e *Executor) ApproveSignal(ctx context.Context, id string) (*signal.InvestmentSignal, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sig, ok := e.pending[id]
	if !ok {
		return nil, ErrSignalNotFound
	}
	delete(e.pending, id)

	e.transition(ctx, sig, signal.StatusApproved, store.StatusExtras{})
	e.emit(ctx, sig, audit.EventSignalApproved, nil)

	if sig.Action == signal.ActionHold {
		return sig.Clone(), nil
	}
	// Zero-quantity orders never reach the gateway. Fresh intake demotes
	// these to HOLD; restored rows predate that and get the same treatment.
	if sig.SuggestedQuantity <= 0 {
		logger.Warnf("approve: %s %s carries no quantity, holding without order", sig.Action, sig.Symbol)
		return sig.Clone(), nil
	}

	if open, reason := e.hours.CanExecuteOrder(e.now()); !open {
		e.enqueueLocked(ctx, sig, reason)
		return sig.Clone(), nil
	}

	res, err := e.placeOrder(ctx, sig)
	if err != nil || !res.Submitted() {
		e.enqueueLocked(ctx, sig, placementFailure(res, err))
		return sig.Clone(), nil
	}

	e.markExecutedLocked(ctx, sig, signal.StatusExecuted, res.OrderNo)
	return sig.Clone(), nil
}

// RejectSignal retires a pending signal. No brokerage call is ever made.
func (e *Executor) RejectSignal(ctx context.Context, id, reason string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	sig, ok := e.pending[id]
	if !ok {
		return ErrSignalNotFound
	}
	delete(e.pending, id)

	if reason == "" {
		reason = "rejected by operator"
	}
	e.transition(ctx, sig, signal.StatusRejected, store.StatusExtras{Reason: reason})
	e.emit(ctx, sig, audit.EventSignalRejected, map[string]any{"reason": reason})
	return nil
}

// ProcessQueuedExecutions drains the queue once, oldest first. Each entry is
// attempted at most once per drain. Buys are funded from a fresh snapshot
// minus what this drain already spent; an underfunded buy is cancelled, not
// retried forever. A brokerage refusal keeps the entry queued for the next
// drain. Outside market hours the queue is left untouched.
func (e *Executor) ProcessQueuedExecutions(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.queued) == 0 {
		return nil
	}
	if open, reason := e.hours.CanExecuteOrder(e.now()); !open {
		logger.Debugf("queue drain skipped: %s (%d queued)", reason, len(e.queued))
		return nil
	}

	batch := e.queued
	e.queued = nil
	var retained []*signal.InvestmentSignal
	spent := decimal.Zero

	for i, sig := range batch {
		if sig.SuggestedQuantity <= 0 {
			// Zero-quantity entries can only come from restored rows;
			// they are terminal here, never forwarded to the gateway.
			e.transition(ctx, sig, signal.StatusCancelled, store.StatusExtras{
				Reason:  "zero-quantity order",
				Details: map[string]any{"quantity": sig.SuggestedQuantity},
			})
			e.emit(ctx, sig, audit.EventCancelled, map[string]any{"reason": "zero-quantity order"})
			continue
		}

		if sig.Action == signal.ActionBuy {
			snap, err := e.readSnapshot(ctx)
			if err != nil {
				// Cannot verify funds; keep the rest and stop this drain.
				logger.Warnf("queue drain: snapshot failed, retaining %d entries: %v", len(batch)-i, err)
				retained = append(retained, batch[i:]...)
				break
			}
			available := decimal.NewFromFloat(snap.AvailableCash).Sub(spent)
			needed := decimal.NewFromFloat(sig.SuggestedAmount)
			if available.LessThan(needed) {
				e.transition(ctx, sig, signal.StatusCancelled, store.StatusExtras{
					Reason: fmt.Sprintf("insufficient funds: need %s, have %s",
						needed.StringFixed(0), available.StringFixed(0)),
					Details: map[string]any{
						"needed":    sig.SuggestedAmount,
						"available": available.InexactFloat64(),
					},
				})
				e.emit(ctx, sig, audit.EventCancelled, map[string]any{
					"needed":    sig.SuggestedAmount,
					"available": available.InexactFloat64(),
				})
				continue
			}
		}

		res, err := e.placeOrder(ctx, sig)
		if err != nil || !res.Submitted() {
			reason := placementFailure(res, err)
			logger.Warnf("queue drain: %s %s stays queued: %s", sig.Action, sig.Symbol, reason)
			e.emit(ctx, sig, audit.EventExecutionFault, map[string]any{"reason": reason})
			retained = append(retained, sig)
			continue
		}

		if sig.Action == signal.ActionBuy {
			spent = spent.Add(decimal.NewFromFloat(sig.SuggestedAmount))
		}
		e.markExecutedLocked(ctx, sig, signal.StatusAutoExecuted, res.OrderNo)
	}

	// Entries queued during the drain (none today, but cheap to get right)
	// go behind the retained ones.
	e.queued = append(retained, e.queued...)
	return nil
}

// RestorePendingSignals reloads non-terminal signals from the repository
// after a restart. Queued rows rejoin the execution queue in creation order;
// pending rows rejoin the pending set.
func (e *Executor) RestorePendingSignals(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	rows, err := e.repo.ListPendingSignals(ctx)
	if err != nil {
		return fmt.Errorf("restoring signals: %w", err)
	}
	var pendingN, queuedN int
	for _, sig := range rows {
		switch sig.Status {
		case signal.StatusQueued:
			e.queued = append(e.queued, sig)
			queuedN++
		case signal.StatusPending:
			e.pending[sig.ID] = sig
			pendingN++
		default:
			logger.Warnf("restore: skipping %s with unexpected status %s", sig.ID, sig.Status)
			continue
		}
		e.emit(ctx, sig, audit.EventQueueRestored, map[string]any{"status": string(sig.Status)})
	}
	if pendingN+queuedN > 0 {
		logger.Infof("restored %d pending and %d queued signals", pendingN, queuedN)
	}
	return nil
}

// ReportFeedFailure bumps the rolling data-feed failure count for symbol and
// returns the new count.
func (e *Executor) ReportFeedFailure(symbol string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	e.feedFailures[symbol]++
	return e.feedFailures[symbol]
}

// ClearFeedFailures resets the failure count after a healthy read.
func (e *Executor) ClearFeedFailures(symbol string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.feedFailures, strings.ToUpper(strings.TrimSpace(symbol)))
}

// PendingSignals returns copies of the signals awaiting an operator.
func (e *Executor) PendingSignals() []*signal.InvestmentSignal {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*signal.InvestmentSignal, 0, len(e.pending))
	for _, sig := range e.pending {
		out = append(out, sig.Clone())
	}
	return out
}

// QueuedSignals returns copies of the queue, oldest first.
func (e *Executor) QueuedSignals() []*signal.InvestmentSignal {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*signal.InvestmentSignal, 0, len(e.queued))
	for _, sig := range e.queued {
		out = append(out, sig.Clone())
	}
	return out
}

func (e *Executor) rejectLocked(ctx context.Context, sig *signal.InvestmentSignal, gate, reason string) {
	extras := store.StatusExtras{Reason: reason}
	if gate != "" {
		extras.Details = map[string]any{"gate": gate, "reason": reason}
		e.emit(ctx, sig, audit.EventGateBlocked, map[string]any{"gate": gate, "reason": reason})
	}
	e.transition(ctx, sig, signal.StatusRejected, extras)
	e.emit(ctx, sig, audit.EventSignalRejected, map[string]any{"gate": gate, "reason": reason})
}

func (e *Executor) enqueueLocked(ctx context.Context, sig *signal.InvestmentSignal, reason string) {
	e.transition(ctx, sig, signal.StatusQueued, store.StatusExtras{Reason: reason})
	e.queued = append(e.queued, sig)
	e.emit(ctx, sig, audit.EventOrderQueued, map[string]any{"reason": reason})
	logger.Infof("queued %s %s: %s", sig.Action, sig.Symbol, reason)
}

func (e *Executor) markExecutedLocked(ctx context.Context, sig *signal.InvestmentSignal, status signal.Status, orderNo string) {
	ts := e.now()
	sig.ExecutedAt = &ts
	sig.OrderNo = orderNo
	e.transition(ctx, sig, status, store.StatusExtras{OrderNo: orderNo, ExecutedAt: &ts})
	event := audit.EventOrderExecuted
	if status == signal.StatusAutoExecuted {
		event = audit.EventAutoExecuted
	}
	e.emit(ctx, sig, event, map[string]any{"order_no": orderNo})
	logger.Infof("executed %s %s qty=%d order_no=%s", sig.Action, sig.Symbol, sig.SuggestedQuantity, orderNo)
}

// transition applies a forward move in memory first, then persists. The
// brokerage side effect, when there is one, has already happened by the time
// we get here, so a persistence failure is logged and the transition stands.
func (e *Executor) transition(ctx context.Context, sig *signal.InvestmentSignal, next signal.Status, extras store.StatusExtras) {
	if !sig.Status.CanTransition(next) {
		logger.Errorf("illegal transition %s -> %s for %s, forcing forward", sig.Status, next, sig.ID)
	}
	sig.Status = next
	if err := e.repo.UpdateSignalStatus(ctx, sig.ID, next, extras); err != nil {
		logger.Warnf("persisting %s -> %s for %s failed: %v", sig.Symbol, next, sig.ID, err)
	}
}

func (e *Executor) emit(ctx context.Context, sig *signal.InvestmentSignal, eventType string, details map[string]any) {
	evt := audit.Event{
		SignalID:  sig.ID,
		EventType: eventType,
		Symbol:    sig.Symbol,
		Action:    string(sig.Action),
		Details:   details,
		CreatedAt: e.now(),
	}
	if e.sink != nil {
		e.sink.Record(ctx, evt)
	}
	if e.bus != nil {
		e.bus.Publish(evt)
	}
}

func (e *Executor) readSnapshot(ctx context.Context) (risk.AccountSnapshot, error) {
	bal, err := e.gateway.GetBalance(ctx)
	if err != nil {
		return risk.AccountSnapshot{}, fmt.Errorf("reading balance: %w", err)
	}
	holdings, err := e.gateway.GetHoldings(ctx)
	if err != nil {
		return risk.AccountSnapshot{}, fmt.Errorf("reading holdings: %w", err)
	}
	snap := risk.AccountSnapshot{
		AvailableCash: bal.AvailableAmount,
		HeldValue:     bal.TotalEvaluation,
		Holdings:      make(map[string]int64, len(holdings)),
		ReadAt:        e.now(),
	}
	for _, h := range holdings {
		if h.Quantity > 0 {
			snap.Holdings[strings.ToUpper(h.Symbol)] = h.Quantity
		}
	}
	return snap, nil
}

func (e *Executor) placeOrder(ctx context.Context, sig *signal.InvestmentSignal) (broker.OrderResult, error) {
	side := broker.SideBuy
	if sig.Action == signal.ActionSell {
		side = broker.SideSell
	}
	return e.gateway.PlaceOrder(ctx, broker.OrderRequest{
		Symbol:    sig.Symbol,
		Side:      side,
		Quantity:  sig.SuggestedQuantity,
		OrderType: "market",
	})
}

func placementFailure(res broker.OrderResult, err error) string {
	if err != nil {
		return err.Error()
	}
	if res.Message != "" {
		return res.Message
	}
	return "order not accepted"
}
