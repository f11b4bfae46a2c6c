// Package risk holds the admission-control gates. Gates are pure: they
// consume a point-in-time account snapshot plus the proposed amount and
// return a fresh GateResult. Nothing here caches or mutates.
package risk

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AccountSnapshot is a single read of cash and holdings from the brokerage.
// Callers must take a fresh snapshot per evaluation; acting on a stale one
// defeats Gate B entirely.
type AccountSnapshot struct {
	AvailableCash float64
	HeldValue     float64
	Holdings      map[string]int64 // symbol -> quantity
	ReadAt        time.Time
}

// TotalAssets returns cash plus held value.
func (s AccountSnapshot) TotalAssets() float64 {
	total, _ := decimal.NewFromFloat(s.AvailableCash).Add(decimal.NewFromFloat(s.HeldValue)).Float64()
	return total
}

// Holds reports whether the account already has a position in symbol.
func (s AccountSnapshot) Holds(symbol string) bool {
	qty, ok := s.Holdings[symbol]
	return ok && qty > 0
}

// Limits are the portfolio-level risk limits, injected from configuration.
type Limits struct {
	MinPositionPct    float64
	MinCashReservePct float64
	MaxPositions      int
}

// Gate names as they appear in audit events.
const (
	GateMinPosition = "A"
	GateCashReserve = "B"
	GateMaxPosCount = "C"
	GateDataQuality = "data_quality"
)

// GateResult is the outcome of one evaluation. Immutable; it only surfaces
// through audit events and is never persisted on its own.
type GateResult struct {
	Blocked bool
	Gate    string
	Reason  string
}

// Pass is the unblocked result.
func Pass() GateResult { return GateResult{} }

func blocked(gate, reason string) GateResult {
	return GateResult{Blocked: true, Gate: gate, Reason: reason}
}

// EvaluateBuy runs gates A, B and C in order against the snapshot and returns
// the first block, or the unblocked result when all pass. Equality passes on
// both threshold gates. Amounts are compared as decimals; KRW sums routinely
// exceed float32 precision and drift on repeated float64 arithmetic.
func EvaluateBuy(snap AccountSnapshot, symbol string, suggestedAmount float64, lim Limits) GateResult {
	cash := decimal.NewFromFloat(snap.AvailableCash)
	total := cash.Add(decimal.NewFromFloat(snap.HeldValue))
	amount := decimal.NewFromFloat(suggestedAmount)
	hundred := decimal.NewFromInt(100)

	// Gate A: minimum position size.
	threshold := total.Mul(decimal.NewFromFloat(lim.MinPositionPct)).Div(hundred)
	if amount.LessThan(threshold) {
		return blocked(GateMinPosition, fmt.Sprintf(
			"suggested amount %s below minimum position size %s (%.2f%% of total assets %s)",
			amount.StringFixed(0), threshold.StringFixed(0), lim.MinPositionPct, total.StringFixed(0)))
	}

	// Gate B: cash reserve after the buy.
	cashAfter := cash.Sub(amount)
	minCash := total.Mul(decimal.NewFromFloat(lim.MinCashReservePct)).Div(hundred)
	if cashAfter.LessThan(minCash) {
		return blocked(GateCashReserve, fmt.Sprintf(
			"cash after buy %s below reserve floor %s (%.2f%% of total assets %s)",
			cashAfter.StringFixed(0), minCash.StringFixed(0), lim.MinCashReservePct, total.StringFixed(0)))
	}

	// Gate C: position count. Adding to an already-held symbol always passes,
	// even at the cap.
	if !snap.Holds(symbol) && lim.MaxPositions > 0 && len(snap.Holdings) >= lim.MaxPositions {
		return blocked(GateMaxPosCount, fmt.Sprintf(
			"new position in %s would exceed max positions %d (currently %d)",
			symbol, lim.MaxPositions, len(snap.Holdings)))
	}

	return Pass()
}

// DataQualityFailureThreshold is the rolling failure count at which a
// symbol's upstream data feed is considered untrustworthy.
const DataQualityFailureThreshold = 2

// EvaluateDataQuality blocks a symbol whose upstream feed has failed
// repeatedly. It is a separate entry point, not part of the A/B/C chain.
func EvaluateDataQuality(symbol string, failures int) GateResult {
	if failures >= DataQualityFailureThreshold {
		return blocked(GateDataQuality, fmt.Sprintf(
			"data feed for %s failed %d times (threshold %d)", symbol, failures, DataQualityFailureThreshold))
	}
	return Pass()
}
