package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateBuy_GateA(t *testing.T) {
	lim := Limits{MinPositionPct: 8, MinCashReservePct: 0, MaxPositions: 10}
	snap := AccountSnapshot{AvailableCash: 10_000_000, HeldValue: 0}

	t.Run("below threshold blocks", func(t *testing.T) {
		res := EvaluateBuy(snap, "005930", 500_000, lim)
		assert.True(t, res.Blocked)
		assert.Equal(t, GateMinPosition, res.Gate)
	})

	t.Run("equality passes", func(t *testing.T) {
		res := EvaluateBuy(snap, "005930", 800_000, lim)
		assert.False(t, res.Blocked)
	})

	t.Run("above threshold passes", func(t *testing.T) {
		res := EvaluateBuy(snap, "005930", 900_000, lim)
		assert.False(t, res.Blocked)
	})
}

func TestEvaluateBuy_GateB(t *testing.T) {
	lim := Limits{MinPositionPct: 0, MinCashReservePct: 5, MaxPositions: 10}
	snap := AccountSnapshot{AvailableCash: 2_000_000, HeldValue: 8_000_000}

	t.Run("reserve breached blocks", func(t *testing.T) {
		res := EvaluateBuy(snap, "000660", 1_600_000, lim)
		assert.True(t, res.Blocked)
		assert.Equal(t, GateCashReserve, res.Gate)
	})

	t.Run("cash after exactly at floor passes", func(t *testing.T) {
		res := EvaluateBuy(snap, "000660", 1_500_000, lim)
		assert.False(t, res.Blocked)
	})
}

func TestEvaluateBuy_GateC(t *testing.T) {
	lim := Limits{MaxPositions: 2}
	snap := AccountSnapshot{
		AvailableCash: 10_000_000,
		Holdings:      map[string]int64{"005930": 10, "000660": 5},
	}

	t.Run("new symbol at cap blocks", func(t *testing.T) {
		res := EvaluateBuy(snap, "035420", 1_000_000, lim)
		assert.True(t, res.Blocked)
		assert.Equal(t, GateMaxPosCount, res.Gate)
	})

	t.Run("held symbol at cap passes", func(t *testing.T) {
		res := EvaluateBuy(snap, "005930", 1_000_000, lim)
		assert.False(t, res.Blocked)
	})

	t.Run("new symbol under cap passes", func(t *testing.T) {
		res := EvaluateBuy(AccountSnapshot{
			AvailableCash: 10_000_000,
			Holdings:      map[string]int64{"005930": 10},
		}, "035420", 1_000_000, lim)
		assert.False(t, res.Blocked)
	})
}

func TestEvaluateBuy_GateOrder(t *testing.T) {
	// All three gates would block; the evaluator must report A first.
	lim := Limits{MinPositionPct: 50, MinCashReservePct: 90, MaxPositions: 1}
	snap := AccountSnapshot{
		AvailableCash: 1_000_000,
		HeldValue:     9_000_000,
		Holdings:      map[string]int64{"005930": 10},
	}
	res := EvaluateBuy(snap, "035420", 100_000, lim)
	assert.True(t, res.Blocked)
	assert.Equal(t, GateMinPosition, res.Gate)
}

func TestEvaluateDataQuality(t *testing.T) {
	assert.False(t, EvaluateDataQuality("005930", 0).Blocked)
	assert.False(t, EvaluateDataQuality("005930", 1).Blocked)

	res := EvaluateDataQuality("005930", 2)
	assert.True(t, res.Blocked)
	assert.Equal(t, GateDataQuality, res.Gate)

	assert.True(t, EvaluateDataQuality("005930", 5).Blocked)
}

func TestAccountSnapshot_Holds(t *testing.T) {
	snap := AccountSnapshot{Holdings: map[string]int64{"005930": 3, "000660": 0}}
	assert.True(t, snap.Holds("005930"))
	assert.False(t, snap.Holds("000660"), "zero-quantity rows do not count as held")
	assert.False(t, snap.Holds("035420"))
}
