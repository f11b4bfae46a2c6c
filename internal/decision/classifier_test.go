package decision

import (
	"testing"

	"github.com/Wingseter/signal-smith-sub001/internal/signal"

	"github.com/stretchr/testify/assert"
)

func TestDetermineAction_News(t *testing.T) {
	base := Inputs{
		TriggerSource:     "news",
		QuantScore:        8,
		FundamentalScore:  7,
		NewsScore:         8,
		SuggestedQuantity: 10,
	}

	t.Run("negative allocation sells", func(t *testing.T) {
		in := base
		in.FinalPercent = -5
		assert.Equal(t, signal.ActionSell, DetermineAction(in))
	})

	t.Run("low news score forces sell despite strong allocation", func(t *testing.T) {
		in := base
		in.FinalPercent = 40
		in.NewsScore = 3
		assert.Equal(t, signal.ActionSell, DetermineAction(in))
	})

	t.Run("strong allocation and scores buys", func(t *testing.T) {
		in := base
		in.FinalPercent = 10
		assert.Equal(t, signal.ActionBuy, DetermineAction(in))
	})

	t.Run("weak allocation holds", func(t *testing.T) {
		in := base
		in.FinalPercent = 9.9
		assert.Equal(t, signal.ActionHold, DetermineAction(in))
	})

	t.Run("mean score below floor holds", func(t *testing.T) {
		in := base
		in.FinalPercent = 25
		in.QuantScore = 4
		in.FundamentalScore = 4
		in.NewsScore = 5 // mean 4.33
		assert.Equal(t, signal.ActionHold, DetermineAction(in))
	})
}

func TestDetermineAction_OtherSources(t *testing.T) {
	base := Inputs{
		TriggerSource:     "quant",
		QuantScore:        7,
		FundamentalScore:  6,
		SuggestedQuantity: 10,
	}

	t.Run("no news veto applies", func(t *testing.T) {
		in := base
		in.FinalPercent = 15
		in.NewsScore = 1 // ignored for non-news sources
		assert.Equal(t, signal.ActionBuy, DetermineAction(in))
	})

	t.Run("negative allocation still sells", func(t *testing.T) {
		in := base
		in.FinalPercent = -1
		assert.Equal(t, signal.ActionSell, DetermineAction(in))
	})

	t.Run("middling allocation holds", func(t *testing.T) {
		in := base
		in.FinalPercent = 5
		assert.Equal(t, signal.ActionHold, DetermineAction(in))
	})
}

func TestDetermineAction_ZeroQuantityBuyDemotedToHold(t *testing.T) {
	in := Inputs{
		TriggerSource:     "news",
		FinalPercent:      30,
		QuantScore:        8,
		FundamentalScore:  8,
		NewsScore:         8,
		SuggestedQuantity: 0,
	}
	assert.Equal(t, signal.ActionHold, DetermineAction(in))

	// A sell is unaffected by quantity demotion.
	in.FinalPercent = -10
	assert.Equal(t, signal.ActionSell, DetermineAction(in))
}
