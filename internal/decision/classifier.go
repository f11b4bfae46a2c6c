// Package decision turns multi-agent scores and the funding allocation
// signal into a BUY/SELL/HOLD action.
package decision

import (
	"github.com/Wingseter/signal-smith-sub001/internal/signal"
)

// Classification thresholds. The news acceptance floor vetoes a buy when the
// news agent scores the story too low, regardless of how bullish the other
// agents are.
const (
	newsAcceptanceFloor = 4.0
	buyAllocationFloor  = 10.0
	buyMeanScoreFloor   = 6.0
)

// Inputs carries everything the classifier looks at.
type Inputs struct {
	FinalPercent      float64 // signed funding allocation
	QuantScore        float64 // 1-10
	FundamentalScore  float64 // 1-10
	NewsScore         float64 // 1-10, meaningful for news-triggered signals
	TriggerSource     string
	SuggestedQuantity int64
}

// DetermineAction classifies the proposal.
//
// News-triggered signals: a negative allocation or a news score below the
// acceptance floor forces SELL; a strong allocation with a mean agent score
// of at least 6 yields BUY; everything else holds. Other trigger sources use
// the same shape without the news veto, averaging only the quant and
// fundamental scores since their news score is not populated by the upstream
// agents.
//
// A BUY that would carry a non-positive quantity is demoted to HOLD here so
// the executor can never be handed a zero-quantity order.
func DetermineAction(in Inputs) signal.Action {
	action := classify(in)
	if action == signal.ActionBuy && in.SuggestedQuantity <= 0 {
		return signal.ActionHold
	}
	return action
}

func classify(in Inputs) signal.Action {
	if in.FinalPercent < 0 {
		return signal.ActionSell
	}
	if in.TriggerSource == "news" {
		if in.NewsScore < newsAcceptanceFloor {
			return signal.ActionSell
		}
		mean := (in.QuantScore + in.FundamentalScore + in.NewsScore) / 3
		if in.FinalPercent >= buyAllocationFloor && mean >= buyMeanScoreFloor {
			return signal.ActionBuy
		}
		return signal.ActionHold
	}
	mean := (in.QuantScore + in.FundamentalScore) / 2
	if in.FinalPercent >= buyAllocationFloor && mean >= buyMeanScoreFloor {
		return signal.ActionBuy
	}
	return signal.ActionHold
}
