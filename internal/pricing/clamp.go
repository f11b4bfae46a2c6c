// Package pricing bounds proposed stop-loss and target prices into the
// configured percentage bands around the current price.
package pricing

// Bands holds the configured clamp percentages. StopLossPct/TakeProfitPct
// are the defaults applied when the agent proposed no price at all.
type Bands struct {
	StopLossPct    float64
	MinStopLossPct float64
	MaxStopLossPct float64

	TakeProfitPct    float64
	MinTakeProfitPct float64
	MaxTakeProfitPct float64
}

// ClampStopLoss returns the stop-loss price to use. A non-positive proposal
// means the agent supplied none; the configured default applies. Otherwise
// the proposal is clamped into [current*(1-max%), current*(1-min%)],
// returned unchanged when already inside the band.
func (b Bands) ClampStopLoss(proposed, currentPrice float64) float64 {
	if proposed <= 0 {
		return currentPrice * (1 - b.StopLossPct/100)
	}
	lower := currentPrice * (1 - b.MaxStopLossPct/100)
	upper := currentPrice * (1 - b.MinStopLossPct/100)
	return clamp(proposed, lower, upper)
}

// ClampTargetPrice mirrors ClampStopLoss for the upside band
// [current*(1+min%), current*(1+max%)].
func (b Bands) ClampTargetPrice(proposed, currentPrice float64) float64 {
	if proposed <= 0 {
		return currentPrice * (1 + b.TakeProfitPct/100)
	}
	lower := currentPrice * (1 + b.MinTakeProfitPct/100)
	upper := currentPrice * (1 + b.MaxTakeProfitPct/100)
	return clamp(proposed, lower, upper)
}

func clamp(v, lower, upper float64) float64 {
	if v < lower {
		return lower
	}
	if v > upper {
		return upper
	}
	return v
}
