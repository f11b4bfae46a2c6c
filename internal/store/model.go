package store

import (
	"time"

	"github.com/Wingseter/signal-smith-sub001/internal/signal"

	"gorm.io/datatypes"
)

// SignalModel is the durable row behind an InvestmentSignal. Timestamps are
// unix millis to keep the sqlite schema driver-agnostic.
type SignalModel struct {
	ID                string         `gorm:"column:id;primaryKey"`
	Symbol            string         `gorm:"column:symbol;index"`
	CompanyName       string         `gorm:"column:company_name"`
	Action            string         `gorm:"column:action"`
	SuggestedQuantity int64          `gorm:"column:suggested_quantity"`
	SuggestedAmount   float64        `gorm:"column:suggested_amount"`
	TargetPrice       float64        `gorm:"column:target_price"`
	StopLoss          float64        `gorm:"column:stop_loss"`
	Confidence        float64        `gorm:"column:confidence"`
	QuantScore        float64        `gorm:"column:quant_score"`
	FundamentalScore  float64        `gorm:"column:fundamental_score"`
	NewsScore         float64        `gorm:"column:news_score"`
	AllocationPercent float64        `gorm:"column:allocation_percent"`
	TriggerSource     string         `gorm:"column:trigger_source"`
	Reason            string         `gorm:"column:reason"`
	Status            string         `gorm:"column:status;index"`
	ExtraData         datatypes.JSON `gorm:"column:extra_data;type:TEXT"`
	OrderNo           string         `gorm:"column:order_no"`
	ExecutedAtUnix    *int64         `gorm:"column:executed_at"`
	CreatedAtUnix     int64          `gorm:"column:created_at"`
	UpdatedAtUnix     int64          `gorm:"column:updated_at"`
}

func (SignalModel) TableName() string { return "signals" }

func newSignalModel(sig *signal.InvestmentSignal) SignalModel {
	now := time.Now()
	createdAt := sig.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	m := SignalModel{
		ID:                sig.ID,
		Symbol:            sig.Symbol,
		CompanyName:       sig.CompanyName,
		Action:            string(sig.Action),
		SuggestedQuantity: sig.SuggestedQuantity,
		SuggestedAmount:   sig.SuggestedAmount,
		TargetPrice:       sig.TargetPrice,
		StopLoss:          sig.StopLoss,
		Confidence:        sig.Confidence,
		QuantScore:        sig.QuantScore,
		FundamentalScore:  sig.FundamentalScore,
		NewsScore:         sig.NewsScore,
		AllocationPercent: sig.AllocationPercent,
		TriggerSource:     sig.TriggerSource,
		Reason:            sig.Reason,
		Status:            string(sig.Status),
		OrderNo:           sig.OrderNo,
		CreatedAtUnix:     createdAt.UnixMilli(),
		UpdatedAtUnix:     now.UnixMilli(),
	}
	if sig.ExecutedAt != nil && !sig.ExecutedAt.IsZero() {
		ts := sig.ExecutedAt.UnixMilli()
		m.ExecutedAtUnix = &ts
	}
	return m
}

func signalModelToDomain(m SignalModel) *signal.InvestmentSignal {
	sig := &signal.InvestmentSignal{
		ID:                m.ID,
		Symbol:            m.Symbol,
		CompanyName:       m.CompanyName,
		Action:            signal.ParseAction(m.Action),
		SuggestedQuantity: m.SuggestedQuantity,
		SuggestedAmount:   m.SuggestedAmount,
		TargetPrice:       m.TargetPrice,
		StopLoss:          m.StopLoss,
		Confidence:        m.Confidence,
		QuantScore:        m.QuantScore,
		FundamentalScore:  m.FundamentalScore,
		NewsScore:         m.NewsScore,
		AllocationPercent: m.AllocationPercent,
		TriggerSource:     m.TriggerSource,
		Reason:            m.Reason,
		Status:            signal.Status(m.Status),
		OrderNo:           m.OrderNo,
		CreatedAt:         time.UnixMilli(m.CreatedAtUnix),
	}
	if m.ExecutedAtUnix != nil && *m.ExecutedAtUnix > 0 {
		ts := time.UnixMilli(*m.ExecutedAtUnix)
		sig.ExecutedAt = &ts
	}
	return sig
}
