package httpapi

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/Wingseter/signal-smith-sub001/internal/decision"
	"github.com/Wingseter/signal-smith-sub001/internal/executor"
	"github.com/Wingseter/signal-smith-sub001/internal/pricing"
	"github.com/Wingseter/signal-smith-sub001/internal/signal"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxProposalBytes = 1 << 20

type handlers struct {
	service SignalService
	reader  SignalReader
	events  EventReader
	bands   pricing.Bands
}

func (h *handlers) register(group *gin.RouterGroup) {
	group.POST("/signals", h.handleCreateSignal)
	group.GET("/signals", h.handleListSignals)
	group.GET("/signals/pending", h.handlePendingSignals)
	group.GET("/signals/queued", h.handleQueuedSignals)
	group.GET("/signals/:id", h.handleGetSignal)
	group.GET("/signals/:id/events", h.handleSignalEvents)
	group.POST("/signals/:id/approve", h.handleApprove)
	group.POST("/signals/:id/reject", h.handleReject)
}

// handleCreateSignal is the intake: validate the agent proposal, classify it,
// clamp the prices and hand the signal to admission control. The response
// carries the post-admission status, so a gate block is visible to the
// caller immediately.
func (h *handlers) handleCreateSignal(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxProposalBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reading body failed"})
		return
	}
	proposal, err := signal.ParseProposal(raw)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	sig := buildSignal(proposal, h.bands)
	out, err := h.service.Submit(c.Request.Context(), sig)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, signalView(out))
}

func (h *handlers) handleApprove(c *gin.Context) {
	out, err := h.service.ApproveSignal(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, executor.ErrSignalNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, signalView(out))
}

func (h *handlers) handleReject(c *gin.Context) {
	var body struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&body)
	err := h.service.RejectSignal(c.Request.Context(), c.Param("id"), body.Reason)
	if err != nil {
		if errors.Is(err, executor.ErrSignalNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "rejected"})
}

func (h *handlers) handleListSignals(c *gin.Context) {
	if h.reader == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "signal store not wired"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	rows, err := h.reader.ListRecentSignals(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"signals": views(rows)})
}

func (h *handlers) handlePendingSignals(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"signals": views(h.service.PendingSignals())})
}

func (h *handlers) handleQueuedSignals(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"signals": views(h.service.QueuedSignals())})
}

func (h *handlers) handleGetSignal(c *gin.Context) {
	if h.reader == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "signal store not wired"})
		return
	}
	sig, found, err := h.reader.GetSignal(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "signal not found"})
		return
	}
	c.JSON(http.StatusOK, signalView(sig))
}

func (h *handlers) handleSignalEvents(c *gin.Context) {
	if h.events == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "audit recorder not wired"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	events, err := h.events.ListEvents(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func buildSignal(p signal.Proposal, bands pricing.Bands) *signal.InvestmentSignal {
	action := decision.DetermineAction(decision.Inputs{
		FinalPercent:      p.AllocationPercent,
		QuantScore:        p.QuantScore,
		FundamentalScore:  p.FundamentalScore,
		NewsScore:         p.NewsScore,
		TriggerSource:     p.TriggerSource,
		SuggestedQuantity: p.SuggestedQuantity,
	})
	sig := &signal.InvestmentSignal{
		ID:                uuid.NewString(),
		Symbol:            p.Symbol,
		CompanyName:       p.CompanyName,
		Action:            action,
		SuggestedQuantity: p.SuggestedQuantity,
		SuggestedAmount:   p.SuggestedAmount,
		Confidence:        p.Confidence,
		QuantScore:        p.QuantScore,
		FundamentalScore:  p.FundamentalScore,
		NewsScore:         p.NewsScore,
		AllocationPercent: p.AllocationPercent,
		TriggerSource:     p.TriggerSource,
		Reason:            p.Reason,
	}
	if action != signal.ActionHold {
		sig.StopLoss = bands.ClampStopLoss(p.StopLoss, p.CurrentPrice)
		sig.TargetPrice = bands.ClampTargetPrice(p.TargetPrice, p.CurrentPrice)
	}
	return sig
}

type signalJSON struct {
	ID                string     `json:"id"`
	Symbol            string     `json:"symbol"`
	CompanyName       string     `json:"company_name,omitempty"`
	Action            string     `json:"action"`
	Status            string     `json:"status"`
	SuggestedQuantity int64      `json:"suggested_quantity"`
	SuggestedAmount   float64    `json:"suggested_amount"`
	TargetPrice       float64    `json:"target_price,omitempty"`
	StopLoss          float64    `json:"stop_loss,omitempty"`
	Confidence        float64    `json:"confidence"`
	TriggerSource     string     `json:"trigger_source"`
	Reason            string     `json:"reason,omitempty"`
	OrderNo           string     `json:"order_no,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	ExecutedAt        *time.Time `json:"executed_at,omitempty"`
}

func signalView(sig *signal.InvestmentSignal) signalJSON {
	return signalJSON{
		ID:                sig.ID,
		Symbol:            sig.Symbol,
		CompanyName:       sig.CompanyName,
		Action:            string(sig.Action),
		Status:            string(sig.Status),
		SuggestedQuantity: sig.SuggestedQuantity,
		SuggestedAmount:   sig.SuggestedAmount,
		TargetPrice:       sig.TargetPrice,
		StopLoss:          sig.StopLoss,
		Confidence:        sig.Confidence,
		TriggerSource:     sig.TriggerSource,
		Reason:            sig.Reason,
		OrderNo:           sig.OrderNo,
		CreatedAt:         sig.CreatedAt,
		ExecutedAt:        sig.ExecutedAt,
	}
}

func views(sigs []*signal.InvestmentSignal) []signalJSON {
	out := make([]signalJSON, 0, len(sigs))
	for _, sig := range sigs {
		out = append(out, signalView(sig))
	}
	return out
}
