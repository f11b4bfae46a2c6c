package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Wingseter/signal-smith-sub001/internal/executor"
	"github.com/Wingseter/signal-smith-sub001/internal/pricing"
	"github.com/Wingseter/signal-smith-sub001/internal/signal"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

type fakeService struct {
	submitted   []*signal.InvestmentSignal
	approveErr  error
	rejectErr   error
	rejectID    string
	rejectCause string
}

func (s *fakeService) Submit(_ context.Context, sig *signal.InvestmentSignal) (*signal.InvestmentSignal, error) {
	out := sig.Clone()
	out.Status = signal.StatusPending
	s.submitted = append(s.submitted, out)
	return out, nil
}

func (s *fakeService) ApproveSignal(_ context.Context, id string) (*signal.InvestmentSignal, error) {
	if s.approveErr != nil {
		return nil, s.approveErr
	}
	return &signal.InvestmentSignal{ID: id, Symbol: "005930", Action: signal.ActionBuy, Status: signal.StatusExecuted, OrderNo: "ORD-7"}, nil
}

func (s *fakeService) RejectSignal(_ context.Context, id, reason string) error {
	if s.rejectErr != nil {
		return s.rejectErr
	}
	s.rejectID = id
	s.rejectCause = reason
	return nil
}

func (s *fakeService) PendingSignals() []*signal.InvestmentSignal {
	return []*signal.InvestmentSignal{{ID: "p-1", Symbol: "005930", Status: signal.StatusPending}}
}

func (s *fakeService) QueuedSignals() []*signal.InvestmentSignal { return nil }

func newTestRouter(t *testing.T, svc SignalService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := &handlers{
		service: svc,
		bands: pricing.Bands{
			StopLossPct: 5, MinStopLossPct: 3, MaxStopLossPct: 15,
			TakeProfitPct: 10, MinTakeProfitPct: 3, MaxTakeProfitPct: 30,
		},
	}
	h.register(router.Group("/api"))
	return router
}

const validProposal = `{
	"symbol": "005930",
	"company_name": "Samsung Electronics",
	"suggested_quantity": 10,
	"suggested_amount": 1000000,
	"current_price": 100000,
	"confidence": 0.8,
	"quant_score": 7,
	"fundamental_score": 7,
	"news_score": 8,
	"allocation_percent": 15,
	"trigger_source": "news"
}`

func TestCreateSignal_ClassifiesAndClamps(t *testing.T) {
	svc := &fakeService{}
	router := newTestRouter(t, svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/signals", strings.NewReader(validProposal))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := gjson.Parse(rec.Body.String())
	assert.Equal(t, "BUY", body.Get("action").String())
	assert.Equal(t, "PENDING", body.Get("status").String())
	assert.NotEmpty(t, body.Get("id").String())
	// No proposed prices: defaults off the current price apply.
	assert.InDelta(t, 95000, body.Get("stop_loss").Float(), 0.01)
	assert.InDelta(t, 110000, body.Get("target_price").Float(), 0.01)
	require.Len(t, svc.submitted, 1)
}

func TestCreateSignal_SchemaRejection(t *testing.T) {
	router := newTestRouter(t, &fakeService{})

	for name, payload := range map[string]string{
		"not json":           `{{`,
		"missing symbol":     `{"suggested_amount": 1, "current_price": 1, "confidence": 0.5, "quant_score": 5, "fundamental_score": 5, "trigger_source": "news"}`,
		"confidence too big": `{"symbol": "A", "suggested_amount": 1, "current_price": 1, "confidence": 2, "quant_score": 5, "fundamental_score": 5, "trigger_source": "news"}`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/signals", strings.NewReader(payload))
			router.ServeHTTP(rec, req)
			assert.Contains(t, []int{http.StatusBadRequest, http.StatusUnprocessableEntity}, rec.Code)
		})
	}
}

func TestApprove_NotFound(t *testing.T) {
	router := newTestRouter(t, &fakeService{approveErr: executor.ErrSignalNotFound})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/signals/nope/approve", nil)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApprove_ReturnsExecutedSignal(t *testing.T) {
	router := newTestRouter(t, &fakeService{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/signals/sig-1/approve", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := gjson.Parse(rec.Body.String())
	assert.Equal(t, "EXECUTED", body.Get("status").String())
	assert.Equal(t, "ORD-7", body.Get("order_no").String())
}

func TestReject_PassesReason(t *testing.T) {
	svc := &fakeService{}
	router := newTestRouter(t, svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/signals/sig-9/reject", strings.NewReader(`{"reason": "too risky"}`))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "sig-9", svc.rejectID)
	assert.Equal(t, "too risky", svc.rejectCause)
}

func TestPendingSignals_Listing(t *testing.T) {
	router := newTestRouter(t, &fakeService{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/signals/pending", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := gjson.Parse(rec.Body.String())
	assert.Equal(t, int64(1), body.Get("signals.#").Int())
	assert.Equal(t, "p-1", body.Get("signals.0.id").String())
}
