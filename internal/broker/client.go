package broker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Wingseter/signal-smith-sub001/internal/logger"

	"github.com/tidwall/gjson"
)

// Client talks to the brokerage's REST API. Responses are extracted with
// gjson because the upstream payloads nest the useful fields under
// output/output1/output2 blocks that differ per endpoint.
type Client struct {
	baseURL  string
	appKey   string
	secret   string
	accountN string
	http     *http.Client
}

// ClientOptions configures a Client.
type ClientOptions struct {
	BaseURL   string
	AppKey    string
	AppSecret string
	AccountNo string
	Timeout   time.Duration
}

// NewClient builds a REST gateway client.
func NewClient(opts ClientOptions) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:  strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"),
		appKey:   strings.TrimSpace(opts.AppKey),
		secret:   strings.TrimSpace(opts.AppSecret),
		accountN: strings.TrimSpace(opts.AccountNo),
		http:     &http.Client{Timeout: timeout},
	}
}

var _ Gateway = (*Client)(nil)

// GetBalance reads available cash and total holding evaluation.
func (c *Client) GetBalance(ctx context.Context) (Balance, error) {
	body, err := c.get(ctx, "/api/v1/account/balance")
	if err != nil {
		return Balance{}, fmt.Errorf("balance query failed: %w", err)
	}
	root := gjson.ParseBytes(body)
	if code := root.Get("rt_cd").String(); code != "" && code != "0" {
		return Balance{}, fmt.Errorf("balance query rejected: rt_cd=%s msg=%s", code, root.Get("msg1").String())
	}
	out := root.Get("output")
	if !out.Exists() {
		return Balance{}, fmt.Errorf("balance response missing output block")
	}
	return Balance{
		AvailableAmount: out.Get("available_amount").Float(),
		TotalEvaluation: out.Get("total_evaluation").Float(),
		UpdatedAt:       time.Now(),
	}, nil
}

// GetHoldings lists held positions. Rows with zero quantity are dropped; the
// brokerage keeps settled-out symbols in the response for a day.
func (c *Client) GetHoldings(ctx context.Context) ([]Holding, error) {
	body, err := c.get(ctx, "/api/v1/account/holdings")
	if err != nil {
		return nil, fmt.Errorf("holdings query failed: %w", err)
	}
	root := gjson.ParseBytes(body)
	if code := root.Get("rt_cd").String(); code != "" && code != "0" {
		return nil, fmt.Errorf("holdings query rejected: rt_cd=%s msg=%s", code, root.Get("msg1").String())
	}
	var holdings []Holding
	root.Get("output").ForEach(func(_, row gjson.Result) bool {
		qty := row.Get("quantity").Int()
		if qty <= 0 {
			return true
		}
		holdings = append(holdings, Holding{
			Symbol:     strings.ToUpper(row.Get("symbol").String()),
			Quantity:   qty,
			EvalAmount: row.Get("eval_amount").Float(),
		})
		return true
	})
	return holdings, nil
}

// PlaceOrder submits an order. A non-2xx response or a non-zero rt_cd maps
// to a failed OrderResult rather than an error so the executor can re-queue
// without unwrapping.
func (c *Client) PlaceOrder(ctx context.Context, req OrderRequest) (OrderResult, error) {
	if req.Quantity <= 0 {
		return OrderResult{}, fmt.Errorf("refusing zero-quantity order for %s", req.Symbol)
	}
	payload := map[string]any{
		"account_no": c.accountN,
		"symbol":     req.Symbol,
		"side":       string(req.Side),
		"quantity":   req.Quantity,
		"price":      req.Price,
		"order_type": req.OrderType,
	}
	body, err := c.post(ctx, "/api/v1/orders", payload)
	if err != nil {
		return OrderResult{}, fmt.Errorf("order submission failed: %w", err)
	}
	root := gjson.ParseBytes(body)
	if code := root.Get("rt_cd").String(); code != "" && code != "0" {
		return OrderResult{
			Status:  OrderStatusFailed,
			Message: fmt.Sprintf("rt_cd=%s %s", code, root.Get("msg1").String()),
		}, nil
	}
	res := OrderResult{
		Status:  root.Get("output.status").String(),
		OrderNo: root.Get("output.order_no").String(),
		Message: root.Get("msg1").String(),
	}
	if res.Status == "" {
		res.Status = OrderStatusFailed
	}
	return res, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	req.Header.Set("appkey", c.appKey)
	req.Header.Set("appsecret", c.secret)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode/100 != 2 {
		logger.Warnf("broker: %s %s returned %d", req.Method, req.URL.Path, resp.StatusCode)
		return nil, fmt.Errorf("broker status=%d", resp.StatusCode)
	}
	return body, nil
}
