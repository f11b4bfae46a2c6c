// Package httpapi exposes the signal intake and the operator's
// approve/reject controls over HTTP.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Wingseter/signal-smith-sub001/internal/audit"
	"github.com/Wingseter/signal-smith-sub001/internal/logger"
	"github.com/Wingseter/signal-smith-sub001/internal/pricing"
	"github.com/Wingseter/signal-smith-sub001/internal/signal"

	"github.com/gin-gonic/gin"
)

// SignalService is the lifecycle surface the handlers drive. The executor
// satisfies it.
type SignalService interface {
	Submit(ctx context.Context, sig *signal.InvestmentSignal) (*signal.InvestmentSignal, error)
	ApproveSignal(ctx context.Context, id string) (*signal.InvestmentSignal, error)
	RejectSignal(ctx context.Context, id, reason string) error
	PendingSignals() []*signal.InvestmentSignal
	QueuedSignals() []*signal.InvestmentSignal
}

// SignalReader serves the read-only listing endpoints from the store.
type SignalReader interface {
	GetSignal(ctx context.Context, id string) (*signal.InvestmentSignal, bool, error)
	ListRecentSignals(ctx context.Context, limit int) ([]*signal.InvestmentSignal, error)
}

// EventReader serves the per-signal audit trail.
type EventReader interface {
	ListEvents(ctx context.Context, signalID string, limit int) ([]audit.Event, error)
}

// ServerConfig describes the HTTP server dependencies.
type ServerConfig struct {
	Addr    string
	Service SignalService
	Reader  SignalReader
	Events  EventReader
	Bands   pricing.Bands
}

// Server hosts the API.
type Server struct {
	addr   string
	router *gin.Engine
}

// NewServer builds the router and wires the handlers.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Service == nil {
		return nil, errors.New("http server requires a signal service")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":9980"
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	h := &handlers{service: cfg.Service, reader: cfg.Reader, events: cfg.Events, bands: cfg.Bands}
	h.register(router.Group("/api"))

	return &Server{addr: cfg.Addr, router: router}, nil
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	return s.addr
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.router}
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("http: listening on %s", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-errCh
	case err := <-errCh:
		return err
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery
		client := c.ClientIP()
		c.Next()
		dur := time.Since(start)
		status := c.Writer.Status()
		fullPath := path
		if query != "" {
			fullPath = path + "?" + query
		}
		logger.Debugf("HTTP %s %s status=%d ip=%s dur=%s", method, fullPath, status, client, dur)
	}
}
