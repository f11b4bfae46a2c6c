// Package app assembles the pipeline: config, stores, brokerage gateway,
// executor, notifier, queue drain and the HTTP API.
package app

import (
	"context"
	"fmt"

	"github.com/Wingseter/signal-smith-sub001/internal/audit"
	"github.com/Wingseter/signal-smith-sub001/internal/broker"
	"github.com/Wingseter/signal-smith-sub001/internal/config"
	"github.com/Wingseter/signal-smith-sub001/internal/executor"
	"github.com/Wingseter/signal-smith-sub001/internal/logger"
	"github.com/Wingseter/signal-smith-sub001/internal/notifier"
	"github.com/Wingseter/signal-smith-sub001/internal/scheduler"
	"github.com/Wingseter/signal-smith-sub001/internal/store"
	httpapi "github.com/Wingseter/signal-smith-sub001/internal/transport/http"

	"golang.org/x/sync/errgroup"
)

// App holds the assembled components.
type App struct {
	cfg      *config.Config
	limits   *config.LimitsHolder
	signals  *store.SignalStore
	recorder *audit.Recorder
	bus      *audit.Bus
	exec     *executor.Executor
	server   *httpapi.Server
}

// NewApp wires everything from a validated config. cfgPath is watched so
// risk-limit edits take effect without a restart; pass "" to disable the
// watcher.
func NewApp(cfg *config.Config, cfgPath string) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config required")
	}

	limits := config.NewLimitsHolder(cfg.Risk.Limits())
	if cfgPath != "" {
		if err := config.WatchLimits(cfgPath, limits); err != nil {
			return nil, err
		}
	}

	signals, err := store.NewSignalStore(cfg.Store.SignalDBPath)
	if err != nil {
		return nil, fmt.Errorf("opening signal store: %w", err)
	}
	recorder, err := audit.NewRecorder(cfg.Store.AuditDBPath)
	if err != nil {
		signals.Close()
		return nil, fmt.Errorf("opening audit recorder: %w", err)
	}

	clock, err := broker.NewMarketClock(cfg.Market.Timezone, cfg.Market.Holidays)
	if err != nil {
		signals.Close()
		recorder.Close()
		return nil, err
	}
	gateway := broker.NewClient(broker.ClientOptions{
		BaseURL:   cfg.Broker.BaseURL,
		AppKey:    cfg.Broker.AppKey,
		AppSecret: cfg.Broker.AppSecret,
		AccountNo: cfg.Broker.AccountNo,
		Timeout:   cfg.Broker.Timeout(),
	})

	bus := audit.NewBus()
	exec, err := executor.New(executor.Deps{
		Gateway: gateway,
		Hours:   clock,
		Repo:    signals,
		Sink:    recorder,
		Bus:     bus,
		Limits:  limits.Current,
	})
	if err != nil {
		signals.Close()
		recorder.Close()
		return nil, err
	}

	if cfg.Notify.Telegram.Enabled {
		notifier.Attach(bus, notifier.NewTelegram(cfg.Notify.Telegram.BotToken, cfg.Notify.Telegram.ChatID))
		logger.Infof("telegram notifier attached")
	}

	server, err := httpapi.NewServer(httpapi.ServerConfig{
		Addr:    cfg.App.HTTPAddr,
		Service: exec,
		Reader:  signals,
		Events:  recorder,
		Bands:   cfg.Pricing.Bands(),
	})
	if err != nil {
		signals.Close()
		recorder.Close()
		return nil, err
	}

	return &App{
		cfg:      cfg,
		limits:   limits,
		signals:  signals,
		recorder: recorder,
		bus:      bus,
		exec:     exec,
		server:   server,
	}, nil
}

// Run restores non-terminal signals, then serves HTTP and drains the queue
// until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	if err := a.exec.RestorePendingSignals(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.server.Start(gctx)
	})
	g.Go(func() error {
		drain := scheduler.NewIntervalScheduler(gctx, a.cfg.Queue.DrainInterval())
		drain.RunImmediately = true
		drain.Start(func() {
			if err := a.exec.ProcessQueuedExecutions(gctx); err != nil {
				logger.Errorf("queue drain failed: %v", err)
			}
		})
		return nil
	})
	return g.Wait()
}

func (a *App) close() {
	if err := a.recorder.Close(); err != nil {
		logger.Warnf("closing audit recorder: %v", err)
	}
	if err := a.signals.Close(); err != nil {
		logger.Warnf("closing signal store: %v", err)
	}
}
