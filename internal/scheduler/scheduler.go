// Package scheduler runs the periodic queue drain.
package scheduler

import (
	"context"
	"time"

	"github.com/Wingseter/signal-smith-sub001/internal/logger"
)

// IntervalScheduler runs a task at a fixed interval until its context is
// cancelled.
type IntervalScheduler struct {
	Interval       time.Duration
	RunImmediately bool

	ctx context.Context
}

// NewIntervalScheduler builds a scheduler bound to ctx.
func NewIntervalScheduler(ctx context.Context, interval time.Duration) *IntervalScheduler {
	if ctx == nil {
		ctx = context.Background()
	}
	return &IntervalScheduler{Interval: interval, ctx: ctx}
}

// Start blocks, running task every Interval. It returns when the context is
// done. A panicking task is logged and the loop keeps going.
func (s *IntervalScheduler) Start(task func()) {
	if s == nil {
		return
	}
	if task == nil {
		logger.Warnf("IntervalScheduler: task is nil, exit")
		return
	}
	if s.Interval <= 0 {
		logger.Warnf("IntervalScheduler: invalid interval=%s, exit", s.Interval)
		return
	}

	logger.Infof("IntervalScheduler: started interval=%s run_immediately=%v", s.Interval, s.RunImmediately)
	if s.RunImmediately {
		s.run(task)
	}

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			logger.Infof("IntervalScheduler: ctx done, exit")
			return
		case <-ticker.C:
			s.run(task)
		}
	}
}

func (s *IntervalScheduler) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("IntervalScheduler: task panic: %v", r)
		}
	}()
	task()
}
