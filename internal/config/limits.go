package config

import (
	"fmt"
	"sync/atomic"

	"github.com/Wingseter/signal-smith-sub001/internal/logger"
	"github.com/Wingseter/signal-smith-sub001/internal/risk"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// LimitsHolder hands out the current risk limits. The executor reads it on
// every gate evaluation, so a reload takes effect on the next signal without
// a restart.
type LimitsHolder struct {
	current atomic.Value // risk.Limits
}

// NewLimitsHolder seeds the holder.
func NewLimitsHolder(lim risk.Limits) *LimitsHolder {
	h := &LimitsHolder{}
	h.current.Store(lim)
	return h
}

// Current returns the limits in force.
func (h *LimitsHolder) Current() risk.Limits {
	return h.current.Load().(risk.Limits)
}

// Set replaces the limits in force.
func (h *LimitsHolder) Set(lim risk.Limits) {
	h.current.Store(lim)
}

// WatchLimits re-reads the risk section whenever the config file changes on
// disk and pushes valid values into the holder. A file edit that fails to
// parse or validate is logged and ignored; the previous limits stay in force.
func WatchLimits(path string, holder *LimitsHolder) error {
	if holder == nil {
		return fmt.Errorf("limits holder required")
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("watching config failed (%s): %w", path, err)
	}
	v.OnConfigChange(func(evt fsnotify.Event) {
		cfg, err := decode(v)
		if err != nil {
			logger.Errorf("config reload failed (%s): %v", evt.Name, err)
			return
		}
		cfg.applyDefaults()
		if err := cfg.Risk.validate(); err != nil {
			logger.Errorf("config reload rejected (%s): %v", evt.Name, err)
			return
		}
		holder.Set(cfg.Risk.Limits())
		logger.Infof("risk limits reloaded: min_position=%.2f%% cash_reserve=%.2f%% max_positions=%d",
			cfg.Risk.MinPositionPct, cfg.Risk.MinCashReservePct, cfg.Risk.MaxPositions)
	})
	v.WatchConfig()
	return nil
}
