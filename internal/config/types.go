package config

import (
	"time"

	"github.com/Wingseter/signal-smith-sub001/internal/pricing"
	"github.com/Wingseter/signal-smith-sub001/internal/risk"
)

// Config is the main configuration carrier.
type Config struct {
	App     AppConfig     `toml:"app"`
	Broker  BrokerConfig  `toml:"broker"`
	Market  MarketConfig  `toml:"market"`
	Risk    RiskConfig    `toml:"risk"`
	Pricing PricingConfig `toml:"pricing"`
	Store   StoreConfig   `toml:"store"`
	Queue   QueueConfig   `toml:"queue"`
	Notify  NotifyConfig  `toml:"notify"`
}

type AppConfig struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`
	HTTPAddr string `toml:"http_addr"`
	LogPath  string `toml:"log_path"`
}

type BrokerConfig struct {
	BaseURL        string `toml:"base_url"`
	AppKey         string `toml:"app_key"`
	AppSecret      string `toml:"app_secret"`
	AccountNo      string `toml:"account_no"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Timeout returns the HTTP timeout for the gateway client.
func (b BrokerConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSeconds) * time.Second
}

type MarketConfig struct {
	Timezone string   `toml:"timezone"`
	Holidays []string `toml:"holidays"` // YYYY-MM-DD
}

// RiskConfig holds the admission-control limits. This section is hot-reloaded
// when the config file changes on disk.
type RiskConfig struct {
	MinPositionPct    float64 `toml:"min_position_pct"`
	MinCashReservePct float64 `toml:"min_cash_reserve_pct"`
	MaxPositions      int     `toml:"max_positions"`
}

// Limits converts the section into the gate input.
func (r RiskConfig) Limits() risk.Limits {
	return risk.Limits{
		MinPositionPct:    r.MinPositionPct,
		MinCashReservePct: r.MinCashReservePct,
		MaxPositions:      r.MaxPositions,
	}
}

type PricingConfig struct {
	StopLossPct    float64 `toml:"stop_loss_pct"`
	MinStopLossPct float64 `toml:"min_stop_loss_pct"`
	MaxStopLossPct float64 `toml:"max_stop_loss_pct"`

	TakeProfitPct    float64 `toml:"take_profit_pct"`
	MinTakeProfitPct float64 `toml:"min_take_profit_pct"`
	MaxTakeProfitPct float64 `toml:"max_take_profit_pct"`
}

// Bands converts the section into the clamp input.
func (p PricingConfig) Bands() pricing.Bands {
	return pricing.Bands{
		StopLossPct:      p.StopLossPct,
		MinStopLossPct:   p.MinStopLossPct,
		MaxStopLossPct:   p.MaxStopLossPct,
		TakeProfitPct:    p.TakeProfitPct,
		MinTakeProfitPct: p.MinTakeProfitPct,
		MaxTakeProfitPct: p.MaxTakeProfitPct,
	}
}

type StoreConfig struct {
	SignalDBPath string `toml:"signal_db_path"`
	AuditDBPath  string `toml:"audit_db_path"`
}

type QueueConfig struct {
	DrainIntervalSeconds int `toml:"drain_interval_seconds"`
}

// DrainInterval returns how often the queue replay runs.
func (q QueueConfig) DrainInterval() time.Duration {
	return time.Duration(q.DrainIntervalSeconds) * time.Second
}

type NotifyConfig struct {
	Telegram TelegramConfig `toml:"telegram"`
}

type TelegramConfig struct {
	Enabled  bool   `toml:"enabled"`
	BotToken string `toml:"bot_token"`
	ChatID   string `toml:"chat_id"`
}
