package config

const (
	defaultAppEnv      = "dev"
	defaultAppLogLevel = "info"
	defaultAppHTTPAddr = ":9980"
	defaultAppLogPath  = "/data/logs/signalsmith.log"

	defaultBrokerTimeout = 10

	defaultMarketTimezone = "Asia/Seoul"

	defaultRiskMinPositionPct    = 5.0
	defaultRiskMinCashReservePct = 10.0
	defaultRiskMaxPositions      = 10

	defaultStopLossPct    = 5.0
	defaultMinStopLossPct = 3.0
	defaultMaxStopLossPct = 15.0

	defaultTakeProfitPct    = 10.0
	defaultMinTakeProfitPct = 3.0
	defaultMaxTakeProfitPct = 30.0

	defaultSignalDBPath = "/data/db/signals.db"
	defaultAuditDBPath  = "/data/db/signal_events.db"

	defaultDrainIntervalSeconds = 60
)

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = defaultAppEnv
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = defaultAppLogLevel
	}
	if c.App.HTTPAddr == "" {
		c.App.HTTPAddr = defaultAppHTTPAddr
	}
	if c.App.LogPath == "" {
		c.App.LogPath = defaultAppLogPath
	}
	if c.Broker.TimeoutSeconds <= 0 {
		c.Broker.TimeoutSeconds = defaultBrokerTimeout
	}
	if c.Market.Timezone == "" {
		c.Market.Timezone = defaultMarketTimezone
	}
	if c.Risk.MinPositionPct <= 0 {
		c.Risk.MinPositionPct = defaultRiskMinPositionPct
	}
	if c.Risk.MinCashReservePct <= 0 {
		c.Risk.MinCashReservePct = defaultRiskMinCashReservePct
	}
	if c.Risk.MaxPositions <= 0 {
		c.Risk.MaxPositions = defaultRiskMaxPositions
	}
	if c.Pricing.StopLossPct <= 0 {
		c.Pricing.StopLossPct = defaultStopLossPct
	}
	if c.Pricing.MinStopLossPct <= 0 {
		c.Pricing.MinStopLossPct = defaultMinStopLossPct
	}
	if c.Pricing.MaxStopLossPct <= 0 {
		c.Pricing.MaxStopLossPct = defaultMaxStopLossPct
	}
	if c.Pricing.TakeProfitPct <= 0 {
		c.Pricing.TakeProfitPct = defaultTakeProfitPct
	}
	if c.Pricing.MinTakeProfitPct <= 0 {
		c.Pricing.MinTakeProfitPct = defaultMinTakeProfitPct
	}
	if c.Pricing.MaxTakeProfitPct <= 0 {
		c.Pricing.MaxTakeProfitPct = defaultMaxTakeProfitPct
	}
	if c.Store.SignalDBPath == "" {
		c.Store.SignalDBPath = defaultSignalDBPath
	}
	if c.Store.AuditDBPath == "" {
		c.Store.AuditDBPath = defaultAuditDBPath
	}
	if c.Queue.DrainIntervalSeconds <= 0 {
		c.Queue.DrainIntervalSeconds = defaultDrainIntervalSeconds
	}
}
