package config

import (
	"fmt"
	"strings"
	"time"
)

func validate(c *Config) error {
	if err := c.Broker.validate(); err != nil {
		return err
	}
	if err := c.Market.validate(); err != nil {
		return err
	}
	if err := c.Risk.validate(); err != nil {
		return err
	}
	if err := c.Pricing.validate(); err != nil {
		return err
	}
	if err := c.Notify.validate(); err != nil {
		return err
	}
	return nil
}

func (b *BrokerConfig) validate() error {
	if strings.TrimSpace(b.BaseURL) == "" {
		return fmt.Errorf("broker.base_url is required")
	}
	if strings.TrimSpace(b.AccountNo) == "" {
		return fmt.Errorf("broker.account_no is required")
	}
	return nil
}

func (m *MarketConfig) validate() error {
	if _, err := time.LoadLocation(m.Timezone); err != nil {
		return fmt.Errorf("market.timezone invalid: %w", err)
	}
	for _, day := range m.Holidays {
		if _, err := time.Parse("2006-01-02", day); err != nil {
			return fmt.Errorf("market.holidays entry %q must be YYYY-MM-DD", day)
		}
	}
	return nil
}

func (r *RiskConfig) validate() error {
	if r.MinPositionPct <= 0 || r.MinPositionPct > 100 {
		return fmt.Errorf("risk.min_position_pct must be in (0, 100]")
	}
	if r.MinCashReservePct < 0 || r.MinCashReservePct > 100 {
		return fmt.Errorf("risk.min_cash_reserve_pct must be in [0, 100]")
	}
	if r.MaxPositions <= 0 {
		return fmt.Errorf("risk.max_positions must be > 0")
	}
	return nil
}

func (p *PricingConfig) validate() error {
	if p.MinStopLossPct > p.MaxStopLossPct {
		return fmt.Errorf("pricing.min_stop_loss_pct must not exceed max_stop_loss_pct")
	}
	if p.MinTakeProfitPct > p.MaxTakeProfitPct {
		return fmt.Errorf("pricing.min_take_profit_pct must not exceed max_take_profit_pct")
	}
	if p.MaxStopLossPct >= 100 {
		return fmt.Errorf("pricing.max_stop_loss_pct must be below 100")
	}
	return nil
}

func (n *NotifyConfig) validate() error {
	if !n.Telegram.Enabled {
		return nil
	}
	if strings.TrimSpace(n.Telegram.BotToken) == "" || strings.TrimSpace(n.Telegram.ChatID) == "" {
		return fmt.Errorf("notify.telegram requires bot_token and chat_id when enabled")
	}
	return nil
}
