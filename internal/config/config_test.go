package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Wingseter/signal-smith-sub001/internal/risk"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const minimalConfig = `
broker:
  base_url: "https://openapi.example.com"
  account_no: "12345678-01"
`

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, "Asia/Seoul", cfg.Market.Timezone)
	assert.Equal(t, 5.0, cfg.Risk.MinPositionPct)
	assert.Equal(t, 10.0, cfg.Risk.MinCashReservePct)
	assert.Equal(t, 10, cfg.Risk.MaxPositions)
	assert.Equal(t, 5.0, cfg.Pricing.StopLossPct)
	assert.Equal(t, 60, cfg.Queue.DrainIntervalSeconds)
}

func TestLoad_ReadsExplicitValues(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
app:
  log_level: debug
  http_addr: ":8088"
broker:
  base_url: "https://openapi.example.com"
  account_no: "12345678-01"
  timeout_seconds: 3
market:
  holidays: ["2025-01-01", "2025-03-01"]
risk:
  min_position_pct: 8
  min_cash_reserve_pct: 20
  max_positions: 5
`))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, 3, cfg.Broker.TimeoutSeconds)
	assert.Len(t, cfg.Market.Holidays, 2)
	assert.Equal(t, risk.Limits{MinPositionPct: 8, MinCashReservePct: 20, MaxPositions: 5}, cfg.Risk.Limits())
}

func TestLoad_ValidationFailures(t *testing.T) {
	cases := map[string]string{
		"missing broker": `
app:
  log_level: info
`,
		"bad holiday": `
broker:
  base_url: "https://openapi.example.com"
  account_no: "12345678-01"
market:
  holidays: ["jan 1"]
`,
		"inverted stop band": `
broker:
  base_url: "https://openapi.example.com"
  account_no: "12345678-01"
pricing:
  min_stop_loss_pct: 20
  max_stop_loss_pct: 5
`,
		"telegram without token": `
broker:
  base_url: "https://openapi.example.com"
  account_no: "12345678-01"
notify:
  telegram:
    enabled: true
`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLimitsHolder_SetAndCurrent(t *testing.T) {
	h := NewLimitsHolder(risk.Limits{MinPositionPct: 5, MinCashReservePct: 10, MaxPositions: 10})
	assert.Equal(t, 5.0, h.Current().MinPositionPct)

	h.Set(risk.Limits{MinPositionPct: 8, MinCashReservePct: 15, MaxPositions: 4})
	assert.Equal(t, 8.0, h.Current().MinPositionPct)
	assert.Equal(t, 4, h.Current().MaxPositions)
}
