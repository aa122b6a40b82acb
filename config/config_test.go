package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero capital", func(c *Config) { c.Account.Capital = 0 }, "account.capital"},
		{"zero point value", func(c *Config) { c.Account.PointValue = 0 }, "account.point_value"},
		{"zero rsi period", func(c *Config) { c.Indicators.RSI = 0 }, "indicators.rsi"},
		{"inverted MAs", func(c *Config) { c.Indicators.ShortMA = 60 }, "short_ma"},
		{"inverted EMAs", func(c *Config) { c.Indicators.FastEMA = 30 }, "fast_ema"},
		{"no generators", func(c *Config) { c.Strategy.Generators = nil }, "strategy.generators"},
		{"unknown generator", func(c *Config) { c.Strategy.Generators = []string{"astrology"} }, "unknown signal generator"},
		{"bad risk fraction", func(c *Config) { c.Risk.Fraction = 1.5 }, "risk.fraction"},
		{"contracts inverted", func(c *Config) { c.Risk.MaxContracts = 0 }, "max_contracts"},
		{"bad cooldown", func(c *Config) { c.Execution.Cooldown = "soon" }, "execution.cooldown"},
		{"half session", func(c *Config) { c.Session.To = "" }, "session.from and session.to"},
		{"bad journal type", func(c *Config) { c.Journal.Type = "parquet" }, "journal.type"},
		{"csv without paths", func(c *Config) { c.Journal.TradesFile = "" }, "trades_file"},
		{"sqlite without path", func(c *Config) { c.Journal = JournalConfig{Type: "sqlite"} }, "db_path"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestFixedContractsSkipsRiskValidation(t *testing.T) {
	cfg := Default()
	cfg.Execution.FixedContracts = 1
	cfg.Risk.Fraction = 0
	cfg.Risk.MinContracts = 0
	assert.NoError(t, cfg.Validate())
}

func TestSaveLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := Default()
	cfg.Account.Capital = 75000
	cfg.Strategy.Generators = []string{"ema_cross", "pullback"}
	require.NoError(t, cfg.SaveToFile(path))

	got, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 75000.0, got.Account.Capital)
	assert.Equal(t, []string{"ema_cross", "pullback"}, got.Strategy.Generators)
}

func TestSaveLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := Default()
	require.NoError(t, cfg.SaveToFile(path))

	got, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Account, got.Account)
	assert.Equal(t, cfg.Risk, got.Risk)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("account:\n  capital: -1\n"), 0644))

	_, err := LoadFromFile(path)
	assert.ErrorContains(t, err, "invalid config")
}

func TestEngineMaterialization(t *testing.T) {
	cfg := Default()
	cfg.Execution.Cooldown = "5m"
	eng, err := cfg.Engine()
	require.NoError(t, err)

	assert.Equal(t, 50000.0, eng.Capital)
	assert.Equal(t, 5.0, eng.Sizer.PointValue)
	assert.Equal(t, 0.005, eng.Sizer.Fraction)
	assert.Equal(t, 30.0, eng.Limits.MaxDailyLossPoints)
	assert.Equal(t, 3, eng.Limits.MaxConsecutiveLosses)
	assert.Equal(t, 1.5, eng.Exec.StopATR)
	assert.Equal(t, 5*time.Minute, eng.Exec.Cooldown)

	chain, err := cfg.Chain()
	require.NoError(t, err)
	require.Len(t, chain, 3)
	assert.Equal(t, "breakout", chain[0].Name())
	assert.Equal(t, "ma_trend", chain[1].Name())
	assert.Equal(t, "rsi_bounds", chain[2].Name())

	p := cfg.Periods()
	assert.Equal(t, 20, p.ShortMA)
	assert.Equal(t, 20, p.Level)
}

func TestEngineRejectsBadCooldown(t *testing.T) {
	cfg := Default()
	cfg.Execution.Cooldown = "five minutes"

	_, err := cfg.Engine()
	assert.ErrorContains(t, err, "execution.cooldown")
}
