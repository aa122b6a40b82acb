// Package config loads and validates the toolkit configuration from
// YAML or JSON files.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/quantlab/backtest"
	"github.com/rustyeddy/quantlab/indicators"
	"github.com/rustyeddy/quantlab/risk"
	"github.com/rustyeddy/quantlab/signal"
)

// Config represents the complete toolkit configuration.
type Config struct {
	Account    AccountConfig   `json:"account" yaml:"account"`
	Indicators IndicatorConfig `json:"indicators" yaml:"indicators"`
	Strategy   StrategyConfig  `json:"strategy" yaml:"strategy"`
	Risk       RiskConfig      `json:"risk" yaml:"risk"`
	Execution  ExecutionConfig `json:"execution" yaml:"execution"`
	Session    SessionConfig   `json:"session,omitempty" yaml:"session,omitempty"`
	Journal    JournalConfig   `json:"journal" yaml:"journal"`
	Server     ServerConfig    `json:"server,omitempty" yaml:"server,omitempty"`
}

// AccountConfig holds account initialization parameters.
type AccountConfig struct {
	Capital    float64 `json:"capital" yaml:"capital"`
	PointValue float64 `json:"point_value" yaml:"point_value"`
}

// IndicatorConfig holds the indicator periods.
type IndicatorConfig struct {
	ShortMA int `json:"short_ma" yaml:"short_ma"`
	LongMA  int `json:"long_ma" yaml:"long_ma"`
	FastEMA int `json:"fast_ema" yaml:"fast_ema"`
	SlowEMA int `json:"slow_ema" yaml:"slow_ema"`
	RSI     int `json:"rsi" yaml:"rsi"`
	ATR     int `json:"atr" yaml:"atr"`
	Level   int `json:"level" yaml:"level"`
}

// StrategyConfig names the signal generators in priority order.
type StrategyConfig struct {
	Generators []string `json:"generators" yaml:"generators"`
}

// RiskConfig holds sizing parameters and circuit-breaker thresholds.
type RiskConfig struct {
	Fraction           float64 `json:"fraction" yaml:"fraction"`
	MinContracts       int     `json:"min_contracts" yaml:"min_contracts"`
	MaxContracts       int     `json:"max_contracts" yaml:"max_contracts"`
	MaxDailyLossPoints float64 `json:"max_daily_loss_points,omitempty" yaml:"max_daily_loss_points,omitempty"`
	ProfitLockPoints   float64 `json:"profit_lock_points,omitempty" yaml:"profit_lock_points,omitempty"`
	MaxConsecLosses    int     `json:"max_consec_losses,omitempty" yaml:"max_consec_losses,omitempty"`
	ATRMin             float64 `json:"atr_min,omitempty" yaml:"atr_min,omitempty"`
	ATRMax             float64 `json:"atr_max,omitempty" yaml:"atr_max,omitempty"`
}

// ExecutionConfig holds the fill and exit parameters.
type ExecutionConfig struct {
	StopATR            float64 `json:"stop_atr" yaml:"stop_atr"`
	RewardRisk         float64 `json:"reward_risk" yaml:"reward_risk"`
	TrailATR           float64 `json:"trail_atr,omitempty" yaml:"trail_atr,omitempty"`
	MinStopPoints      float64 `json:"min_stop_points,omitempty" yaml:"min_stop_points,omitempty"`
	MaxHoldBars        int     `json:"max_hold_bars" yaml:"max_hold_bars"`
	FixedContracts     int     `json:"fixed_contracts,omitempty" yaml:"fixed_contracts,omitempty"`
	FeePoints          float64 `json:"fee_points,omitempty" yaml:"fee_points,omitempty"`
	FeePerContractSide float64 `json:"fee_per_contract_side,omitempty" yaml:"fee_per_contract_side,omitempty"`
	Cooldown           string  `json:"cooldown,omitempty" yaml:"cooldown,omitempty"` // e.g. "1m"
}

// SessionConfig restricts runs to a wall-clock window, both "HH:MM".
// Empty fields disable the restriction.
type SessionConfig struct {
	From string `json:"from,omitempty" yaml:"from,omitempty"`
	To   string `json:"to,omitempty" yaml:"to,omitempty"`
}

// JournalConfig selects the journal backend.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv" or "sqlite"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// ServerConfig holds the decision service parameters.
type ServerConfig struct {
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`
}

// LoadFromFile loads configuration from a file (YAML or JSON).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile saves configuration to a file, format chosen by extension.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Account.Capital <= 0 {
		return fmt.Errorf("account.capital must be positive")
	}
	if c.Account.PointValue <= 0 {
		return fmt.Errorf("account.point_value must be positive")
	}

	p := c.Indicators
	for _, v := range []struct {
		name string
		val  int
	}{
		{"short_ma", p.ShortMA}, {"long_ma", p.LongMA},
		{"fast_ema", p.FastEMA}, {"slow_ema", p.SlowEMA},
		{"rsi", p.RSI}, {"atr", p.ATR}, {"level", p.Level},
	} {
		if v.val < 1 {
			return fmt.Errorf("indicators.%s must be at least 1", v.name)
		}
	}
	if p.ShortMA >= p.LongMA {
		return fmt.Errorf("indicators.short_ma must be shorter than long_ma")
	}
	if p.FastEMA >= p.SlowEMA {
		return fmt.Errorf("indicators.fast_ema must be shorter than slow_ema")
	}

	if len(c.Strategy.Generators) == 0 {
		return fmt.Errorf("strategy.generators is required")
	}
	if _, err := c.Chain(); err != nil {
		return err
	}

	if c.Execution.FixedContracts <= 0 {
		if c.Risk.Fraction <= 0 || c.Risk.Fraction > 1 {
			return fmt.Errorf("risk.fraction must be between 0 and 1")
		}
		if c.Risk.MinContracts < 1 {
			return fmt.Errorf("risk.min_contracts must be at least 1")
		}
		if c.Risk.MaxContracts < c.Risk.MinContracts {
			return fmt.Errorf("risk.max_contracts must be >= min_contracts")
		}
	}

	if c.Execution.Cooldown != "" {
		if _, err := time.ParseDuration(c.Execution.Cooldown); err != nil {
			return fmt.Errorf("execution.cooldown: %w", err)
		}
	}

	if (c.Session.From == "") != (c.Session.To == "") {
		return fmt.Errorf("session.from and session.to must be set together")
	}

	switch c.Journal.Type {
	case "", "csv":
		if c.Journal.Type == "csv" && (c.Journal.TradesFile == "" || c.Journal.EquityFile == "") {
			return fmt.Errorf("journal trades_file and equity_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'csv' or 'sqlite'")
	}

	return nil
}

// Periods materializes the indicator periods.
func (c *Config) Periods() indicators.Periods {
	p := c.Indicators
	return indicators.Periods{
		ShortMA: p.ShortMA, LongMA: p.LongMA,
		FastEMA: p.FastEMA, SlowEMA: p.SlowEMA,
		RSI: p.RSI, ATR: p.ATR, Level: p.Level,
	}
}

// Chain materializes the signal chain in configured priority order.
func (c *Config) Chain() (signal.Chain, error) {
	var chain signal.Chain
	for _, name := range c.Strategy.Generators {
		switch name {
		case "breakout":
			chain = append(chain, signal.Breakout{})
		case "ma_cross":
			chain = append(chain, signal.MACross{})
		case "ma_trend":
			chain = append(chain, signal.MATrend{})
		case "ema_cross":
			chain = append(chain, signal.EMACross{})
		case "rsi_bounds":
			chain = append(chain, signal.NewRSIBounds())
		case "pullback":
			chain = append(chain, signal.NewPullback())
		default:
			return nil, fmt.Errorf("unknown signal generator %q", name)
		}
	}
	return chain, nil
}

// Engine materializes a backtest engine from the configuration.
func (c *Config) Engine() (*backtest.Engine, error) {
	var cooldown time.Duration
	if c.Execution.Cooldown != "" {
		var err error
		if cooldown, err = time.ParseDuration(c.Execution.Cooldown); err != nil {
			return nil, fmt.Errorf("execution.cooldown: %w", err)
		}
	}
	return &backtest.Engine{
		Sizer: risk.Sizer{
			Fraction:     c.Risk.Fraction,
			PointValue:   c.Account.PointValue,
			MinContracts: c.Risk.MinContracts,
			MaxContracts: c.Risk.MaxContracts,
		},
		Limits: risk.Limits{
			MaxDailyLossPoints:    c.Risk.MaxDailyLossPoints,
			DailyProfitLockPoints: c.Risk.ProfitLockPoints,
			MaxConsecutiveLosses:  c.Risk.MaxConsecLosses,
			ATRMin:                c.Risk.ATRMin,
			ATRMax:                c.Risk.ATRMax,
		},
		Exec: backtest.Exec{
			StopATR:            c.Execution.StopATR,
			RewardRisk:         c.Execution.RewardRisk,
			TrailATR:           c.Execution.TrailATR,
			MinStopPoints:      c.Execution.MinStopPoints,
			MaxHoldBars:        c.Execution.MaxHoldBars,
			FixedContracts:     c.Execution.FixedContracts,
			FeePoints:          c.Execution.FeePoints,
			FeePerContractSide: c.Execution.FeePerContractSide,
			Cooldown:           cooldown,
		},
		Capital: c.Account.Capital,
	}, nil
}

// Default returns a configuration with sensible defaults: the risk-aware
// ES futures setup on one-minute bars.
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			Capital:    50000,
			PointValue: 5, // MES
		},
		Indicators: IndicatorConfig{
			ShortMA: 20, LongMA: 50,
			FastEMA: 8, SlowEMA: 21,
			RSI: 14, ATR: 14, Level: 20,
		},
		Strategy: StrategyConfig{
			Generators: []string{"breakout", "ma_trend", "rsi_bounds"},
		},
		Risk: RiskConfig{
			Fraction:           0.005,
			MinContracts:       1,
			MaxContracts:       2,
			MaxDailyLossPoints: 30,
			ProfitLockPoints:   40,
			MaxConsecLosses:    3,
			ATRMin:             0.5,
			ATRMax:             5.0,
		},
		Execution: ExecutionConfig{
			StopATR:     1.5,
			RewardRisk:  1.5,
			MaxHoldBars: 60,
			FeePoints:   0.75,
			Cooldown:    "1m",
		},
		Session: SessionConfig{From: "16:00", To: "17:30"},
		Journal: JournalConfig{
			Type:       "csv",
			TradesFile: "./trades.csv",
			EquityFile: "./equity.csv",
		},
		Server: ServerConfig{Addr: ":8080"},
	}
}
