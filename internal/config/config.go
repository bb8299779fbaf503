// Package config loads calculator settings from a TOML file with
// environment-variable fallback. Per-run inputs (miner, energy figures)
// come from CLI flags; this file carries the slow-moving knobs: display
// currency, API endpoints, cache wiring and model constants.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/shopspring/decimal"

	"github.com/unlock-blocks/solmine/internal/netdata"
	"github.com/unlock-blocks/solmine/internal/profit"
)

// DefaultPath is where Load looks when no path is given.
const DefaultPath = "solmine.toml"

// Config is the full configuration tree.
type Config struct {
	DisplayCurrency string `toml:"display_currency"` // EUR or USD
	CatalogPath     string `toml:"catalog_path"`     // optional miner catalog TOML

	RedisURL           string `toml:"redis_url"`            // optional snapshot cache
	SnapshotTTLSeconds int    `toml:"snapshot_ttl_seconds"` // cache TTL

	Fetch FetchConfig `toml:"fetch"`
	Model ModelConfig `toml:"model"`
}

// FetchConfig configures the network data fetchers.
type FetchConfig struct {
	CoinGeckoBase   string `toml:"coingecko_base"`
	FrankfurterBase string `toml:"frankfurter_base"`
	MempoolBase     string `toml:"mempool_base"`
	TimeoutSeconds  int    `toml:"timeout_seconds"`
	UserAgent       string `toml:"user_agent"`
}

// ModelConfig overrides the profitability model constants.
type ModelConfig struct {
	BlocksPerDay            int     `toml:"blocks_per_day"`
	BlockSubsidyBTC         float64 `toml:"block_subsidy_btc"`
	AvgBlockIntervalSeconds int     `toml:"avg_block_interval_seconds"`
	PoolFeeRate             float64 `toml:"pool_fee_rate"`
	SolarPerformanceFactor  float64 `toml:"solar_performance_factor"`
	SoloWindowDays          int     `toml:"solo_window_days"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	fetch := netdata.DefaultConfig()
	params := profit.DefaultParams()
	return Config{
		DisplayCurrency:    "EUR",
		SnapshotTTLSeconds: 300,
		Fetch: FetchConfig{
			CoinGeckoBase:   fetch.Endpoints.CoinGeckoBase,
			FrankfurterBase: fetch.Endpoints.FrankfurterBase,
			MempoolBase:     fetch.Endpoints.MempoolBase,
			TimeoutSeconds:  int(fetch.Timeout / time.Second),
			UserAgent:       fetch.UserAgent,
		},
		Model: ModelConfig{
			BlocksPerDay:            params.BlocksPerDay,
			BlockSubsidyBTC:         params.BlockSubsidyBTC.InexactFloat64(),
			AvgBlockIntervalSeconds: int(params.AvgBlockInterval / time.Second),
			PoolFeeRate:             params.PoolFeeRate.InexactFloat64(),
			SolarPerformanceFactor:  params.SolarPerformanceFactor,
			SoloWindowDays:          365,
		},
	}
}

// Load reads the TOML file at path over the defaults, then applies
// environment overrides. A missing file at the default path is fine;
// a missing explicit path is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	case os.IsNotExist(err) && path == DefaultPath:
		// Defaults + environment only.
	default:
		return cfg, fmt.Errorf("config: reading %s: %w", path, err)
	}

	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv lets SOLMINE_* variables override file values.
func applyEnv(cfg *Config) {
	if v := os.Getenv("SOLMINE_CURRENCY"); v != "" {
		cfg.DisplayCurrency = v
	}
	if v := os.Getenv("SOLMINE_CATALOG"); v != "" {
		cfg.CatalogPath = v
	}
	if v := os.Getenv("SOLMINE_REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}
	if v := os.Getenv("SOLMINE_MEMPOOL_BASE"); v != "" {
		cfg.Fetch.MempoolBase = v
	}
	if v := os.Getenv("SOLMINE_COINGECKO_BASE"); v != "" {
		cfg.Fetch.CoinGeckoBase = v
	}
	if v := os.Getenv("SOLMINE_FRANKFURTER_BASE"); v != "" {
		cfg.Fetch.FrankfurterBase = v
	}
}

// FetcherConfig converts the fetch section into netdata settings.
func (c Config) FetcherConfig() netdata.Config {
	return netdata.Config{
		Endpoints: netdata.Endpoints{
			CoinGeckoBase:   c.Fetch.CoinGeckoBase,
			FrankfurterBase: c.Fetch.FrankfurterBase,
			MempoolBase:     c.Fetch.MempoolBase,
		},
		Timeout:   time.Duration(c.Fetch.TimeoutSeconds) * time.Second,
		UserAgent: c.Fetch.UserAgent,
	}
}

// EngineParams converts the model section into engine parameters.
func (c Config) EngineParams() profit.Params {
	return profit.Params{
		BlocksPerDay:           c.Model.BlocksPerDay,
		BlockSubsidyBTC:        decimal.NewFromFloat(c.Model.BlockSubsidyBTC),
		AvgBlockInterval:       time.Duration(c.Model.AvgBlockIntervalSeconds) * time.Second,
		PoolFeeRate:            decimal.NewFromFloat(c.Model.PoolFeeRate),
		SolarPerformanceFactor: c.Model.SolarPerformanceFactor,
		SoloWindow:             time.Duration(c.Model.SoloWindowDays) * 24 * time.Hour,
	}
}

// SnapshotTTL returns the cache TTL as a duration.
func (c Config) SnapshotTTL() time.Duration {
	return time.Duration(c.SnapshotTTLSeconds) * time.Second
}
