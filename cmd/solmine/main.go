// Command solmine computes Bitcoin mining profitability for solar, grid
// and hybrid powered setups. It fetches live network metrics (optionally
// through a Redis cache), runs the closed-form profitability model and
// prints a plain-text or JSON report.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/unlock-blocks/solmine/internal/catalog"
	"github.com/unlock-blocks/solmine/internal/config"
	"github.com/unlock-blocks/solmine/internal/model"
	"github.com/unlock-blocks/solmine/internal/netdata"
	"github.com/unlock-blocks/solmine/internal/profit"
	"github.com/unlock-blocks/solmine/internal/report"
)

type flags struct {
	configPath string
	listMiners bool
	jsonOut    bool
	logJSON    bool
	verbose    bool

	miner    string
	ths      float64
	watts    float64
	price    float64
	machines int

	mode        string
	sunHours    float64
	solarDays   float64
	exportPrice float64
	gridPrice   float64
	gridHours   float64
	gridDays    float64

	currency string

	offline    bool
	btcPrice   float64
	eurUSD     float64
	networkEHS float64
	blockFees  float64
}

func parseFlags() flags {
	var f flags
	flag.StringVar(&f.configPath, "config", config.DefaultPath, "configuration file (TOML)")
	flag.BoolVar(&f.listMiners, "list", false, "list catalog miners and exit")
	flag.BoolVar(&f.jsonOut, "json", false, "emit the report as JSON")
	flag.BoolVar(&f.logJSON, "log-json", false, "structured JSON logs on stderr")
	flag.BoolVar(&f.verbose, "v", false, "debug logging")

	flag.StringVar(&f.miner, "miner", "", "catalog miner model (see -list)")
	flag.Float64Var(&f.ths, "ths", 0, "custom miner hashrate in TH/s")
	flag.Float64Var(&f.watts, "watts", 0, "custom miner power draw in W")
	flag.Float64Var(&f.price, "price", 0, "custom miner price in EUR")
	flag.IntVar(&f.machines, "machines", 1, "number of machines (1-1000)")

	flag.StringVar(&f.mode, "mode", "grid", "energy mode: solar, grid or hybrid")
	flag.Float64Var(&f.sunHours, "sun-hours", 5.5, "peak sun hours per day")
	flag.Float64Var(&f.solarDays, "solar-days", 365, "solar operating days per year")
	flag.Float64Var(&f.exportPrice, "export-price", 0, "feed-in price in EUR/kWh (solar opportunity cost)")
	flag.Float64Var(&f.gridPrice, "grid-price", 0.12, "grid price in EUR/kWh")
	flag.Float64Var(&f.gridHours, "grid-hours", 24, "grid operating hours per day")
	flag.Float64Var(&f.gridDays, "grid-days", 365, "grid operating days per year")

	flag.StringVar(&f.currency, "currency", "", "display currency: EUR or USD (overrides config)")

	flag.BoolVar(&f.offline, "offline", false, "skip the network fetch and use the manual metrics below")
	flag.Float64Var(&f.btcPrice, "btc-price", 0, "manual BTC price in EUR (offline)")
	flag.Float64Var(&f.eurUSD, "eur-usd", 1.08, "manual EUR/USD rate (offline)")
	flag.Float64Var(&f.networkEHS, "network-ehs", 0, "manual network hashrate in EH/s (offline)")
	flag.Float64Var(&f.blockFees, "block-fees", 0, "manual average fees per block in BTC (offline)")

	flag.Parse()
	return f
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "solmine:", err)
		os.Exit(1)
	}
}

func run() error {
	// A local .env is convenient for SOLMINE_* overrides; absence is fine.
	_ = godotenv.Load()

	f := parseFlags()
	setupLogging(f)

	cfg, err := config.Load(f.configPath)
	if err != nil {
		return err
	}

	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	if f.listMiners {
		for _, name := range cat.Names() {
			hw, _ := cat.Get(name)
			fmt.Printf("%-24s %7.2f TH/s %7.0f W %10s EUR\n",
				hw.Name, hw.HashrateTHS, hw.PowerWatts, hw.Price.Decimal().StringFixed(2))
		}
		return nil
	}

	hw, err := resolveHardware(f, cat)
	if err != nil {
		return err
	}
	energy, err := buildEnergyConfig(f)
	if err != nil {
		return err
	}

	currencyStr := cfg.DisplayCurrency
	if f.currency != "" {
		currencyStr = f.currency
	}
	currency, err := model.ParseCurrency(currencyStr)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	source, cleanup, err := buildSource(f, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	snap, err := fetchSnapshot(ctx, source, f)
	if err != nil {
		return fmt.Errorf("fetching network data: %w", err)
	}
	slog.Debug("snapshot ready",
		"id", snap.ID,
		"btc_eur", snap.BTCPriceEUR,
		"network_ths", snap.NetworkHashrateTHS,
	)

	engine, err := profit.NewEngine(cfg.EngineParams())
	if err != nil {
		return err
	}
	res, err := engine.Compute(hw, energy, *snap, currency)
	if err != nil {
		return err
	}

	if f.jsonOut {
		return report.WriteJSON(os.Stdout, hw, energy, snap, res)
	}
	r := report.NewRenderer(currency, snap.EURUSDRate)
	return r.Write(os.Stdout, hw, energy, snap, res)
}

func setupLogging(f flags) {
	level := slog.LevelInfo
	if f.verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if f.logJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func loadCatalog(cfg config.Config) (*catalog.Catalog, error) {
	if cfg.CatalogPath != "" {
		return catalog.LoadFile(cfg.CatalogPath)
	}
	return catalog.Builtin(), nil
}

// resolveHardware picks a catalog miner or assembles a custom profile
// from the -ths/-watts/-price flags.
func resolveHardware(f flags, cat *catalog.Catalog) (model.HardwareProfile, error) {
	if f.miner != "" {
		return cat.Get(f.miner)
	}
	if f.ths <= 0 {
		return model.HardwareProfile{}, fmt.Errorf("either -miner or -ths/-watts/-price is required (see -list)")
	}
	return model.HardwareProfile{
		Name:        "custom",
		HashrateTHS: f.ths,
		PowerWatts:  f.watts,
		Price:       model.EURFromFloat(f.price),
	}, nil
}

func buildEnergyConfig(f flags) (model.EnergyConfig, error) {
	mode, err := model.ParseEnergyMode(f.mode)
	if err != nil {
		return model.EnergyConfig{}, err
	}
	energy := model.EnergyConfig{
		MachineCount: f.machines,
		Mode:         mode,
	}
	if mode == model.ModeSolar || mode == model.ModeHybrid {
		energy.Solar = &model.SolarParams{
			SunHoursPerDay:    f.sunHours,
			DaysPerYear:       f.solarDays,
			ExportPricePerKWh: decimal.NewFromFloat(f.exportPrice),
		}
	}
	if mode == model.ModeGrid || mode == model.ModeHybrid {
		energy.Grid = &model.GridParams{
			PricePerKWh: decimal.NewFromFloat(f.gridPrice),
			HoursPerDay: f.gridHours,
			DaysPerYear: f.gridDays,
		}
	}
	return energy, nil
}

// buildSource wires the snapshot source: manual metrics when -offline,
// otherwise the HTTP fetcher, wrapped in a Redis read-through cache when
// configured. The cleanup func closes the Redis connection if one exists.
func buildSource(f flags, cfg config.Config) (netdata.Source, func(), error) {
	noop := func() {}

	if f.offline {
		if f.btcPrice <= 0 || f.networkEHS <= 0 {
			return nil, noop, fmt.Errorf("-offline requires -btc-price and -network-ehs")
		}
		return &netdata.StaticSource{Snapshot: model.NetworkSnapshot{
			ID:                 uuid.New().String(),
			BTCPriceEUR:        decimal.NewFromFloat(f.btcPrice),
			EURUSDRate:         decimal.NewFromFloat(f.eurUSD),
			NetworkHashrateTHS: f.networkEHS * 1e6,
			AvgFeePerBlockBTC:  decimal.NewFromFloat(f.blockFees),
			FetchedAt:          time.Now().UTC(),
		}}, noop, nil
	}

	var source netdata.Source = netdata.NewHTTPSource(cfg.FetcherConfig())

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, noop, fmt.Errorf("parsing redis URL: %w", err)
		}
		rdb := redis.NewClient(opts)
		source = netdata.NewCachedSource(source, rdb, cfg.SnapshotTTL())
		return source, func() { _ = rdb.Close() }, nil
	}
	return source, noop, nil
}

// fetchSnapshot runs the fetch behind a terminal spinner unless the
// output is JSON (keep stderr quiet for scripted runs).
func fetchSnapshot(ctx context.Context, source netdata.Source, f flags) (*model.NetworkSnapshot, error) {
	if f.offline || f.jsonOut {
		return source.Fetch(ctx)
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " fetching network data..."
	s.Start()
	defer s.Stop()

	return source.Fetch(ctx)
}
