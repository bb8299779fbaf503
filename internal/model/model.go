// Package model defines the core domain types shared across the mining
// calculator. All monetary values use shopspring/decimal via EURAmount —
// never float64 for money. Physical quantities (hashrate, watts, hours)
// stay float64.
package model

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// HardwareProfile is a named ASIC specification — either a catalog entry
// or user-entered ("custom") values.
type HardwareProfile struct {
	Name        string    `json:"name"`
	HashrateTHS float64   `json:"hashrate_ths"` // terahashes per second, > 0
	PowerWatts  float64   `json:"power_watts"`  // wall draw, >= 0
	Price       EURAmount `json:"price_eur"`    // purchase cost, >= 0
}

// EnergyMode selects which power sources feed the miners.
type EnergyMode string

const (
	ModeSolar  EnergyMode = "solar"
	ModeGrid   EnergyMode = "grid"
	ModeHybrid EnergyMode = "hybrid"
)

// ParseEnergyMode validates an energy mode string.
func ParseEnergyMode(s string) (EnergyMode, error) {
	switch EnergyMode(s) {
	case ModeSolar, ModeGrid, ModeHybrid:
		return EnergyMode(s), nil
	}
	return "", fmt.Errorf("model: unknown energy mode %q (want solar, grid or hybrid)", s)
}

// SolarParams describes the photovoltaic installation. Consumed solar
// energy has zero marginal cost; ExportPricePerKWh optionally prices the
// foregone feed-in revenue (opportunity cost) per kWh consumed.
type SolarParams struct {
	SunHoursPerDay    float64         `json:"sun_hours_per_day"`    // peak sun hours, [0,24]
	DaysPerYear       float64         `json:"days_per_year"`        // [0,365]
	ExportPricePerKWh decimal.Decimal `json:"export_price_per_kwh"` // EUR/kWh, >= 0
}

// GridParams describes metered grid power.
type GridParams struct {
	PricePerKWh decimal.Decimal `json:"price_per_kwh"` // EUR/kWh, >= 0
	HoursPerDay float64         `json:"hours_per_day"` // [0,24]
	DaysPerYear float64         `json:"days_per_year"` // [0,365]
}

// EnergyConfig is the user's power sourcing selection.
// Invariant: Solar is set for solar/hybrid modes, Grid for grid/hybrid.
type EnergyConfig struct {
	MachineCount int          `json:"machine_count"` // 1..1000
	Mode         EnergyMode   `json:"mode"`
	Solar        *SolarParams `json:"solar,omitempty"`
	Grid         *GridParams  `json:"grid,omitempty"`
}

// NetworkSnapshot is an immutable record of live network metrics, fetched
// once per refresh and replaced wholesale on the next one.
type NetworkSnapshot struct {
	ID                 string          `json:"id"`
	BTCPriceEUR        decimal.Decimal `json:"btc_price_eur"`
	EURUSDRate         decimal.Decimal `json:"eur_usd_rate"`
	NetworkHashrateTHS float64         `json:"network_hashrate_ths"`
	AvgFeePerBlockBTC  decimal.Decimal `json:"avg_fee_per_block_btc"`
	FetchedAt          time.Time       `json:"fetched_at"`
}

// TimeEstimate is a wall-clock duration kept internally in seconds
// (real-valued, to avoid compounding rounding). Defined=false marks a
// mathematically degenerate outcome — never encoded as Inf or NaN.
type TimeEstimate struct {
	Defined bool    `json:"defined"`
	Seconds float64 `json:"seconds,omitempty"`
}

// DefinedSeconds constructs a defined estimate.
func DefinedSeconds(s float64) TimeEstimate { return TimeEstimate{Defined: true, Seconds: s} }

// UndefinedTime is the sentinel for "no finite answer".
func UndefinedTime() TimeEstimate { return TimeEstimate{} }

// Days returns the estimate in days. Only meaningful when Defined.
func (t TimeEstimate) Days() float64 { return t.Seconds / 86400 }

// Years returns the estimate in years. Only meaningful when Defined.
func (t TimeEstimate) Years() float64 { return t.Seconds / (365 * 86400) }

// Breakeven is the smallest elapsed time at which cumulative net revenue
// reaches the upfront investment. Achievable=false when net revenue per
// day is non-positive (there is no crossing).
type Breakeven struct {
	Achievable bool    `json:"achievable"`
	Seconds    float64 `json:"seconds,omitempty"`
}

// OddsKind classifies a solo-mining probability result.
type OddsKind string

const (
	// OddsNegligible marks a probability indistinguishable from zero.
	OddsNegligible OddsKind = "negligible"
	// OddsOneIn carries a meaningful "1 in N" figure.
	OddsOneIn OddsKind = "one_in"
	// OddsCertain marks a probability of (effectively) one.
	OddsCertain OddsKind = "certain"
)

// SoloOdds reports the probability of finding at least one block solo
// within the configured window, as 1-in-N odds. The extremes are explicit
// sentinels so no caller ever inverts a zero probability.
type SoloOdds struct {
	Kind  OddsKind `json:"kind"`
	OneIn int64    `json:"one_in,omitempty"`
}

func (o SoloOdds) String() string {
	switch o.Kind {
	case OddsOneIn:
		return fmt.Sprintf("1 in %d", o.OneIn)
	case OddsCertain:
		return "certain"
	default:
		return "negligible"
	}
}

// OddsFromProbability maps a probability to odds, guarding the extremes.
func OddsFromProbability(p float64) SoloOdds {
	if p <= 0 || math.IsNaN(p) {
		return SoloOdds{Kind: OddsNegligible}
	}
	if p >= 1 {
		return SoloOdds{Kind: OddsCertain}
	}
	n := int64(math.Round(1 / p))
	if n <= 1 {
		return SoloOdds{Kind: OddsCertain}
	}
	return SoloOdds{Kind: OddsOneIn, OneIn: n}
}

// SourceEconomics is the annual financial breakdown for one power source
// (or the combined total). All money in EUR.
type SourceEconomics struct {
	GrossIncome EURAmount `json:"gross_income_eur"` // mining revenue before fees
	PoolFees    EURAmount `json:"pool_fees_eur"`
	EnergyKWh   float64   `json:"energy_kwh"`      // energy consumed over the year
	EnergyCost  EURAmount `json:"energy_cost_eur"` // metered or opportunity cost
	NetProfit   EURAmount `json:"net_profit_eur"`  // gross - fees - energy cost
	ActiveHours float64   `json:"active_hours"`    // operating hours over the year
}

// ProfitabilityResult is the pure output of the profitability model.
// Every monetary field is an EURAmount regardless of DisplayCurrency;
// conversion happens exactly once, at the presentation boundary.
type ProfitabilityResult struct {
	// Hardware figures.
	EfficiencyWPerTH  float64   `json:"efficiency_w_per_th"`
	HardwareCostPerTH EURAmount `json:"hardware_cost_per_th_eur"` // price amortized over fleet hashrate
	EnergyCostPerTH   EURAmount `json:"energy_cost_per_th_eur"`   // energy cost per terahash produced
	Investment        EURAmount `json:"investment_eur"`

	// Network-derived figures.
	HashpricePerTHDay EURAmount    `json:"hashprice_per_th_day_eur"`
	EURToMine1BTC     EURAmount    `json:"eur_to_mine_1_btc"`
	TimeToMine1BTC    TimeEstimate `json:"time_to_mine_1_btc"`
	BTCPerYear        float64      `json:"btc_per_year"`

	// Financial outcome.
	DailyNetRevenue EURAmount `json:"daily_net_revenue_eur"`
	BreakevenPoint  Breakeven `json:"breakeven_point"`
	SoloMiningOdds  SoloOdds  `json:"solo_mining_odds"`

	// Per-source annual breakdowns.
	Solar    SourceEconomics `json:"solar"`
	Grid     SourceEconomics `json:"grid"`
	Combined SourceEconomics `json:"combined"`

	// RequiredPVKWp is the photovoltaic peak power needed to feed the
	// fleet, derated by the solar performance factor. Zero without solar.
	RequiredPVKWp float64 `json:"required_pv_kwp"`

	// DisplayCurrency is a presentation hint for the report layer. It
	// never changes the EUR values above.
	DisplayCurrency Currency `json:"display_currency"`
}

// AmortizationPoint is one step of the cumulative-revenue time series
// consumed by the charting layer.
type AmortizationPoint struct {
	Year          int       `json:"year"`
	CumulativeNet EURAmount `json:"cumulative_net_eur"`
	Recovered     bool      `json:"recovered"` // cumulative net >= investment
}
