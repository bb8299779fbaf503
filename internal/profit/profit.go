// Package profit implements the mining profitability model: the closed-form
// formula set converting {hardware specs, energy configuration, live network
// metrics} into financial and probabilistic outputs.
//
// The engine is deterministic and side-effect-free — network snapshots are
// passed as arguments, not stored. All monetary values use
// shopspring/decimal via model.EURAmount — never float64 for money.
// Transcendental math (the solo-mining probability) runs in float64 using
// log1p/expm1 for numerical stability, with results guarded before use.
//
// Every result is computed in the reference currency (EUR). The display
// currency is carried through as a presentation hint only; conversion
// happens once, at the report boundary.
package profit

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/unlock-blocks/solmine/internal/model"
)

var (
	// ErrInvalidHashrate is returned when hashrate is not a positive finite number.
	ErrInvalidHashrate = errors.New("profit: hashrate must be a positive number")

	// ErrInvalidPower is returned when power draw is negative or not finite.
	ErrInvalidPower = errors.New("profit: power draw must be a non-negative number")

	// ErrNegativePrice is returned when the hardware price is negative.
	ErrNegativePrice = errors.New("profit: hardware price must be non-negative")

	// ErrInvalidMachineCount is returned when the machine count is outside 1..1000.
	ErrInvalidMachineCount = errors.New("profit: machine count must be between 1 and 1000")

	// ErrMissingEnergySource is returned when the selected mode lacks its
	// solar/grid sub-configuration.
	ErrMissingEnergySource = errors.New("profit: energy mode requires its source parameters")

	// ErrInvalidHours is returned for hours-per-day outside [0, 24].
	ErrInvalidHours = errors.New("profit: hours per day must be within [0, 24]")

	// ErrInvalidDays is returned for days-per-year outside [0, 365].
	ErrInvalidDays = errors.New("profit: days per year must be within [0, 365]")

	// ErrNegativeEnergyPrice is returned for a negative price per kWh.
	ErrNegativeEnergyPrice = errors.New("profit: energy price per kWh must be non-negative")

	// ErrInvalidSnapshot is returned when network metrics are malformed.
	ErrInvalidSnapshot = errors.New("profit: invalid network snapshot")

	// ErrInvalidParams is returned when engine parameters are out of range.
	ErrInvalidParams = errors.New("profit: invalid engine parameters")
)

const (
	hoursPerDay    = 24.0
	daysPerYear    = 365.0
	secondsPerYear = daysPerYear * 86400
)

// Params are the block-economics constants the model depends on. They are
// explicit (and testable) rather than baked into the formulas.
type Params struct {
	// BlocksPerDay is the average number of blocks mined per day.
	BlocksPerDay int

	// BlockSubsidyBTC is the base subsidy per block (3.125 BTC post-2024).
	BlockSubsidyBTC decimal.Decimal

	// AvgBlockInterval is the average time between blocks.
	AvgBlockInterval time.Duration

	// PoolFeeRate is the pool commission taken off gross income, [0, 1).
	PoolFeeRate decimal.Decimal

	// SolarPerformanceFactor derates nameplate PV power for inverter,
	// temperature, soiling and wiring losses, (0, 1].
	SolarPerformanceFactor float64

	// SoloWindow is the observation window for solo-mining odds.
	SoloWindow time.Duration
}

// DefaultParams returns the constants the original calculator uses.
func DefaultParams() Params {
	return Params{
		BlocksPerDay:           144,
		BlockSubsidyBTC:        decimal.NewFromFloat(3.125),
		AvgBlockInterval:       10 * time.Minute,
		PoolFeeRate:            decimal.NewFromFloat(0.02),
		SolarPerformanceFactor: 0.8,
		SoloWindow:             daysPerYear * 24 * time.Hour,
	}
}

// Engine evaluates the profitability model under a fixed parameter set.
// It is stateless and safe for concurrent use.
type Engine struct {
	p Params
}

// NewEngine validates the parameter set and creates an engine.
func NewEngine(p Params) (*Engine, error) {
	one := decimal.NewFromInt(1)
	switch {
	case p.BlocksPerDay <= 0:
		return nil, fmt.Errorf("%w: blocks per day must be positive", ErrInvalidParams)
	case p.BlockSubsidyBTC.IsNegative():
		return nil, fmt.Errorf("%w: block subsidy must be non-negative", ErrInvalidParams)
	case p.AvgBlockInterval <= 0:
		return nil, fmt.Errorf("%w: block interval must be positive", ErrInvalidParams)
	case p.PoolFeeRate.IsNegative() || p.PoolFeeRate.GreaterThanOrEqual(one):
		return nil, fmt.Errorf("%w: pool fee rate must be within [0, 1)", ErrInvalidParams)
	case p.SolarPerformanceFactor <= 0 || p.SolarPerformanceFactor > 1:
		return nil, fmt.Errorf("%w: solar performance factor must be within (0, 1]", ErrInvalidParams)
	case p.SoloWindow <= 0:
		return nil, fmt.Errorf("%w: solo window must be positive", ErrInvalidParams)
	}
	return &Engine{p: p}, nil
}

// Params returns the engine's parameter set.
func (e *Engine) Params() Params { return e.p }

// Compute runs the full profitability model. It validates all inputs
// before any arithmetic and never produces Inf or NaN: degenerate
// outcomes surface as explicit undefined variants in the result.
func (e *Engine) Compute(
	hw model.HardwareProfile,
	energy model.EnergyConfig,
	snap model.NetworkSnapshot,
	display model.Currency,
) (*model.ProfitabilityResult, error) {
	if err := validateHardware(hw); err != nil {
		return nil, err
	}
	if err := validateEnergy(energy); err != nil {
		return nil, err
	}
	if err := validateSnapshot(snap); err != nil {
		return nil, err
	}
	if display != model.EUR && display != model.USD {
		return nil, fmt.Errorf("profit: unsupported display currency %q", display)
	}

	count := int64(energy.MachineCount)
	countDec := decimal.NewFromInt(count)
	fleetTHS := hw.HashrateTHS * float64(count)
	fleetKW := hw.PowerWatts * float64(count) / 1000

	res := &model.ProfitabilityResult{
		EfficiencyWPerTH:  hw.PowerWatts / hw.HashrateTHS,
		Investment:        hw.Price.MulScalar(countDec),
		DisplayCurrency:   display,
		HardwareCostPerTH: hw.Price.MulScalar(countDec).DivScalar(decimal.NewFromFloat(fleetTHS)),
	}

	// Spot hashprice: EUR earned per TH/s per day of continuous mining.
	hashprice := e.hashpricePerTHDay(snap)
	res.HashpricePerTHDay = hashprice

	// Per-source annual economics.
	if energy.Solar != nil {
		res.Solar = e.solarEconomics(energy.Solar, hashprice, fleetTHS, fleetKW)
		res.RequiredPVKWp = fleetKW / e.p.SolarPerformanceFactor
	}
	if energy.Grid != nil {
		res.Grid = e.gridEconomics(energy, hashprice, fleetTHS, fleetKW)
	}
	res.Combined = combine(res.Solar, res.Grid)

	// Energy cost per terahash of work actually produced. Work over the
	// year is hashrate (TH/s) times active seconds.
	if produced := fleetTHS * res.Combined.ActiveHours * 3600; produced > 0 {
		res.EnergyCostPerTH = res.Combined.EnergyCost.DivScalar(decimal.NewFromFloat(produced))
	}

	// Expected BTC mined per year at the configured duty cycle.
	btcPerYear := decimal.Decimal{}
	if snap.BTCPriceEUR.IsPositive() {
		btcPerYear = res.Combined.GrossIncome.Decimal().Div(snap.BTCPriceEUR)
	}
	res.BTCPerYear = btcPerYear.InexactFloat64()

	if btcPerYear.IsPositive() {
		outlay := res.Combined.EnergyCost.Add(res.Combined.PoolFees)
		res.EURToMine1BTC = outlay.DivScalar(btcPerYear)
		res.TimeToMine1BTC = model.DefinedSeconds(secondsPerYear / btcPerYear.InexactFloat64())
	} else {
		res.TimeToMine1BTC = model.UndefinedTime()
	}

	// Breakeven: smallest t with dailyNet * t >= investment.
	res.DailyNetRevenue = res.Combined.NetProfit.DivScalar(decimal.NewFromInt(daysPerYear))
	res.BreakevenPoint = breakeven(res.Investment, res.DailyNetRevenue)

	res.SoloMiningOdds = e.soloOdds(fleetTHS, snap.NetworkHashrateTHS)

	return res, nil
}

// hashpricePerTHDay computes the spot hashprice in EUR per TH/s per day:
//
//	(subsidy + avgFees) × blocksPerDay / networkTHS × btcPriceEUR
//
// A zero network hashrate yields a zero hashprice (the degenerate case is
// reported downstream as undefined time-to-mine, never a division).
func (e *Engine) hashpricePerTHDay(snap model.NetworkSnapshot) model.EURAmount {
	if snap.NetworkHashrateTHS <= 0 {
		return model.EURAmount{}
	}
	btcPerBlock := e.p.BlockSubsidyBTC.Add(snap.AvgFeePerBlockBTC)
	btcPerTHDay := btcPerBlock.
		Mul(decimal.NewFromInt(int64(e.p.BlocksPerDay))).
		Div(decimal.NewFromFloat(snap.NetworkHashrateTHS))
	return model.EURFromDecimal(btcPerTHDay.Mul(snap.BTCPriceEUR))
}

// solarEconomics computes the annual breakdown for the solar source.
// Consumed solar energy is free at the meter; its cost is the foregone
// feed-in revenue (zero unless an export price is configured).
func (e *Engine) solarEconomics(s *model.SolarParams, hashprice model.EURAmount, fleetTHS, fleetKW float64) model.SourceEconomics {
	annualHours := s.SunHoursPerDay * s.DaysPerYear
	return e.sourceEconomics(hashprice, fleetTHS, fleetKW, annualHours, s.ExportPricePerKWh)
}

// gridEconomics computes the annual breakdown for the grid source. In
// hybrid mode the grid-billed hours are clamped so solar plus grid never
// exceeds 24 hours per day.
func (e *Engine) gridEconomics(energy model.EnergyConfig, hashprice model.EURAmount, fleetTHS, fleetKW float64) model.SourceEconomics {
	g := energy.Grid
	hours := g.HoursPerDay
	if energy.Mode == model.ModeHybrid && energy.Solar != nil {
		if room := hoursPerDay - energy.Solar.SunHoursPerDay; hours > room {
			hours = room
		}
		if hours < 0 {
			hours = 0
		}
	}
	annualHours := hours * g.DaysPerYear
	return e.sourceEconomics(hashprice, fleetTHS, fleetKW, annualHours, g.PricePerKWh)
}

// sourceEconomics is the shared per-source formula set. annualHours is the
// operating time on this source over a year; pricePerKWh is what each
// consumed kWh costs (metered price or opportunity cost).
func (e *Engine) sourceEconomics(hashprice model.EURAmount, fleetTHS, fleetKW, annualHours float64, pricePerKWh decimal.Decimal) model.SourceEconomics {
	// Duty-cycled revenue: hashprice is per full day of mining.
	gross := hashprice.MulScalar(decimal.NewFromFloat(fleetTHS * annualHours / hoursPerDay))
	fees := gross.MulScalar(e.p.PoolFeeRate)

	energyKWh := fleetKW * annualHours
	cost := model.EURFromDecimal(pricePerKWh.Mul(decimal.NewFromFloat(energyKWh)))

	return model.SourceEconomics{
		GrossIncome: gross,
		PoolFees:    fees,
		EnergyKWh:   energyKWh,
		EnergyCost:  cost,
		NetProfit:   gross.Sub(fees).Sub(cost),
		ActiveHours: annualHours,
	}
}

func combine(a, b model.SourceEconomics) model.SourceEconomics {
	return model.SourceEconomics{
		GrossIncome: a.GrossIncome.Add(b.GrossIncome),
		PoolFees:    a.PoolFees.Add(b.PoolFees),
		EnergyKWh:   a.EnergyKWh + b.EnergyKWh,
		EnergyCost:  a.EnergyCost.Add(b.EnergyCost),
		NetProfit:   a.NetProfit.Add(b.NetProfit),
		ActiveHours: a.ActiveHours + b.ActiveHours,
	}
}

// breakeven solves dailyNet * t >= investment for the smallest t. A
// non-positive daily net means the crossing never happens; that is an
// explicit unachievable state, not an infinity.
func breakeven(investment, dailyNet model.EURAmount) model.Breakeven {
	if investment.IsZero() {
		return model.Breakeven{Achievable: true, Seconds: 0}
	}
	if !dailyNet.IsPositive() {
		return model.Breakeven{}
	}
	days := investment.Decimal().Div(dailyNet.Decimal()).InexactFloat64()
	return model.Breakeven{Achievable: true, Seconds: days * 86400}
}

// soloOdds computes the probability of finding at least one block within
// the solo window:
//
//	p = 1 − (1 − pBlock)^nBlocks, pBlock = local/network
//
// Evaluated as -expm1(n·log1p(-pBlock)) so that tiny per-block
// probabilities survive float64 cancellation. Extremes map to explicit
// negligible/certain sentinels instead of dividing by zero.
func (e *Engine) soloOdds(fleetTHS, networkTHS float64) model.SoloOdds {
	if networkTHS <= 0 || fleetTHS <= 0 {
		return model.SoloOdds{Kind: model.OddsNegligible}
	}
	pBlock := fleetTHS / networkTHS
	if pBlock >= 1 {
		return model.SoloOdds{Kind: model.OddsCertain}
	}
	nBlocks := e.p.SoloWindow.Seconds() / e.p.AvgBlockInterval.Seconds()
	prob := -math.Expm1(nBlocks * math.Log1p(-pBlock))
	return model.OddsFromProbability(prob)
}

// AmortizationSeries projects cumulative net revenue year by year against
// the upfront investment — the input for the charting consumer. years is
// the projection horizon (the original charts 10).
func AmortizationSeries(res *model.ProfitabilityResult, years int) []model.AmortizationPoint {
	if years < 0 {
		years = 0
	}
	annualNet := res.Combined.NetProfit
	points := make([]model.AmortizationPoint, 0, years+1)
	for y := 0; y <= years; y++ {
		cum := annualNet.MulScalar(decimal.NewFromInt(int64(y)))
		points = append(points, model.AmortizationPoint{
			Year:          y,
			CumulativeNet: cum,
			Recovered:     !cum.LessThan(res.Investment),
		})
	}
	return points
}

// --- Validation ---

func validateHardware(hw model.HardwareProfile) error {
	if hw.HashrateTHS <= 0 || math.IsNaN(hw.HashrateTHS) || math.IsInf(hw.HashrateTHS, 0) {
		return fmt.Errorf("%w: got %v TH/s", ErrInvalidHashrate, hw.HashrateTHS)
	}
	if hw.PowerWatts < 0 || math.IsNaN(hw.PowerWatts) || math.IsInf(hw.PowerWatts, 0) {
		return fmt.Errorf("%w: got %v W", ErrInvalidPower, hw.PowerWatts)
	}
	if hw.Price.IsNegative() {
		return fmt.Errorf("%w: got %s", ErrNegativePrice, hw.Price)
	}
	return nil
}

func validateEnergy(energy model.EnergyConfig) error {
	if energy.MachineCount < 1 || energy.MachineCount > 1000 {
		return fmt.Errorf("%w: got %d", ErrInvalidMachineCount, energy.MachineCount)
	}

	switch energy.Mode {
	case model.ModeSolar:
		if energy.Solar == nil {
			return fmt.Errorf("%w: solar mode without solar parameters", ErrMissingEnergySource)
		}
	case model.ModeGrid:
		if energy.Grid == nil {
			return fmt.Errorf("%w: grid mode without grid parameters", ErrMissingEnergySource)
		}
	case model.ModeHybrid:
		if energy.Solar == nil || energy.Grid == nil {
			return fmt.Errorf("%w: hybrid mode requires both solar and grid parameters", ErrMissingEnergySource)
		}
	default:
		return fmt.Errorf("profit: unknown energy mode %q", energy.Mode)
	}

	if s := energy.Solar; s != nil {
		if s.SunHoursPerDay < 0 || s.SunHoursPerDay > hoursPerDay || math.IsNaN(s.SunHoursPerDay) {
			return fmt.Errorf("%w: sun hours %v", ErrInvalidHours, s.SunHoursPerDay)
		}
		if s.DaysPerYear < 0 || s.DaysPerYear > daysPerYear || math.IsNaN(s.DaysPerYear) {
			return fmt.Errorf("%w: solar days %v", ErrInvalidDays, s.DaysPerYear)
		}
		if s.ExportPricePerKWh.IsNegative() {
			return fmt.Errorf("%w: export price %s", ErrNegativeEnergyPrice, s.ExportPricePerKWh)
		}
	}
	if g := energy.Grid; g != nil {
		if g.HoursPerDay < 0 || g.HoursPerDay > hoursPerDay || math.IsNaN(g.HoursPerDay) {
			return fmt.Errorf("%w: grid hours %v", ErrInvalidHours, g.HoursPerDay)
		}
		if g.DaysPerYear < 0 || g.DaysPerYear > daysPerYear || math.IsNaN(g.DaysPerYear) {
			return fmt.Errorf("%w: grid days %v", ErrInvalidDays, g.DaysPerYear)
		}
		if g.PricePerKWh.IsNegative() {
			return fmt.Errorf("%w: grid price %s", ErrNegativeEnergyPrice, g.PricePerKWh)
		}
	}
	return nil
}

func validateSnapshot(snap model.NetworkSnapshot) error {
	if !snap.BTCPriceEUR.IsPositive() {
		return fmt.Errorf("%w: BTC price must be positive, got %s", ErrInvalidSnapshot, snap.BTCPriceEUR)
	}
	if !snap.EURUSDRate.IsPositive() {
		return fmt.Errorf("%w: EUR/USD rate must be positive, got %s", ErrInvalidSnapshot, snap.EURUSDRate)
	}
	if snap.NetworkHashrateTHS < 0 || math.IsNaN(snap.NetworkHashrateTHS) || math.IsInf(snap.NetworkHashrateTHS, 0) {
		return fmt.Errorf("%w: network hashrate %v", ErrInvalidSnapshot, snap.NetworkHashrateTHS)
	}
	if snap.AvgFeePerBlockBTC.IsNegative() {
		return fmt.Errorf("%w: average fee per block must be non-negative, got %s", ErrInvalidSnapshot, snap.AvgFeePerBlockBTC)
	}
	return nil
}
