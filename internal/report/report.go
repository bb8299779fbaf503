// Package report renders a ProfitabilityResult for humans (plain-text
// tables) and machines (JSON). This is the single place where EUR values
// become display-currency values; nothing here flows back into the model.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"github.com/unlock-blocks/solmine/internal/model"
	"github.com/unlock-blocks/solmine/internal/profit"
)

// AmortizationYears is the projection horizon of the text report.
const AmortizationYears = 10

// FormatDuration renders a time estimate in the largest sensible unit.
func FormatDuration(t model.TimeEstimate) string {
	if !t.Defined {
		return "undefined"
	}
	return formatSeconds(t.Seconds)
}

// FormatBreakeven renders a breakeven point.
func FormatBreakeven(b model.Breakeven) string {
	if !b.Achievable {
		return "never (net revenue is not positive)"
	}
	if b.Seconds == 0 {
		return "immediate"
	}
	return formatSeconds(b.Seconds)
}

func formatSeconds(s float64) string {
	switch {
	case s >= 2*365*86400:
		return fmt.Sprintf("%.1f years", s/(365*86400))
	case s >= 2*86400:
		return fmt.Sprintf("%.1f days", s/86400)
	case s >= 2*3600:
		return fmt.Sprintf("%.1f hours", s/3600)
	default:
		return fmt.Sprintf("%.0f seconds", s)
	}
}

// Renderer formats results in a fixed display currency using the
// EUR→USD rate of the snapshot the result was computed from.
type Renderer struct {
	currency model.Currency
	eurUSD   decimal.Decimal
}

// NewRenderer creates a renderer for the given display currency.
func NewRenderer(currency model.Currency, eurUSD decimal.Decimal) *Renderer {
	return &Renderer{currency: currency, eurUSD: eurUSD}
}

func (r *Renderer) money(a model.EURAmount) string {
	return a.In(r.currency, r.eurUSD).StringFixed(2)
}

// moneyFine renders with four decimals, for per-TH and per-kWh figures
// that are fractions of a cent.
func (r *Renderer) moneyFine(a model.EURAmount) string {
	return a.In(r.currency, r.eurUSD).StringFixed(4)
}

// Write renders the full plain-text report: miner data, network metrics,
// per-source economics, profitability figures and the amortization table.
func (r *Renderer) Write(w io.Writer, hw model.HardwareProfile, energy model.EnergyConfig, snap *model.NetworkSnapshot, res *model.ProfitabilityResult) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "MINER\t\n")
	fmt.Fprintf(tw, "  Model\t%s\n", hw.Name)
	fmt.Fprintf(tw, "  Machines\t%d\n", energy.MachineCount)
	fmt.Fprintf(tw, "  Hashrate\t%.2f TH/s\n", hw.HashrateTHS*float64(energy.MachineCount))
	fmt.Fprintf(tw, "  Power draw\t%.0f W\n", hw.PowerWatts*float64(energy.MachineCount))
	fmt.Fprintf(tw, "  Efficiency\t%.2f W/TH\n", res.EfficiencyWPerTH)
	fmt.Fprintf(tw, "  Investment\t%s\n", r.money(res.Investment))
	fmt.Fprintf(tw, "  Hardware cost per TH/s\t%s\n", r.money(res.HardwareCostPerTH))
	if res.RequiredPVKWp > 0 {
		fmt.Fprintf(tw, "  Required PV capacity\t%.2f kWp\n", res.RequiredPVKWp)
	}
	fmt.Fprintf(tw, "\t\n")

	fmt.Fprintf(tw, "NETWORK (fetched %s)\t\n", snap.FetchedAt.Format(time.RFC3339))
	fmt.Fprintf(tw, "  BTC price\t%s\n", r.money(model.EURFromDecimal(snap.BTCPriceEUR)))
	fmt.Fprintf(tw, "  Network hashrate\t%.2f EH/s\n", snap.NetworkHashrateTHS/1e6)
	fmt.Fprintf(tw, "  Avg fees per block\t%s BTC\n", snap.AvgFeePerBlockBTC.StringFixed(8))
	fmt.Fprintf(tw, "  Hashprice\t%s / TH/s / day\n", r.moneyFine(res.HashpricePerTHDay))
	fmt.Fprintf(tw, "\t\n")

	if res.Solar.ActiveHours > 0 || energy.Mode != model.ModeGrid {
		r.writeSource(tw, "SOLAR (annual)", res.Solar)
	}
	if res.Grid.ActiveHours > 0 || energy.Mode != model.ModeSolar {
		r.writeSource(tw, "GRID (annual)", res.Grid)
	}
	r.writeSource(tw, "COMBINED (annual)", res.Combined)

	fmt.Fprintf(tw, "PROFITABILITY\t\n")
	fmt.Fprintf(tw, "  Daily net revenue\t%s\n", r.money(res.DailyNetRevenue))
	fmt.Fprintf(tw, "  Energy cost per TH\t%s\n", r.moneyFine(res.EnergyCostPerTH))
	fmt.Fprintf(tw, "  BTC mined per year\t%.8f\n", res.BTCPerYear)
	fmt.Fprintf(tw, "  Cost to mine 1 BTC\t%s\n", r.money(res.EURToMine1BTC))
	fmt.Fprintf(tw, "  Time to mine 1 BTC\t%s\n", FormatDuration(res.TimeToMine1BTC))
	fmt.Fprintf(tw, "  Breakeven\t%s\n", FormatBreakeven(res.BreakevenPoint))
	fmt.Fprintf(tw, "  Solo block odds (1 year)\t%s\n", res.SoloMiningOdds)
	fmt.Fprintf(tw, "\t\n")

	fmt.Fprintf(tw, "AMORTIZATION\t\n")
	for _, p := range profit.AmortizationSeries(res, AmortizationYears) {
		mark := ""
		if p.Recovered {
			mark = "  recovered"
		}
		fmt.Fprintf(tw, "  Year %d\t%s%s\n", p.Year, r.money(p.CumulativeNet), mark)
	}

	return tw.Flush()
}

func (r *Renderer) writeSource(w io.Writer, title string, s model.SourceEconomics) {
	fmt.Fprintf(w, "%s\t\n", title)
	fmt.Fprintf(w, "  Operating hours\t%.0f h\n", s.ActiveHours)
	fmt.Fprintf(w, "  Energy consumed\t%.1f kWh\n", s.EnergyKWh)
	fmt.Fprintf(w, "  Gross income\t%s\n", r.money(s.GrossIncome))
	fmt.Fprintf(w, "  Pool fees\t%s\n", r.money(s.PoolFees))
	fmt.Fprintf(w, "  Energy cost\t%s\n", r.money(s.EnergyCost))
	fmt.Fprintf(w, "  Net profit\t%s\n", r.money(s.NetProfit))
	fmt.Fprintf(w, "\t\n")
}

// jsonReport is the machine-readable envelope. Monetary values stay in
// EUR; the display currency and rate travel alongside so consumers can
// convert without a second data source.
type jsonReport struct {
	Hardware     model.HardwareProfile      `json:"hardware"`
	Energy       model.EnergyConfig         `json:"energy"`
	Snapshot     *model.NetworkSnapshot     `json:"snapshot"`
	Result       *model.ProfitabilityResult `json:"result"`
	Amortization []model.AmortizationPoint  `json:"amortization"`
}

// WriteJSON renders the full report as indented JSON.
func WriteJSON(w io.Writer, hw model.HardwareProfile, energy model.EnergyConfig, snap *model.NetworkSnapshot, res *model.ProfitabilityResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonReport{
		Hardware:     hw,
		Energy:       energy,
		Snapshot:     snap,
		Result:       res,
		Amortization: profit.AmortizationSeries(res, AmortizationYears),
	})
}
