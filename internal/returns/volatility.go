package returns

import (
	"math"
	"time"

	"github.com/asrajavel/portfolio-simulator-sub000/internal/model"
	"gonum.org/v1/gonum/stat"
)

// Valuation is the portfolio's closing value on one day together with the
// net external cash that entered it that day (negative for contributions).
type Valuation struct {
	Date     time.Time `json:"date"`
	Value    float64   `json:"value"`
	CashFlow float64   `json:"cash_flow"`
}

// CashflowAdjustedReturns computes (ΔV + cashFlow) / V_prev for consecutive
// valuations. Days whose predecessor holds nothing are skipped, and so are
// forward-filled days where neither the value nor the cash moved.
func CashflowAdjustedReturns(vals []Valuation) []float64 {
	return dailyReturns(vals, true)
}

// PlainReturns is CashflowAdjustedReturns without the cash adjustment, for
// windows that only invest once.
func PlainReturns(vals []Valuation) []float64 {
	return dailyReturns(vals, false)
}

func dailyReturns(vals []Valuation, adjust bool) []float64 {
	if len(vals) < 2 {
		return nil
	}
	out := make([]float64, 0, len(vals)-1)
	for i := 1; i < len(vals); i++ {
		prev, cur := vals[i-1], vals[i]
		if prev.Value <= 0 {
			continue
		}
		dv := cur.Value - prev.Value
		cf := cur.CashFlow
		if !adjust {
			cf = 0
		}
		if dv == 0 && cur.CashFlow == 0 {
			continue
		}
		out = append(out, (dv+cf)/prev.Value)
	}
	return out
}

// AnnualizedVolatility scales the sample standard deviation of rets by the
// square root of the observed return days per year, in percent. The yearly
// count is the number of returns over the calendar days between first and
// last, times 365, rounded. Fewer than 2 returns yield 0.
func AnnualizedVolatility(rets []float64, first, last time.Time) float64 {
	if len(rets) < 2 {
		return 0
	}
	days := model.DaysBetween(first, last)
	if days <= 0 {
		return 0
	}
	perYear := math.Round(float64(len(rets)) / float64(days) * 365)
	return stat.StdDev(rets, nil) * math.Sqrt(perYear) * 100
}

// Volatility runs the whole estimate over a valuation path.
func Volatility(vals []Valuation, adjust bool) float64 {
	if len(vals) < 2 {
		return 0
	}
	return AnnualizedVolatility(dailyReturns(vals, adjust), vals[0].Date, vals[len(vals)-1].Date)
}

// ValuationsFromLedger rebuilds the daily valuation path from a detailed
// ledger: the last recorded value of each instrument per day, with
// contributions as the day's cash flow. Liquidations end the path.
func ValuationsFromLedger(ledger []model.LedgerEntry) []Valuation {
	var (
		out      []Valuation
		holdings []float64
		cur      *Valuation
	)
	flush := func() {
		if cur == nil {
			return
		}
		total := 0.0
		for _, v := range holdings {
			total += v
		}
		cur.Value = total
		out = append(out, *cur)
		cur = nil
	}

	for _, e := range ledger {
		if e.Kind == model.KindLiquidate {
			continue
		}
		day := model.Day(e.Date)
		if cur != nil && !cur.Date.Equal(day) {
			flush()
		}
		if cur == nil {
			cur = &Valuation{Date: day}
		}
		for len(holdings) <= e.Instrument {
			holdings = append(holdings, 0)
		}
		holdings[e.Instrument] = e.CurrentValue
		if e.Kind == model.KindContribute {
			cur.CashFlow += e.CashAmount
		}
	}
	flush()
	return out
}
