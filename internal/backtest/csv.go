package backtest

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/asrajavel/portfolio-simulator-sub000/internal/model"
	"github.com/shopspring/decimal"
)

// WriteLedgerCSV writes one row per ledger entry.
func WriteLedgerCSV(path string, ledger []model.LedgerEntry) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return EncodeLedgerCSV(f, ledger)
}

// EncodeLedgerCSV is WriteLedgerCSV over any writer.
func EncodeLedgerCSV(out io.Writer, ledger []model.LedgerEntry) error {
	w := csv.NewWriter(out)
	defer w.Flush()

	header := []string{
		"date",
		"instrument",
		"kind",
		"price",
		"units_delta",
		"cash_amount",
		"cumulative_units",
		"current_value",
		"allocation_percent",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, e := range ledger {
		alloc := ""
		if e.AllocationPercent != nil {
			alloc = fmtPercent(*e.AllocationPercent)
		}
		row := []string{
			fmtDate(e.Date),
			strconv.Itoa(e.Instrument),
			string(e.Kind),
			fmtMoney(e.Price),
			fmtUnits(e.UnitsDelta),
			fmtMoney(e.CashAmount),
			fmtUnits(e.CumulativeUnits),
			fmtMoney(e.CurrentValue),
			alloc,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// WriteResultsCSV writes one row per rolling window.
func WriteResultsCSV(path string, results []model.WindowResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return EncodeResultsCSV(f, results)
}

// EncodeResultsCSV is WriteResultsCSV over any writer.
func EncodeResultsCSV(out io.Writer, results []model.WindowResult) error {
	w := csv.NewWriter(out)
	defer w.Flush()

	header := []string{
		"anchor",
		"start",
		"xirr_percent",
		"volatility_percent",
		"invested",
		"final_value",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, r := range results {
		vol := ""
		if r.VolatilityPercent != nil {
			vol = fmtPercent(*r.VolatilityPercent)
		}
		row := []string{
			fmtDate(r.Anchor),
			fmtDate(r.Start),
			fmtPercent(r.XIRR * 100),
			vol,
			fmtMoney(r.Invested),
			fmtMoney(r.FinalValue),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func fmtDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func fmtMoney(x float64) string {
	return decimal.NewFromFloat(x).StringFixed(4)
}

func fmtUnits(x float64) string {
	return decimal.NewFromFloat(x).StringFixed(6)
}

func fmtPercent(x float64) string {
	return decimal.NewFromFloat(x).StringFixed(4)
}
