package data

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/asrajavel/portfolio-simulator-sub000/internal/model"
	"github.com/shopspring/decimal"
)

// Accepted date layouts, ISO first. dd-mm-yyyy is what MFAPI serves.
var dateLayouts = []string{"2006-01-02", "02-01-2006", "2006/01/02", "02/01/2006", "02-Jan-2006"}

// ParseDate parses a price date in any accepted layout, as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return model.Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// ParsePrice parses a decimal price, tolerating thousands separators.
func ParsePrice(s string) (float64, error) {
	d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", ""))
	if err != nil {
		return 0, fmt.Errorf("bad price %q: %w", s, err)
	}
	f, _ := d.Float64()
	return f, nil
}

var priceColumns = []string{"price", "nav", "close", "value", "adj_close"}

// LoadPricesCSV reads a date,price CSV. A header row is optional; when
// present the date column is "date" and the price column the first of
// price, nav, close, value, adj_close.
func LoadPricesCSV(path string) (model.Instrument, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Instrument{}, err
	}
	defer f.Close()

	pts, err := ParsePricesCSV(f)
	if err != nil {
		return model.Instrument{}, fmt.Errorf("%s: %w", path, err)
	}
	return model.Instrument{Name: baseName(path), Prices: pts}, nil
}

// ParsePricesCSV is LoadPricesCSV over a reader.
func ParsePricesCSV(r io.Reader) ([]model.PricePoint, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("empty csv")
	}

	dateCol, priceCol := 0, 1
	if _, err := ParseDate(rows[0][0]); err != nil {
		dateCol, priceCol = -1, -1
		for i, h := range rows[0] {
			h = strings.ToLower(strings.TrimSpace(h))
			if h == "date" {
				dateCol = i
			}
			for _, want := range priceColumns {
				if h == want && priceCol < 0 {
					priceCol = i
				}
			}
		}
		if dateCol < 0 || priceCol < 0 {
			return nil, fmt.Errorf("header %v: need a date and a price column", rows[0])
		}
		rows = rows[1:]
	}

	out := make([]model.PricePoint, 0, len(rows))
	for i, row := range rows {
		if len(row) <= dateCol || len(row) <= priceCol {
			return nil, fmt.Errorf("row %d: too few fields", i+1)
		}
		if strings.TrimSpace(row[priceCol]) == "" {
			continue
		}
		d, err := ParseDate(row[dateCol])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		p, err := ParsePrice(row[priceCol])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		out = append(out, model.PricePoint{Date: d, Price: p})
	}
	return out, nil
}

type jsonPoint struct {
	Date  string          `json:"date"`
	Price json.RawMessage `json:"price"`
	NAV   json.RawMessage `json:"nav"`
}

type jsonInstrument struct {
	Name   string      `json:"name"`
	Prices []jsonPoint `json:"prices"`
	Data   []jsonPoint `json:"data"`
}

// LoadPricesJSON reads either a bare [{date, price}] array, an object with
// a "prices" array, or an MFAPI scheme response with a "data" array. Prices
// may be numbers or strings.
func LoadPricesJSON(path string) (model.Instrument, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return model.Instrument{}, err
	}

	var doc jsonInstrument
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		err = json.Unmarshal(raw, &doc.Prices)
	} else {
		err = json.Unmarshal(raw, &doc)
	}
	if err != nil {
		return model.Instrument{}, fmt.Errorf("%s: %w", path, err)
	}

	pts := doc.Prices
	if len(pts) == 0 {
		pts = doc.Data
	}
	out := make([]model.PricePoint, 0, len(pts))
	for i, p := range pts {
		d, err := ParseDate(p.Date)
		if err != nil {
			return model.Instrument{}, fmt.Errorf("%s entry %d: %w", path, i, err)
		}
		rawPrice := p.Price
		if len(rawPrice) == 0 {
			rawPrice = p.NAV
		}
		price, err := ParsePrice(strings.Trim(string(rawPrice), `"`))
		if err != nil {
			return model.Instrument{}, fmt.Errorf("%s entry %d: %w", path, i, err)
		}
		out = append(out, model.PricePoint{Date: d, Price: price})
	}

	name := doc.Name
	if name == "" {
		name = baseName(path)
	}
	return model.Instrument{Name: name, Prices: out}, nil
}

func baseName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
