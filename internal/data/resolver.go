package data

import (
	"context"
	"errors"
	"fmt"

	"github.com/asrajavel/portfolio-simulator-sub000/internal/config"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/model"
)

// ErrFileSourceDisabled is returned for csv/json instruments when the
// resolver may not touch the filesystem (HTTP requests).
var ErrFileSourceDisabled = errors.New("file sources are disabled")

// Resolver turns configured instruments into price histories.
type Resolver struct {
	MFAPI      *MFAPIClient
	AllowFiles bool
}

// NewResolver returns a resolver fetching schemes from baseURL (MFAPI
// default when empty) with file sources enabled.
func NewResolver(baseURL string) *Resolver {
	return &Resolver{MFAPI: NewMFAPIClient(baseURL), AllowFiles: true}
}

// Resolve loads one instrument. The configured name wins over the
// source's own.
func (r *Resolver) Resolve(ctx context.Context, inst config.InstrumentConfig) (model.Instrument, error) {
	out, err := r.load(ctx, inst)
	if err != nil {
		return model.Instrument{}, fmt.Errorf("instrument %q: %w", inst.Name, err)
	}
	if inst.Name != "" {
		out.Name = inst.Name
	}
	return out, nil
}

func (r *Resolver) load(ctx context.Context, inst config.InstrumentConfig) (model.Instrument, error) {
	switch inst.Source {
	case config.SourceCSV, config.SourceJSON:
		if !r.AllowFiles {
			return model.Instrument{}, ErrFileSourceDisabled
		}
		if inst.Source == config.SourceCSV {
			return LoadPricesCSV(inst.File)
		}
		return LoadPricesJSON(inst.File)
	case config.SourceMFAPI:
		if r.MFAPI == nil {
			return model.Instrument{}, errors.New("no mfapi client configured")
		}
		return r.MFAPI.Instrument(ctx, inst.Code)
	case config.SourceFixed, config.SourceInflation:
		start, err := ParseDate(inst.Start)
		if err != nil {
			return model.Instrument{}, fmt.Errorf("start: %w", err)
		}
		end, err := ParseDate(inst.End)
		if err != nil {
			return model.Instrument{}, fmt.Errorf("end: %w", err)
		}
		var pts []model.PricePoint
		if inst.Source == config.SourceFixed {
			pts, err = FixedReturnSeries(start, end, inst.AnnualReturn)
		} else {
			var rates map[int]float64
			if rates, err = inst.Rates(); err == nil {
				pts, err = InflationSeries(start, end, rates)
			}
		}
		if err != nil {
			return model.Instrument{}, err
		}
		return model.Instrument{Name: inst.Source, Prices: pts}, nil
	default:
		return model.Instrument{}, fmt.Errorf("unknown source %q", inst.Source)
	}
}

// ResolvePortfolio loads every instrument of p, in order.
func (r *Resolver) ResolvePortfolio(ctx context.Context, p config.PortfolioConfig) ([]model.Instrument, error) {
	out := make([]model.Instrument, len(p.Instruments))
	for i, inst := range p.Instruments {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		resolved, err := r.Resolve(ctx, inst)
		if err != nil {
			return nil, fmt.Errorf("portfolio %q: %w", p.Name, err)
		}
		out[i] = resolved
	}
	return out, nil
}

// Inputs resolves p and pairs it with its engine configuration.
func (r *Resolver) Inputs(ctx context.Context, c *config.Config, p config.PortfolioConfig) (model.Inputs, error) {
	instruments, err := r.ResolvePortfolio(ctx, p)
	if err != nil {
		return model.Inputs{}, err
	}
	return model.Inputs{Instruments: instruments, Config: c.ToModel(p)}, nil
}
