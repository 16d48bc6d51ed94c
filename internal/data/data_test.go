package data

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/asrajavel/portfolio-simulator-sub000/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"2024-02-29", "29-02-2024", "2024/02/29", " 29/02/2024 "} {
		d, err := ParseDate(s)
		require.NoError(t, err, s)
		assert.Equal(t, date("2024-02-29"), d, s)
	}
	_, err := ParseDate("Feb 29")
	assert.Error(t, err)
}

func TestParsePricesCSV(t *testing.T) {
	t.Parallel()

	t.Run("header with nav column", func(t *testing.T) {
		pts, err := ParsePricesCSV(strings.NewReader("Scheme,Date,NAV\nx,02-01-2024,\"1,234.5\"\nx,03-01-2024,1240\n"))
		require.NoError(t, err)
		require.Len(t, pts, 2)
		assert.Equal(t, date("2024-01-02"), pts[0].Date)
		assert.Equal(t, 1234.5, pts[0].Price)
	})

	t.Run("no header", func(t *testing.T) {
		pts, err := ParsePricesCSV(strings.NewReader("2024-01-01,10\n2024-01-02,\n2024-01-03,11\n"))
		require.NoError(t, err)
		require.Len(t, pts, 2)
		assert.Equal(t, 11.0, pts[1].Price)
	})

	t.Run("header without price column", func(t *testing.T) {
		_, err := ParsePricesCSV(strings.NewReader("date,volume\n2024-01-01,10\n"))
		assert.Error(t, err)
	})

	t.Run("bad price", func(t *testing.T) {
		_, err := ParsePricesCSV(strings.NewReader("2024-01-01,abc\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "row 1")
	})
}

func TestLoadPricesFiles(t *testing.T) {
	t.Parallel()

	csvPath := writeFile(t, "nifty.csv", "date,close\n2024-01-01,100\n2024-01-02,101\n")
	inst, err := LoadPricesCSV(csvPath)
	require.NoError(t, err)
	assert.Equal(t, "nifty", inst.Name)
	assert.Len(t, inst.Prices, 2)

	for name, body := range map[string]string{
		"array":  `[{"date":"2024-01-01","price":100},{"date":"2024-01-02","price":"101.5"}]`,
		"object": `{"name":"gold","prices":[{"date":"2024-01-01","price":100},{"date":"2024-01-02","price":101.5}]}`,
		"mfapi":  `{"meta":{"scheme_name":"x"},"data":[{"date":"02-01-2024","nav":"101.5"},{"date":"01-01-2024","nav":"100"}]}`,
	} {
		inst, err := LoadPricesJSON(writeFile(t, name+".json", body))
		require.NoError(t, err, name)
		require.Len(t, inst.Prices, 2, name)
		assert.Contains(t, []float64{inst.Prices[0].Price, inst.Prices[1].Price}, 101.5, name)
	}

	inst, err = LoadPricesJSON(writeFile(t, "named.json", `{"name":"gold","prices":[]}`))
	require.NoError(t, err)
	assert.Equal(t, "gold", inst.Name)
}

func navServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		switch r.URL.Path {
		case "/mf":
			_, _ = w.Write([]byte(`[{"schemeCode":119551,"schemeName":"Alpha Direct Growth"},{"schemeCode":120716,"schemeName":"Beta Index Fund"}]`))
		case "/mf/119551":
			_, _ = w.Write([]byte(`{"meta":{"scheme_code":119551,"scheme_name":"Alpha Direct Growth"},"data":[` +
				`{"date":"03-01-2024","nav":"12.50000"},{"date":"02-01-2024","nav":""},{"date":"01-01-2024","nav":"12.00000"}],"status":"SUCCESS"}`))
		case "/mf/429":
			w.Header().Set("Retry-After", "30")
			w.WriteHeader(http.StatusTooManyRequests)
		case "/mf/500":
			w.WriteHeader(http.StatusInternalServerError)
		case "/mf/empty":
			_, _ = w.Write([]byte(`{"meta":{},"data":[],"status":"SUCCESS"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestMFAPIClient_Instrument(t *testing.T) {
	t.Parallel()
	var hits int32
	srv := navServer(t, &hits)

	c := NewMFAPIClient(srv.URL + "/")
	c.Cache = NewResponseCache(time.Minute)

	inst, err := c.Instrument(context.Background(), "119551")
	require.NoError(t, err)
	assert.Equal(t, "Alpha Direct Growth", inst.Name)
	require.Len(t, inst.Prices, 2)
	assert.Equal(t, date("2024-01-03"), inst.Prices[0].Date)
	assert.Equal(t, 12.5, inst.Prices[0].Price)

	_, err = c.Instrument(context.Background(), "119551")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	assert.Equal(t, 1, c.Cache.Len())
}

func TestMFAPIClient_Errors(t *testing.T) {
	t.Parallel()
	var hits int32
	srv := navServer(t, &hits)
	c := NewMFAPIClient(srv.URL)
	ctx := context.Background()

	for code, want := range map[string]string{
		"429":     "RATE_LIMIT_EXCEEDED",
		"500":     "API_ERROR",
		"missing": "SCHEME_NOT_FOUND",
		"empty":   "SCHEME_NOT_FOUND",
	} {
		_, err := c.FetchScheme(ctx, code)
		var se *SourceError
		require.True(t, errors.As(err, &se), code)
		assert.Equal(t, want, se.Code, code)
		if code == "429" {
			assert.Equal(t, "30", se.RetryAfter)
		}
	}

	_, err := c.FetchScheme(ctx, " ")
	assert.Error(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = c.FetchScheme(cancelled, "119551")
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestResponseCache(t *testing.T) {
	t.Parallel()

	var nilCache *ResponseCache
	nilCache.Set("k", &SchemeResponse{})
	_, ok := nilCache.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, nilCache.Len())

	assert.Equal(t, CacheStats{}, nilCache.Stats())

	c := NewResponseCache(time.Millisecond)
	c.Set("k", &SchemeResponse{Status: "SUCCESS"})
	assert.Equal(t, 1, c.evictExpired(time.Now().Add(time.Second)))
	assert.Equal(t, 0, c.Len())

	c = NewResponseCache(time.Hour)
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }
	c.Set("k", &SchemeResponse{Status: "SUCCESS"})
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "SUCCESS", got.Status)

	clock = clock.Add(2 * time.Hour)
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, CacheStats{Entries: 1, Hits: 1, Misses: 1}, c.Stats())

	c.Clear()
	assert.Equal(t, 0, c.Len())

	assert.Equal(t, GenerateCacheKey("http://x/", "1"), GenerateCacheKey("http://x", " 1"))
	assert.NotEqual(t, GenerateCacheKey("http://x", "1"), GenerateCacheKey("http://x", "2"))
}

func TestCatalogRoundTrip(t *testing.T) {
	t.Parallel()
	var hits int32
	srv := navServer(t, &hits)

	list, err := NewMFAPIClient(srv.URL).ListSchemes(context.Background())
	require.NoError(t, err)

	cat := CatalogFromSummaries(list, date("2026-01-01"))
	path := filepath.Join(t.TempDir(), "nested", "instruments.json")
	require.NoError(t, SaveCatalog(path, cat))

	loaded, err := LoadCatalog(path)
	require.NoError(t, err)
	require.Len(t, loaded.Schemes, 2)
	assert.Equal(t, "119551", loaded.Schemes[0].Code)
	assert.Equal(t, date("2026-01-01"), loaded.UpdatedAt)

	assert.Len(t, loaded.Search("index", 0), 1)
	assert.Len(t, loaded.Search("120716", 0), 1)
	assert.Len(t, loaded.Search("", 1), 1)
	assert.Empty(t, loaded.Search("gilt", 0))
}

func TestDefaultCatalogPath(t *testing.T) {
	t.Setenv("INSTRUMENTS_FILE", "/tmp/x.json")
	assert.Equal(t, "/tmp/x.json", DefaultCatalogPath())
	t.Setenv("INSTRUMENTS_FILE", "")
	assert.Equal(t, "./data/instruments.json", DefaultCatalogPath())
}

func TestFixedReturnSeries(t *testing.T) {
	t.Parallel()

	pts, err := FixedReturnSeries(date("2022-12-31"), date("2023-12-31"), 10)
	require.NoError(t, err)
	require.Len(t, pts, 366)
	assert.Equal(t, 100.0, pts[0].Price)
	assert.InDelta(t, 110.0, pts[365].Price, 1e-9)
	assert.Greater(t, pts[1].Price, pts[0].Price)

	_, err = FixedReturnSeries(date("2023-01-01"), date("2023-01-01"), 10)
	assert.Error(t, err)
}

func TestInflationSeries(t *testing.T) {
	t.Parallel()

	pts, err := InflationSeries(date("2021-12-31"), date("2024-12-31"), map[int]float64{2023: 5})
	require.NoError(t, err)

	byDate := map[string]float64{}
	for _, p := range pts {
		byDate[p.Date.Format("2006-01-02")] = p.Price
	}
	// 2022 precedes the first rate and stays flat; 2024 reuses 2023's rate.
	assert.Equal(t, 100.0, byDate["2022-12-31"])
	assert.InDelta(t, 105.0, byDate["2023-12-31"], 1e-9)
	assert.InDelta(t, 110.25, byDate["2024-12-31"], 1e-9)
}

func TestResolver(t *testing.T) {
	t.Parallel()
	var hits int32
	srv := navServer(t, &hits)
	ctx := context.Background()

	r := NewResolver(srv.URL)
	csvPath := writeFile(t, "equity.csv", "2023-01-01,10\n2023-06-01,12\n")

	c := &config.Config{
		Simulation: config.SimulationConfig{WindowYears: 1, ContributionAmount: 100},
		Portfolios: []config.PortfolioConfig{{
			Name: "mix",
			Instruments: []config.InstrumentConfig{
				{Name: "equity", Source: config.SourceCSV, File: csvPath, Allocation: 40},
				{Source: config.SourceMFAPI, Code: "119551", Allocation: 30},
				{Name: "debt", Source: config.SourceFixed, Start: "2023-01-01", End: "2024-01-01", AnnualReturn: 7, Allocation: 20},
				{Name: "cpi", Source: config.SourceInflation, Start: "2023-01-01", End: "2024-01-01", YearlyRates: map[string]float64{"2023": 6}, Allocation: 10},
			},
		}},
	}
	in, err := r.Inputs(ctx, c, c.Portfolios[0])
	require.NoError(t, err)
	require.Len(t, in.Instruments, 4)
	assert.Equal(t, "equity", in.Instruments[0].Name)
	assert.Equal(t, "Alpha Direct Growth", in.Instruments[1].Name)
	assert.Equal(t, "debt", in.Instruments[2].Name)
	assert.Len(t, in.Instruments[3].Prices, 366)
	assert.Equal(t, []float64{40, 30, 20, 10}, in.Config.StartAllocationPercent)

	r.AllowFiles = false
	_, err = r.ResolvePortfolio(ctx, c.Portfolios[0])
	assert.True(t, errors.Is(err, ErrFileSourceDisabled))

	_, err = r.Resolve(ctx, config.InstrumentConfig{Source: "ftp"})
	assert.Error(t, err)
}
