package strategy

import (
	"testing"
	"time"

	"github.com/asrajavel/portfolio-simulator-sub000/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestContributionDates_MonthEndClamping(t *testing.T) {
	t.Parallel()

	dates, ok := ContributionDates(d("2024-03-31"), 12, d("2020-01-01"))
	require.True(t, ok)
	require.Len(t, dates, 12)

	assert.Equal(t, d("2023-03-31"), dates[0])
	assert.Equal(t, d("2023-04-30"), dates[1])
	assert.Equal(t, d("2023-05-31"), dates[2])
	assert.Equal(t, d("2023-06-30"), dates[3])
	assert.Equal(t, d("2024-02-29"), dates[11])

	for i := 1; i < len(dates); i++ {
		assert.True(t, dates[i].After(dates[i-1]))
	}
}

func TestContributionDates_ForwardAndBackwardAgree(t *testing.T) {
	t.Parallel()

	anchor := d("2023-01-31")
	dates, ok := ContributionDates(anchor, 24, d("2000-01-01"))
	require.True(t, ok)

	for i, got := range dates {
		want := AddMonthsClamped(dates[0], i, anchor.Day())
		assert.Equal(t, want, got, "index %d", i)
	}
}

func TestContributionDates_NotComputable(t *testing.T) {
	t.Parallel()

	_, ok := ContributionDates(d("2024-01-01"), 12, d("2023-01-02"))
	assert.False(t, ok)

	dates, ok := ContributionDates(d("2024-01-01"), 12, d("2023-01-01"))
	require.True(t, ok)
	assert.Equal(t, d("2023-01-01"), dates[0])
	assert.Equal(t, d("2023-12-01"), dates[11])

	_, ok = ContributionDates(d("2024-01-01"), 0, d("2000-01-01"))
	assert.False(t, ok)
}

func TestAddYearsClamped_LeapDay(t *testing.T) {
	t.Parallel()

	assert.Equal(t, d("2021-02-28"), AddYearsClamped(d("2020-02-29"), 1))
	assert.Equal(t, d("2024-02-29"), AddYearsClamped(d("2020-02-29"), 4))
	assert.Equal(t, d("2019-02-28"), AddYearsClamped(d("2020-02-29"), -1))
}

func TestMonthsBetweenAndInvestmentYear(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b   string
		months int
		year   int
	}{
		{"2023-01-01", "2023-01-01", 0, 1},
		{"2023-01-01", "2023-12-01", 11, 1},
		{"2023-01-01", "2024-01-01", 12, 2},
		{"2023-01-31", "2023-02-28", 1, 1},
		{"2023-01-31", "2024-01-30", 11, 1},
		{"2023-01-31", "2024-01-31", 12, 2},
		{"2022-01-15", "2024-01-15", 24, 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.months, MonthsBetween(d(tt.a), d(tt.b)), "%s -> %s", tt.a, tt.b)
		assert.Equal(t, tt.year, InvestmentYear(d(tt.a), d(tt.b)), "%s -> %s", tt.a, tt.b)
	}
}

func TestStepUpAmount(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 100.0, StepUpAmount(100, 10, 1))
	assert.InDelta(t, 110.0, StepUpAmount(100, 10, 2), 1e-9)
	assert.InDelta(t, 121.0, StepUpAmount(100, 10, 3), 1e-9)
	assert.Equal(t, 100.0, StepUpAmount(100, 0, 5))
}

func TestYearsElapsed(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, YearsElapsed(d("2020-01-01"), d("2020-01-01")))
	assert.Equal(t, 2.0, YearsElapsed(d("2022-01-01"), d("2020-01-01")))
	assert.InDelta(t, 1+31.0/365, YearsElapsed(d("2021-02-01"), d("2020-01-01")), 1e-12)
	// The day before an anniversary still counts the previous year.
	assert.InDelta(t, 364.0/365, YearsElapsed(d("2021-12-31"), d("2021-01-01")), 1e-12)
}

func TestTargetAllocation_WholeYearSteps(t *testing.T) {
	t.Parallel()

	start := d("2020-01-01")
	from := []float64{80, 20}
	to := []float64{20, 80}

	tests := []struct {
		on   string
		want []float64
	}{
		{"2020-01-01", []float64{80, 20}},
		{"2021-06-01", []float64{80, 20}},
		{"2022-01-01", []float64{80, 20}},
		{"2022-09-01", []float64{80, 20}},
		{"2023-01-01", []float64{50, 50}},
		{"2023-12-31", []float64{50, 50}},
		{"2024-01-01", []float64{20, 80}},
	}
	for _, tt := range tests {
		got := TargetAllocation(d(tt.on), start, 4, 2, from, to)
		require.Len(t, got, 2)
		assert.InDeltaSlice(t, tt.want, got, 1e-9, tt.on)
	}
}

func TestTargetAllocation_ReturnsCopies(t *testing.T) {
	t.Parallel()

	from := []float64{60, 40}
	got := TargetAllocation(d("2020-01-01"), d("2020-01-01"), 4, 2, from, []float64{40, 60})
	got[0] = 0
	assert.Equal(t, 60.0, from[0])
}

func TestIsAdjustmentDue(t *testing.T) {
	t.Parallel()

	start := d("2020-01-01")
	tests := []struct {
		on      string
		enabled bool
		want    bool
	}{
		{"2020-01-01", true, false},
		{"2021-01-01", true, false},
		{"2022-01-01", true, true},
		{"2023-01-01", true, true},
		{"2024-01-01", true, false},
		{"2023-01-02", true, false},
		{"2023-01-01", false, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsAdjustmentDue(d(tt.on), start, 4, 2, tt.enabled), tt.on)
	}

	// A window starting on Feb 29 adjusts on Feb 28 in common years.
	assert.True(t, IsAdjustmentDue(d("2021-02-28"), d("2020-02-29"), 3, 2, true))
	assert.False(t, IsAdjustmentDue(d("2021-03-01"), d("2020-02-29"), 3, 2, true))
}

func TestGlidePath_DisabledKeepsStartAllocation(t *testing.T) {
	t.Parallel()

	cfg := model.SimulationConfig{
		WindowYears:            4,
		StartAllocationPercent: []float64{70, 30},
		EndAllocationPercent:   []float64{30, 70},
		TransitionYears:        2,
	}
	g := NewGlidePath(cfg, d("2020-01-01"))
	assert.Equal(t, []float64{70, 30}, g.At(d("2023-06-01")))
	assert.False(t, g.Due(d("2022-01-01")))

	cfg.TransitionEnabled = true
	g = NewGlidePath(cfg, d("2020-01-01"))
	assert.InDeltaSlice(t, []float64{50, 50}, g.At(d("2023-06-01")), 1e-9)
	assert.True(t, g.Due(d("2022-01-01")))
}

func TestForConfig(t *testing.T) {
	t.Parallel()

	s, err := ForConfig(model.SimulationConfig{WindowYears: 2})
	require.NoError(t, err)
	assert.Equal(t, "sip", s.Name())

	w, ok := s.Window(d("2024-01-01"), d("2000-01-01"))
	require.True(t, ok)
	assert.Len(t, w.ContributionDates, 24)
	assert.Equal(t, d("2022-01-01"), w.Start)
	assert.Equal(t, d("2024-01-01"), w.Anchor)

	s, err = ForConfig(model.SimulationConfig{Mode: model.ModeLumpsum, WindowYears: 1})
	require.NoError(t, err)
	assert.Equal(t, "lumpsum", s.Name())

	w, ok = s.Window(d("2024-02-29"), d("2000-01-01"))
	require.True(t, ok)
	assert.Equal(t, []time.Time{d("2023-02-28")}, w.ContributionDates)
	assert.Equal(t, d("2023-02-28"), w.Start)

	_, ok = s.Window(d("2024-02-29"), d("2023-03-01"))
	assert.False(t, ok)

	_, err = ForConfig(model.SimulationConfig{Mode: "swp"})
	assert.Error(t, err)
}

func TestCatalog(t *testing.T) {
	t.Parallel()

	modes := Catalog()
	require.Len(t, modes, 2)
	assert.Equal(t, "sip", modes[0].Name)
	assert.Greater(t, len(modes[0].Parameters), len(modes[1].Parameters))
}
