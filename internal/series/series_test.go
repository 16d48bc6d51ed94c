package series

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/asrajavel/portfolio-simulator-sub000/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestNormalize_ForwardFillsGaps(t *testing.T) {
	t.Parallel()

	// Friday, then Monday: the weekend takes Friday's price.
	s, err := Normalize([]model.PricePoint{
		{Date: day("2024-01-08"), Price: 102},
		{Date: day("2024-01-05"), Price: 100},
	})
	require.NoError(t, err)

	assert.Equal(t, day("2024-01-05"), s.First())
	assert.Equal(t, day("2024-01-08"), s.Last())
	assert.Equal(t, 4, s.Len())

	for _, tc := range []struct {
		on   string
		want float64
	}{
		{"2024-01-05", 100},
		{"2024-01-06", 100},
		{"2024-01-07", 100},
		{"2024-01-08", 102},
	} {
		p, ok := s.PriceOn(day(tc.on))
		require.True(t, ok, tc.on)
		assert.Equal(t, tc.want, p, tc.on)
	}

	_, ok := s.PriceOn(day("2024-01-09"))
	assert.False(t, ok)
	_, ok = s.PriceOn(day("2024-01-04"))
	assert.False(t, ok)
}

func TestNormalize_TruncatesTimeOfDayAndKeepsLastDuplicate(t *testing.T) {
	t.Parallel()

	s, err := Normalize([]model.PricePoint{
		{Date: time.Date(2024, 3, 1, 15, 30, 0, 0, time.UTC), Price: 10},
		{Date: day("2024-03-01"), Price: 11},
		{Date: day("2024-03-03"), Price: 12},
	})
	require.NoError(t, err)

	p, ok := s.PriceOn(day("2024-03-02"))
	require.True(t, ok)
	assert.Equal(t, 11.0, p)

	pts := s.Points()
	require.Len(t, pts, 3)
	assert.Equal(t, day("2024-03-03"), pts[2].Date)
	assert.Len(t, s.Dates(), 3)
}

func TestNormalize_InsufficientData(t *testing.T) {
	t.Parallel()

	_, err := Normalize([]model.PricePoint{{Date: day("2024-01-01"), Price: 1}})
	assert.True(t, errors.Is(err, model.ErrInsufficientData))

	_, err = Normalize(nil)
	assert.True(t, errors.Is(err, model.ErrInsufficientData))

	_, err = Normalize([]model.PricePoint{
		{Date: day("2024-01-01"), Price: 1},
		{Date: day("2024-01-01"), Price: 2},
	})
	assert.True(t, errors.Is(err, model.ErrInsufficientData))
}

func TestNormalizeAllAndCommonStart(t *testing.T) {
	t.Parallel()

	all, err := NormalizeAll([]model.Instrument{
		{Name: "a", Prices: []model.PricePoint{{Date: day("2020-01-01"), Price: 1}, {Date: day("2021-01-01"), Price: 2}}},
		{Name: "b", Prices: []model.PricePoint{{Date: day("2020-06-01"), Price: 1}, {Date: day("2021-01-01"), Price: 2}}},
	})
	require.NoError(t, err)
	assert.Equal(t, day("2020-06-01"), CommonStart(all))

	_, err = NormalizeAll([]model.Instrument{{Name: "short"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "short")
	assert.True(t, errors.Is(err, model.ErrInsufficientData))
}

func TestNormalize_DropsInvalidPrices(t *testing.T) {
	t.Parallel()

	s, err := Normalize([]model.PricePoint{
		{Date: day("2024-01-01"), Price: 0},
		{Date: day("2024-01-02"), Price: 100},
		{Date: day("2024-01-03"), Price: math.NaN()},
		{Date: day("2024-01-04"), Price: -5},
		{Date: day("2024-01-05"), Price: 110},
		{Date: day("2024-01-06"), Price: math.Inf(1)},
	})
	require.NoError(t, err)

	assert.Equal(t, day("2024-01-02"), s.First())
	assert.Equal(t, day("2024-01-05"), s.Last())
	for _, d := range []string{"2024-01-03", "2024-01-04"} {
		p, ok := s.PriceOn(day(d))
		require.True(t, ok)
		assert.Equal(t, 100.0, p, d)
	}

	_, err = Normalize([]model.PricePoint{
		{Date: day("2024-01-01"), Price: 0},
		{Date: day("2024-01-02"), Price: 100},
	})
	assert.True(t, errors.Is(err, model.ErrInsufficientData))
}
