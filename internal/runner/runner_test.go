package runner

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/asrajavel/portfolio-simulator-sub000/internal/backtest"
	"github.com/asrajavel/portfolio-simulator-sub000/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingSim waits for release (or cancellation) before answering.
type blockingSim struct {
	release chan struct{}
	calls   atomic.Int32
}

func (b *blockingSim) Simulate(ctx context.Context, in model.Inputs, exec model.ExecMode) (*backtest.Run, error) {
	b.calls.Add(1)
	select {
	case <-b.release:
		return &backtest.Run{Exec: exec, Mode: in.Config.EffectiveMode()}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (b *blockingSim) SimulateOne(ctx context.Context, in model.Inputs, anchor time.Time) (*model.WindowResult, error) {
	return nil, nil
}

func inputs() model.Inputs {
	var pts []model.PricePoint
	for k := 0; k <= 12; k++ {
		pts = append(pts, model.PricePoint{
			Date:  time.Date(2023, time.Month(1+k), 1, 0, 0, 0, 0, time.UTC),
			Price: 100 + 5*float64(k),
		})
	}
	return model.Inputs{
		Instruments: []model.Instrument{{Name: "nav", Prices: pts}},
		Config: model.SimulationConfig{
			WindowYears:            1,
			StartAllocationPercent: []float64{100},
			ContributionAmount:     100,
		},
	}
}

func TestRun_KeepsJobOrder(t *testing.T) {
	t.Parallel()

	bad := inputs()
	bad.Config.WindowYears = 0

	results := New(backtest.New()).Run(context.Background(), []Job{
		{Name: "a", Inputs: inputs()},
		{Name: "broken", Inputs: bad},
		{Name: "c", Inputs: inputs()},
	}, model.ExecFast)

	require.Len(t, results, 3)
	assert.Equal(t, "a", results[0].Name)
	require.NoError(t, results[0].Err)
	assert.Len(t, results[0].Run.Results, 1)

	assert.Equal(t, "broken", results[1].Name)
	assert.Error(t, results[1].Err)
	assert.Nil(t, results[1].Run)

	assert.Equal(t, "c", results[2].Name)
	require.NoError(t, results[2].Err)
}

func TestSubmit_DeliversLatestGeneration(t *testing.T) {
	t.Parallel()

	r := New(backtest.New())
	batch, err := Await(context.Background(), r.Submit(context.Background(), []Job{{Name: "p", Inputs: inputs()}}, model.ExecFast))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), batch.Generation)
	require.Len(t, batch.Results, 1)
	assert.NoError(t, batch.Results[0].Err)
	assert.Equal(t, uint64(1), r.Generation())
}

func TestSubmit_SupersededBatchIsDiscarded(t *testing.T) {
	t.Parallel()

	sim := &blockingSim{release: make(chan struct{})}
	r := New(sim)

	first := r.Submit(context.Background(), []Job{{Name: "old", Inputs: inputs()}}, model.ExecFast)
	require.Eventually(t, func() bool { return sim.calls.Load() == 1 }, time.Second, time.Millisecond)

	second := r.Submit(context.Background(), []Job{{Name: "new", Inputs: inputs()}}, model.ExecFast)

	// The first generation was cancelled and must not deliver.
	_, err := Await(context.Background(), first)
	assert.True(t, errors.Is(err, ErrSuperseded))

	close(sim.release)
	batch, err := Await(context.Background(), second)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), batch.Generation)
	assert.Equal(t, "new", batch.Results[0].Name)
	assert.NoError(t, batch.Results[0].Err)
}

func TestCancel(t *testing.T) {
	t.Parallel()

	sim := &blockingSim{release: make(chan struct{})}
	r := New(sim)

	ch := r.Submit(context.Background(), []Job{{Name: "p", Inputs: inputs()}}, model.ExecFast)
	r.Cancel()

	_, err := Await(context.Background(), ch)
	assert.True(t, errors.Is(err, ErrSuperseded))
	assert.Equal(t, uint64(2), r.Generation())
}

func TestAwait_ContextEnds(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Await(ctx, make(chan Batch))
	assert.True(t, errors.Is(err, context.Canceled))
}
