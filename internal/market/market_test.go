package market

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStochasticIsDeterministic(t *testing.T) {
	cfg := Config{Mean: 100, StdDev: 20, Window: 3, Seed: 42}
	a := NewStochastic(cfg, zerolog.Nop())
	b := NewStochastic(cfg, zerolog.Nop())
	firms := []int{1, 2, 3}

	for period := 1; period <= 5; period++ {
		da, err := a.Realise(context.Background(), period, firms)
		require.NoError(t, err)
		db, err := b.Realise(context.Background(), period, firms)
		require.NoError(t, err)
		assert.Equal(t, da, db)
		for _, d := range da {
			assert.GreaterOrEqual(t, d, 0.0)
		}
	}
}

func TestExpectedFollowsHistory(t *testing.T) {
	s := NewStochastic(Config{Mean: 80, Window: 2}, zerolog.Nop())
	assert.Equal(t, 80.0, s.Expected(1))

	_, err := s.Realise(context.Background(), 1, []int{1})
	require.NoError(t, err)
	assert.Equal(t, 80.0, s.Expected(1), "zero variance draws the mean")

	s.Forget(1)
	assert.Equal(t, 80.0, s.Expected(1))
}

func TestExpectedMovingAverage(t *testing.T) {
	s := NewStochastic(Config{Mean: 100, StdDev: 30, Window: 2, Seed: 1}, zerolog.Nop())

	var draws []float64
	for period := 1; period <= 3; period++ {
		d, err := s.Realise(context.Background(), period, []int{5})
		require.NoError(t, err)
		draws = append(draws, d[5])
	}
	assert.InDelta(t, (draws[1]+draws[2])/2, s.Expected(5), 1e-9)
}

func TestRealiseCancelled(t *testing.T) {
	s := NewStochastic(Config{Mean: 1}, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Realise(ctx, 1, []int{1})
	assert.ErrorIs(t, err, context.Canceled)
}
