package scheduler

import (
	"context"
	"path/filepath"
	"testing"

	"CreditCycle/internal/bank"
	"CreditCycle/internal/checkpoint"
	"CreditCycle/internal/government"
	"CreditCycle/internal/market"
	"CreditCycle/internal/model"
	"CreditCycle/internal/planning"
	"CreditCycle/internal/simulation"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEconomy(firms []*model.Firm) *simulation.Economy {
	log := zerolog.Nop()
	macro := model.Macro{
		Wage:           1,
		TaxRate:        0.1,
		DebtRate:       0.01,
		RepaymentShare: 0.05,
		MachineSize:    10,
		SupplierPrice:  10,
		LoanToValue:    1,
	}
	return simulation.New(macro, firms, simulation.Deps{
		Bank:       bank.New(bank.Config{InitialEquity: 100, CapitalRatio: 0.1}, log),
		Government: government.New(0.1, log),
		Market:     market.NewStochastic(market.Config{Mean: 50, StdDev: 5, Window: 2, Seed: 3}, log),
		Planner:    planning.New(planning.Config{Markup: 0.2}),
	}, simulation.Options{Workers: 2}, log)
}

func TestStepTaskRunsConfiguredPeriods(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cp.msgpack")
	econ := newEconomy(simulation.NewPopulation(simulation.Seed{Count: 3, LiquidAsset: 100, Capital: 50, Productivity: 1}))
	s := NewScheduler(context.Background(), econ, 2, path, zerolog.Nop())

	s.RunStepNow()
	select {
	case <-s.Done():
		t.Fatal("done after one of two periods")
	default:
	}

	s.RunStepNow()
	<-s.Done()
	s.RunStepNow()

	assert.NoError(t, s.Err())
	assert.Equal(t, 2, econ.Period())

	snap, err := checkpoint.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Period)
	assert.Len(t, snap.Firms, 3)
}

func TestStepTaskStopsOnError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	econ := newEconomy(simulation.NewPopulation(simulation.Seed{Count: 2, Capital: 10, Productivity: 1}))
	s := NewScheduler(ctx, econ, 5, "", zerolog.Nop())

	s.RunStepNow()
	<-s.Done()
	assert.ErrorIs(t, s.Err(), context.Canceled)
	assert.Zero(t, econ.Period())
}

func TestRegisterRejectsBadSpec(t *testing.T) {
	s := NewScheduler(context.Background(), nil, 1, "", zerolog.Nop())
	assert.Error(t, s.Register("not a cron spec"))
	assert.NoError(t, s.Register("*/5 * * * * *"))
}

func TestZeroPeriodsIsDone(t *testing.T) {
	s := NewScheduler(context.Background(), nil, 0, "", zerolog.Nop())
	<-s.Done()
	s.RunStepNow()
	assert.NoError(t, s.Err())
}
