// Package simulation sequences the phases of a period across the firm
// population, the bank and the government.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"CreditCycle/internal/adjustment"
	"CreditCycle/internal/bank"
	"CreditCycle/internal/firm"
	"CreditCycle/internal/government"
	"CreditCycle/internal/market"
	"CreditCycle/internal/model"
	"CreditCycle/internal/payment"
	"CreditCycle/internal/planning"
	"CreditCycle/internal/recorder"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Options control how a run executes.
type Options struct {
	// Workers bounds the goroutines of the firm-parallel passes. Results do
	// not depend on it.
	Workers int
	// Strict fails the period on a degenerate firm instead of pricing it out
	// of production.
	Strict bool
	RunID  string
}

// Deps are the collaborators of an Economy.
type Deps struct {
	Bank       *bank.Bank
	Government *government.Government
	Market     market.DemandSource
	Planner    *planning.Planner
	Recorder   recorder.Recorder
}

// Economy is the firm population plus the bank and the government.
type Economy struct {
	macro  model.Macro
	firms  []*model.Firm
	deps   Deps
	engine *adjustment.Engine
	opts   Options
	period int
	log    zerolog.Logger
}

// New creates an Economy. Firms are kept in ascending ID order.
func New(macro model.Macro, firms []*model.Firm, deps Deps, opts Options, log zerolog.Logger) *Economy {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	if deps.Recorder == nil {
		deps.Recorder = recorder.NewNoopRecorder()
	}
	sorted := slices.Clone(firms)
	slices.SortFunc(sorted, func(a, b *model.Firm) int { return a.ID - b.ID })

	log = log.With().Str("component", "simulation").Str("run", opts.RunID).Logger()
	return &Economy{
		macro:  macro,
		firms:  sorted,
		deps:   deps,
		engine: adjustment.NewEngine(log),
		opts:   opts,
		log:    log,
	}
}

// RunID identifies the run in recorded output.
func (e *Economy) RunID() string { return e.opts.RunID }

// Period returns the last closed period.
func (e *Economy) Period() int { return e.period }

// Bank returns the economy's bank.
func (e *Economy) Bank() *bank.Bank { return e.deps.Bank }

// Firms returns the population, exited firms included.
func (e *Economy) Firms() []*model.Firm { return e.firms }

// Run steps the economy n times or until ctx is done.
func (e *Economy) Run(ctx context.Context, n int) error {
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := e.Step(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Step runs one period: plan, pre-loan adjustment, credit allocation,
// post-loan adjustment, closing accounts and recording.
func (e *Economy) Step(ctx context.Context) (*recorder.PeriodSummary, error) {
	period := e.period + 1
	e.macro.TaxRate = e.deps.Government.TaxRate()
	supply := e.deps.Bank.UpdateCreditSupply()

	active := e.active()
	if len(active) == 0 {
		e.log.Warn().Int("period", period).Msg("no active firms")
	}

	for _, f := range active {
		f.ResetPeriod()
		e.deps.Planner.Plan(f, e.macro, e.deps.Market.Expected(f.ID))
	}

	fns := make([]payment.Function, len(active))
	err := e.forEach(ctx, active, func(i int, f *model.Firm) error {
		fn, err := e.paymentFunction(f, f.ExpectedDemand)
		if err != nil {
			return err
		}
		fns[i] = fn
		firm.PreLoan(e.engine.ForFirm(f.ID), f, fn, e.macro)
		e.deps.Bank.RegisterRatio(f.ID, f.LiquidAsset.Current, f.PastSales)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("period %d pre-loan: %w", period, err)
	}

	loans := e.allocate(active)

	stages := make([]adjustment.Stage, len(active))
	err = e.forEach(ctx, active, func(i int, f *model.Firm) error {
		res := firm.PostLoan(e.engine.ForFirm(f.ID), f, fns[i], loans[f.ID])
		stages[i] = res.Stage
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("period %d post-loan: %w", period, err)
	}

	ids := make([]int, len(active))
	for i, f := range active {
		ids[i] = f.ID
	}
	realised, err := e.deps.Market.Realise(ctx, period, ids)
	if err != nil {
		return nil, fmt.Errorf("period %d realise demand: %w", period, err)
	}

	closings := make([]firm.Closing, len(active))
	for i, f := range active {
		fn, err := e.paymentFunction(f, realised[f.ID])
		if err != nil {
			return nil, fmt.Errorf("period %d close: %w", period, err)
		}
		e.deps.Bank.BookLoan(f.Loan)
		c := firm.Close(f, fn, e.macro)
		e.deps.Bank.BookRepayment(c.Repayment, c.Interest)
		e.deps.Bank.BookDepositInterest(c.DepositInterest)
		e.deps.Government.BookTax(c.Tax)
		if c.Exited {
			e.deps.Bank.WriteOff(c.WriteOff)
			if m, ok := e.deps.Market.(interface{ Forget(int) }); ok {
				m.Forget(f.ID)
			}
			e.log.Info().Int("firm", f.ID).Float64("liquid_asset", c.LiquidAsset).Msg("firm exited")
		}
		closings[i] = c
	}
	revenue := e.deps.Government.ClosePeriod()
	e.period = period

	summary := e.summarise(active, closings, supply, revenue)
	e.record(active, stages, summary)

	e.log.Info().
		Int("period", period).
		Int("active", summary.ActiveFirms).
		Int("exits", summary.Exits).
		Int("rationed", summary.Rationed).
		Float64("credit_demand", summary.CreditDemand).
		Float64("loans", summary.Loans).
		Float64("production", summary.Production).
		Msg("period closed")
	return summary, nil
}

func (e *Economy) active() []*model.Firm {
	out := make([]*model.Firm, 0, len(e.firms))
	for _, f := range e.firms {
		if !f.Exited {
			out = append(out, f)
		}
	}
	return out
}

// forEach runs fn for every firm with at most Workers goroutines. Each call
// owns its firm and its index.
func (e *Economy) forEach(ctx context.Context, firms []*model.Firm, fn func(int, *model.Firm) error) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)
	for i, f := range firms {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn(i, f)
		})
	}
	return g.Wait()
}

func (e *Economy) allocate(firms []*model.Firm) map[int]float64 {
	var demands []bank.Demand
	for _, f := range firms {
		if f.CreditDemand > 0 {
			demands = append(demands, e.deps.Bank.Demand(f.ID, f.CreditDemand))
		}
	}
	grants := e.deps.Bank.Allocate(demands)

	loans := make(map[int]float64, len(grants))
	for _, g := range grants {
		loans[g.FirmID] = g.Amount
	}
	return loans
}

func (e *Economy) paymentFunction(f *model.Firm, demand float64) (payment.Function, error) {
	fn, err := payment.New(f, e.macro, demand)
	if err == nil {
		return fn, nil
	}
	if e.opts.Strict || !errors.Is(err, payment.ErrDegenerateFirm) {
		return fn, err
	}
	e.log.Error().Err(err).Int("firm", f.ID).Msg("degenerate firm priced out of production")
	return payment.Fallback(f, e.macro, demand), nil
}

// record writes the period out. Recorder failures are logged, not returned.
func (e *Economy) record(firms []*model.Firm, stages []adjustment.Stage, s *recorder.PeriodSummary) {
	if err := e.deps.Recorder.RecordPeriod(s); err != nil {
		e.log.Error().Err(err).Int("period", s.Period).Msg("record period")
	}

	rows := make([]recorder.FirmRow, len(firms))
	for i, f := range firms {
		rows[i] = recorder.FirmRow{
			FirmID:          f.ID,
			Production:      f.Optimal.Production,
			Expansionary:    f.Optimal.InvestmentExpansionary,
			Substitutionary: f.Optimal.InvestmentSubstitutionary,
			CreditDemand:    f.CreditDemand,
			Loan:            f.Loan,
			LiquidAsset:     f.LiquidAsset.Current,
			Debt:            f.Debt.Current,
			Stage:           stages[i].String(),
			Feasible:        f.Feasible,
			Exited:          f.Exited,
		}
	}
	if err := e.deps.Recorder.RecordFirms(e.opts.RunID, s.Period, rows); err != nil {
		e.log.Error().Err(err).Int("period", s.Period).Msg("record firms")
	}
}
