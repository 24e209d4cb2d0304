package adjustment

import (
	"math"

	"CreditCycle/internal/model"
	"CreditCycle/internal/payment"

	"github.com/rs/zerolog"
)

// Engine runs adjustment passes. It holds no per-firm state and is safe for
// concurrent use.
type Engine struct {
	log zerolog.Logger
}

// NewEngine creates an Engine.
func NewEngine(log zerolog.Logger) *Engine {
	return &Engine{log: log.With().Str("component", "adjustment").Logger()}
}

// ForFirm returns an Engine whose log lines carry the firm ID.
func (e *Engine) ForFirm(id int) *Engine {
	return &Engine{log: e.log.With().Int("firm", id).Logger()}
}

// APriori computes the plan and credit demand of a firm that may borrow up to
// ceiling. The firm first fits its desired plan into liquid assets plus the
// ceiling. If the plan is payable with less than the ceiling it asks only for
// what it needs. Otherwise it commits the whole ceiling and cuts the plan in
// preference order; if even that fails it drops the loan altogether.
func (e *Engine) APriori(fn payment.Function, desired model.Plan, ceiling float64) Result {
	ceiling = math.Max(0, ceiling)
	plan := feasibility(fn, desired, fn.LiquidAsset()+ceiling)

	lP := math.Max(0, fn.PlanCost(plan)-fn.LiquidAsset())
	split := model.LoanSplit{ForProductionAndInvestment: lP}
	pay := fn.EvaluatePlan(plan, split)
	if pay >= 0 {
		return Result{Plan: plan, Split: split, CreditDemand: split.Total(), Stage: Done, Feasible: true, Payment: pay}
	}

	gain := fn.RolloverGain()
	if gain > 0 {
		if need := -pay / gain; need <= ceiling-lP {
			split.ForDebtRepayment = need
			pay = fn.EvaluatePlan(plan, split)
			e.log.Debug().Float64("rollover", need).Msg("debt rollover covers the shortfall")
			return Result{Plan: plan, Split: split, CreditDemand: split.Total(), Stage: Done, Feasible: true, Payment: pay}
		}
	}

	// A rollover that costs more than it refinances is never drawn, so the
	// chain then asks only for the loan its plan spends.
	en := &engine{
		fn:     fn,
		policy: Policy{Name: "a_priori", Absorb: gain > 0},
		log:    e.log,
	}
	s := &scratch{plan: plan, pool: ceiling}
	s.entry = en.entryFor(plan)

	stage, ok := en.run(s)
	if !ok {
		en.giveUp(s)
	}

	split = en.split(s.plan, s.pool)
	pay = fn.EvaluatePlan(s.plan, split)
	e.log.Debug().
		Str("entry", s.entry.String()).
		Str("stage", stage.String()).
		Bool("feasible", ok).
		Float64("credit_demand", split.Total()).
		Msg("a priori adjustment")

	return Result{
		Plan:         s.plan,
		Split:        split,
		CreditDemand: split.Total(),
		Entry:        s.entry,
		Stage:        stage,
		Feasible:     ok,
		Payment:      pay,
	}
}
