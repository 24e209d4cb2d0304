package adjustment

import (
	"math"

	"CreditCycle/internal/model"
	"CreditCycle/internal/payment"

	"gonum.org/v1/gonum/floats/scalar"
)

// Granted is what a firm knows once the bank has answered.
type Granted struct {
	Desired      model.Plan
	Star         model.Plan
	StarSplit    model.LoanSplit
	StarFeasible bool
	CreditDemand float64
	Loan         float64
}

// APosteriori reconciles the firm's plan with the loan actually granted. A
// firm that got what it asked for keeps its a priori plan. A rationed firm
// starts again from its desired plan, fits it into liquid assets plus the
// loan and, if that is not payable, cuts in preference order. The loan has
// already been paid out, so the firm never hands it back: on failure it keeps
// the whole loan and picks the least bad production level.
func (e *Engine) APosteriori(fn payment.Function, g Granted) Result {
	if g.CreditDemand <= 0 || scalar.EqualWithinAbsOrRel(g.Loan, g.CreditDemand, 1e-9, 1e-12) {
		pay := fn.EvaluatePlan(g.Star, g.StarSplit)
		return Result{
			Plan:         g.Star,
			Split:        g.StarSplit,
			CreditDemand: g.CreditDemand,
			Stage:        Done,
			Feasible:     g.StarFeasible,
			Payment:      pay,
		}
	}

	loan := math.Max(0, g.Loan)
	var plan model.Plan
	if loan == 0 {
		plan = feasibilityNilLoan(fn, g.Desired)
	} else {
		plan = feasibilityPositiveLoan(fn, g.Desired, loan)
	}

	en := &engine{
		fn:     fn,
		policy: Policy{Name: "a_posteriori", Absorb: true, Exhaust: true},
		log:    e.log,
	}
	s := &scratch{plan: plan, pool: loan}

	if pay := en.payAt(plan, loan); pay >= 0 {
		return Result{
			Plan:         plan,
			Split:        en.split(plan, loan),
			CreditDemand: g.CreditDemand,
			Stage:        Done,
			Feasible:     true,
			Payment:      pay,
		}
	}

	s.entry = en.entryFor(plan)
	stage, ok := en.run(s)
	if !ok {
		en.giveUp(s)
	}

	split := en.split(s.plan, s.pool)
	pay := fn.EvaluatePlan(s.plan, split)
	e.log.Debug().
		Str("entry", s.entry.String()).
		Str("stage", stage.String()).
		Bool("feasible", ok).
		Float64("loan", loan).
		Msg("a posteriori adjustment")

	return Result{
		Plan:         s.plan,
		Split:        split,
		CreditDemand: g.CreditDemand,
		Entry:        s.entry,
		Stage:        stage,
		Feasible:     ok,
		Payment:      pay,
	}
}
