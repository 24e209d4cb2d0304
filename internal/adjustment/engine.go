package adjustment

import (
	"math"

	"CreditCycle/internal/model"
	"CreditCycle/internal/payment"

	"github.com/rs/zerolog"
)

// scratch is the state threaded through the stages of one pass.
type scratch struct {
	plan  model.Plan
	pool  float64
	entry Entry
	// bottomDecreasing is set by the production stage: whether payment falls
	// with production on the segment that reaches zero output.
	bottomDecreasing bool
}

// engine evaluates the stage chain for one firm under one policy.
type engine struct {
	fn     payment.Function
	policy Policy
	log    zerolog.Logger
}

func (e *engine) split(p model.Plan, pool float64) model.LoanSplit {
	lP := math.Max(0, e.fn.PlanCost(p)-e.fn.LiquidAsset())
	s := model.LoanSplit{ForProductionAndInvestment: lP}
	if e.policy.Absorb {
		s.ForDebtRepayment = math.Max(0, pool-lP)
	}
	return s
}

func (e *engine) payAt(p model.Plan, pool float64) float64 {
	return e.fn.EvaluatePlan(p, e.split(p, pool))
}

// externalSlope is the payment lost per unit of spending financed by the loan.
// When the pool absorbs, a unit moved from debt repayment to production loses
// the rollover gain and pays the loan slope, which sums to one.
func (e *engine) externalSlope() float64 {
	if e.policy.Absorb {
		return 1
	}
	return e.fn.LoanSlope()
}

func (e *engine) entryFor(p model.Plan) Entry {
	if e.fn.PlanCost(p) <= e.fn.LiquidAsset() {
		return EntryPositiveLiquidAsset
	}
	return EntryNilLiquidAsset
}

// cut looks for the largest x in [lo, hi] at which payment is non-negative,
// where x is a plan variable costing w per unit and sales do not depend on it.
// Payment is linear in x on each side of the kink where spending equals liquid
// assets, with slope -w*InternalSlope below it and -w*externalSlope above.
func (e *engine) cut(s *scratch, set func(*model.Plan, float64), hi, lo, w float64, stage Stage) (float64, bool) {
	trial := func(x float64) float64 {
		p := s.plan
		set(&p, x)
		return e.payAt(p, s.pool)
	}

	payLo := trial(lo)
	if payLo < 0 {
		return lo, false
	}
	if w <= 0 {
		return hi, true
	}

	without := s.plan
	set(&without, 0)
	kink := (e.fn.LiquidAsset() - e.fn.PlanCost(without)) / w

	var x float64
	funding := "internal"
	switch {
	case kink >= hi:
		x = lo + payLo/(w*e.fn.InternalSlope())
	case kink <= lo:
		funding = "external"
		x = lo + payLo/(w*e.externalSlope())
	default:
		payKink := trial(kink)
		if payKink >= 0 {
			funding = "external"
			x = kink + payKink/(w*e.externalSlope())
		} else {
			x = kink + payKink/(w*e.fn.InternalSlope())
		}
	}

	x = math.Min(hi, math.Max(lo, x))
	e.log.Debug().
		Str("stage", stage.String()).
		Str("funding", funding).
		Float64("root", x).
		Float64("from", hi).
		Msg("interior root")
	return x, true
}

func (e *engine) cutSubstitutionary(s *scratch) outcome {
	hi := s.plan.InvestmentSubstitutionary
	if hi <= 0 {
		return next
	}
	set := func(p *model.Plan, x float64) { p.InvestmentSubstitutionary = x }
	x, ok := e.cut(s, set, hi, 0, e.fn.MachineCost(), SubInvestment)
	if !ok {
		s.plan.InvestmentSubstitutionary = 0
		return next
	}
	s.plan.InvestmentSubstitutionary = e.fn.Quantize(x)
	return resolved
}

func (e *engine) cutExpansionary(s *scratch) outcome {
	hi := s.plan.InvestmentExpansionary
	if hi <= 0 {
		return next
	}
	set := func(p *model.Plan, x float64) { p.InvestmentExpansionary = x }
	x, ok := e.cut(s, set, hi, 0, e.fn.MachineCost(), ExpInvestment)
	if !ok {
		s.plan.InvestmentExpansionary = 0
		return next
	}
	s.plan.InvestmentExpansionary = e.fn.Quantize(x)
	return resolved
}

// cutInventories brings production down toward the inventory-neutral level.
// Over that range sales are fixed at price times demand.
func (e *engine) cutInventories(s *scratch) outcome {
	neutral := e.fn.InventoryNeutral()
	hi := s.plan.Production
	if hi <= neutral {
		return next
	}
	set := func(p *model.Plan, x float64) { p.Production = x }
	x, ok := e.cut(s, set, hi, neutral, e.fn.UnitCost(), Inventory)
	if !ok {
		s.plan.Production = neutral
		return next
	}
	s.plan.Production = x
	return resolved
}

// cutProduction reduces production below the inventory-neutral level, where
// every unit cut also loses a sale. Payment moves with production at the unit
// margin MarginalRevenue - UnitCost*k on each funding segment; a root exists
// only on a segment where that margin is negative.
func (e *engine) cutProduction(s *scratch) outcome {
	c := e.fn.UnitCost()
	q := s.plan.Production

	without := s.plan
	without.Production = 0
	kink := (e.fn.LiquidAsset() - e.fn.PlanCost(without)) / c

	internal := e.fn.MarginalRevenue() - c*e.fn.InternalSlope()
	external := e.fn.MarginalRevenue() - c*e.externalSlope()
	if kink > 0 {
		s.bottomDecreasing = internal < 0
	} else {
		s.bottomDecreasing = external < 0
	}
	if q <= 0 {
		return next
	}

	type segment struct {
		hi, lo, slope float64
		funding       string
	}
	var segments []segment
	switch {
	case kink >= q:
		segments = []segment{{q, 0, internal, "internal"}}
	case kink <= 0:
		segments = []segment{{q, 0, external, "external"}}
	default:
		segments = []segment{{q, kink, external, "external"}, {kink, 0, internal, "internal"}}
	}

	for _, seg := range segments {
		p := s.plan
		p.Production = seg.hi
		payHi := e.payAt(p, s.pool)
		if payHi >= 0 {
			s.plan.Production = seg.hi
			return resolved
		}
		if seg.slope >= 0 {
			e.log.Debug().
				Str("funding", seg.funding).
				Float64("margin", seg.slope).
				Msg("payment increasing in production, cutting does not help")
			continue
		}
		x := seg.hi - payHi/seg.slope
		if x < seg.lo {
			continue
		}
		e.log.Debug().
			Str("stage", Production.String()).
			Str("funding", seg.funding).
			Float64("root", x).
			Float64("from", q).
			Msg("interior root")
		s.plan.Production = math.Max(0, x)
		return resolved
	}
	return next
}

// run walks the preference order and reports the stage that resolved the plan.
func (e *engine) run(s *scratch) (Stage, bool) {
	stages := []struct {
		stage Stage
		apply func(*scratch) outcome
	}{
		{SubInvestment, e.cutSubstitutionary},
		{ExpInvestment, e.cutExpansionary},
		{Inventory, e.cutInventories},
		{Production, e.cutProduction},
	}
	for _, st := range stages {
		if st.apply(s) == resolved {
			return st.stage, true
		}
	}
	return Done, false
}

// giveUp applies the policy for a plan no stage could make payable.
func (e *engine) giveUp(s *scratch) {
	if e.policy.Exhaust {
		e.exhaust(s)
		return
	}
	e.minimiseLeverage(s)
}

// minimiseLeverage drops the loan. Production goes to zero when payment falls
// with output; otherwise the firm keeps what its own funds can pay for.
func (e *engine) minimiseLeverage(s *scratch) {
	s.pool = 0
	s.plan.InvestmentExpansionary = 0
	s.plan.InvestmentSubstitutionary = 0
	if s.bottomDecreasing {
		s.plan.Production = 0
	} else {
		affordable := math.Max(0, e.fn.LiquidAsset()/e.fn.UnitCost())
		s.plan.Production = math.Min(s.plan.Production, affordable)
	}
	e.log.Debug().
		Str("policy", e.policy.Name).
		Float64("production", s.plan.Production).
		Msg("no payable plan, loan demand dropped")
}

// exhaust keeps the granted loan and picks, among the segment end points, the
// production level with the highest payment.
func (e *engine) exhaust(s *scratch) {
	q := s.plan.Production
	candidates := []float64{q}
	without := s.plan
	without.Production = 0
	if kink := (e.fn.LiquidAsset() - e.fn.PlanCost(without)) / e.fn.UnitCost(); kink > 0 && kink < q {
		candidates = append(candidates, kink)
	}
	candidates = append(candidates, 0)

	best, bestPay := q, math.Inf(-1)
	for _, c := range candidates {
		p := s.plan
		p.Production = c
		if pay := e.payAt(p, s.pool); pay > bestPay {
			best, bestPay = c, pay
		}
	}
	s.plan.Production = best
	e.log.Debug().
		Str("policy", e.policy.Name).
		Float64("production", best).
		Float64("payment", bestPay).
		Msg("no payable plan, loan used in full")
}
