package adjustment

import (
	"math"

	"CreditCycle/internal/model"
	"CreditCycle/internal/payment"
)

// feasibility clamps desired to what budget can pay for, cutting in preference
// order. Investment stays a machine multiple.
func feasibility(fn payment.Function, desired model.Plan, budget float64) model.Plan {
	budget = math.Max(0, budget)
	plan := model.Plan{
		Production:                math.Max(0, desired.Production),
		InvestmentExpansionary:    fn.Quantize(desired.InvestmentExpansionary),
		InvestmentSubstitutionary: fn.Quantize(desired.InvestmentSubstitutionary),
	}

	excess := fn.PlanCost(plan) - budget
	if excess <= 0 {
		return plan
	}

	if mc := fn.MachineCost(); mc > 0 {
		plan.InvestmentSubstitutionary = fn.Quantize(plan.InvestmentSubstitutionary - excess/mc)
		excess = fn.PlanCost(plan) - budget
		if excess <= 0 {
			return plan
		}

		plan.InvestmentExpansionary = fn.Quantize(plan.InvestmentExpansionary - excess/mc)
		excess = fn.PlanCost(plan) - budget
		if excess <= 0 {
			return plan
		}
	}

	plan.Production = math.Max(0, plan.Production-excess/fn.UnitCost())
	return plan
}

// feasibilityNilLoan fits desired into internal funds alone.
func feasibilityNilLoan(fn payment.Function, desired model.Plan) model.Plan {
	return feasibility(fn, desired, fn.LiquidAsset())
}

// feasibilityPositiveLoan fits desired into internal funds plus the granted loan.
func feasibilityPositiveLoan(fn payment.Function, desired model.Plan, loan float64) model.Plan {
	return feasibility(fn, desired, fn.LiquidAsset()+loan)
}
