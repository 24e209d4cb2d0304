// Package payment predicts a firm's end-of-period liquidity for a candidate
// production, investment and borrowing plan.
package payment

import (
	"errors"
	"fmt"
	"math"

	"CreditCycle/internal/model"
)

// DegenerateUnitCost replaces the unit cost of a firm whose productivity is not
// positive when the caller chooses to continue instead of failing.
const DegenerateUnitCost = 1e12

// ErrDegenerateFirm is returned when a firm cannot be priced: zero productivity,
// a non-positive machine size or a non-positive supplier price.
var ErrDegenerateFirm = errors.New("degenerate firm")

// Function is the payment function of one firm for one period. It is a value
// type; evaluating it never mutates anything.
type Function struct {
	price          float64
	unitCost       float64
	machineCost    float64 // cost of one capital unit
	machineSize    float64
	demand         float64
	inventories    float64
	liquidAsset    float64
	debt           float64
	taxRate        float64
	depositRate    float64
	debtRate       float64
	repaymentShare float64
}

// New builds the payment function of f given the period's macro variables and
// the demand the firm expects to face.
func New(f *model.Firm, m model.Macro, demand float64) (Function, error) {
	if m.MachineSize <= 0 {
		return Function{}, fmt.Errorf("firm %d: machine size %v: %w", f.ID, m.MachineSize, ErrDegenerateFirm)
	}
	if m.SupplierPrice <= 0 {
		return Function{}, fmt.Errorf("firm %d: supplier price %v: %w", f.ID, m.SupplierPrice, ErrDegenerateFirm)
	}
	if f.Productivity <= 0 {
		return Function{}, fmt.Errorf("firm %d: productivity %v: %w", f.ID, f.Productivity, ErrDegenerateFirm)
	}
	return build(f, m, demand, m.Wage/f.Productivity), nil
}

// Fallback builds the payment function of a degenerate firm, pricing production
// at DegenerateUnitCost so that the adjustment engines cut it to nothing. A
// missing supplier price prices machines the same way.
func Fallback(f *model.Firm, m model.Macro, demand float64) Function {
	if m.MachineSize <= 0 {
		m.MachineSize = 1
	}
	if m.SupplierPrice <= 0 {
		m.SupplierPrice = DegenerateUnitCost * m.MachineSize
	}
	unitCost := DegenerateUnitCost
	if f.Productivity > 0 {
		unitCost = m.Wage / f.Productivity
	}
	return build(f, m, demand, unitCost)
}

func build(f *model.Firm, m model.Macro, demand, unitCost float64) Function {
	return Function{
		price:          f.Price,
		unitCost:       unitCost,
		machineCost:    m.SupplierPrice / m.MachineSize,
		machineSize:    m.MachineSize,
		demand:         math.Max(0, demand),
		inventories:    math.Max(0, f.Inventories),
		liquidAsset:    f.LiquidAsset.Current,
		debt:           f.Debt.Current,
		taxRate:        m.TaxRate,
		depositRate:    m.DepositRate,
		debtRate:       m.DebtRate,
		repaymentShare: m.RepaymentShare,
	}
}

// WithDemand returns a copy evaluated against a different demand level.
func (fn Function) WithDemand(demand float64) Function {
	fn.demand = math.Max(0, demand)
	return fn
}

// Evaluate returns the expected net liquidity at the end of the period for
// production q, total investment inv, loan for debt repayment lD and loan for
// production and investment lP.
func (fn Function) Evaluate(q, inv, lD, lP float64) float64 {
	sales := fn.Sales(q)
	remaining := fn.LiquidRemaining(q, inv)
	outstanding := fn.debt + lD + lP
	profit := sales + fn.depositRate*remaining - fn.debtRate*outstanding
	return (1-fn.taxRate)*profit + remaining + lD - fn.repaymentShare*outstanding
}

// EvaluatePlan is Evaluate for a plan and split.
func (fn Function) EvaluatePlan(p model.Plan, s model.LoanSplit) float64 {
	return fn.Evaluate(p.Production, p.Investment(), s.ForDebtRepayment, s.ForProductionAndInvestment)
}

// Sales returns revenue from producing q.
func (fn Function) Sales(q float64) float64 {
	return fn.price * math.Min(q+fn.inventories, fn.demand)
}

// Cost returns production plus investment spending.
func (fn Function) Cost(q, inv float64) float64 {
	return fn.unitCost*q + inv*fn.machineCost
}

// PlanCost is Cost for a plan.
func (fn Function) PlanCost(p model.Plan) float64 {
	return fn.Cost(p.Production, p.Investment())
}

// LiquidRemaining returns the liquid assets left after paying for q and inv
// out of internal funds; any shortfall is the loan's business.
func (fn Function) LiquidRemaining(q, inv float64) float64 {
	return math.Max(0, fn.liquidAsset-fn.Cost(q, inv))
}

// Profit returns the pre-tax profit of the plan and split.
func (fn Function) Profit(p model.Plan, s model.LoanSplit) float64 {
	remaining := fn.LiquidRemaining(p.Production, p.Investment())
	return fn.Sales(p.Production) + fn.depositRate*remaining - fn.debtRate*(fn.debt+s.Total())
}

// InventoryNeutral returns the production level at which output plus past
// inventories just covers demand. Above it production only builds stock.
func (fn Function) InventoryNeutral() float64 {
	return math.Max(0, fn.demand-fn.inventories)
}

// InternalSlope is the payment lost per unit of spending paid from liquid assets.
func (fn Function) InternalSlope() float64 {
	return 1 + (1-fn.taxRate)*fn.depositRate
}

// LoanSlope is the payment lost per unit of loan in after-tax interest and
// amortisation.
func (fn Function) LoanSlope() float64 {
	return (1-fn.taxRate)*fn.debtRate + fn.repaymentShare
}

// RolloverGain is the payment gained per unit of loan used for debt repayment.
func (fn Function) RolloverGain() float64 {
	return 1 - fn.LoanSlope()
}

// MarginalRevenue is the payment gained per unit produced below the
// inventory-neutral level, before costs.
func (fn Function) MarginalRevenue() float64 {
	return (1 - fn.taxRate) * fn.price
}

// UnitCost returns the cost of producing one unit.
func (fn Function) UnitCost() float64 { return fn.unitCost }

// MachineCost returns the cost of one capital unit.
func (fn Function) MachineCost() float64 { return fn.machineCost }

// MachineSize returns the investment quantum.
func (fn Function) MachineSize() float64 { return fn.machineSize }

// LiquidAsset returns the internal funds available at the start of the period.
func (fn Function) LiquidAsset() float64 { return fn.liquidAsset }

// Demand returns the demand the function evaluates sales against.
func (fn Function) Demand() float64 { return fn.demand }

// Debt returns the debt outstanding at the start of the period.
func (fn Function) Debt() float64 { return fn.debt }

// Quantize floors inv to a non-negative multiple of the machine size.
func (fn Function) Quantize(inv float64) float64 {
	return Quantize(inv, fn.machineSize)
}

// Quantize floors inv to a non-negative multiple of size. Values within a
// rounding error below a multiple snap up to it.
func Quantize(inv, size float64) float64 {
	if inv <= 0 || size <= 0 {
		return 0
	}
	machines := math.Floor(inv/size + 1e-9)
	return machines * size
}
