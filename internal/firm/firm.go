// Package firm applies the adjustment passes and the end-of-period accounts
// to a single firm.
package firm

import (
	"math"

	"CreditCycle/internal/adjustment"
	"CreditCycle/internal/model"
	"CreditCycle/internal/payment"
)

// PreLoan sets the firm's borrowing ceiling and runs the a priori pass on its
// desired plan. fn must be built against the firm's expected demand.
func PreLoan(en *adjustment.Engine, f *model.Firm, fn payment.Function, m model.Macro) adjustment.Result {
	f.MaxPossibleLoan = f.BorrowingCeiling(m.LoanToValue)

	res := en.APriori(fn, f.Desired, f.MaxPossibleLoan)
	f.Star = res.Plan
	f.StarSplit = res.Split
	f.CreditDemand = res.CreditDemand
	f.Feasible = res.Feasible
	return res
}

// PostLoan runs the a posteriori pass once the bank has granted loan.
func PostLoan(en *adjustment.Engine, f *model.Firm, fn payment.Function, loan float64) adjustment.Result {
	f.Loan = math.Max(0, loan)

	res := en.APosteriori(fn, adjustment.Granted{
		Desired:      f.Desired,
		Star:         f.Star,
		StarSplit:    f.StarSplit,
		StarFeasible: f.Feasible,
		CreditDemand: f.CreditDemand,
		Loan:         f.Loan,
	})
	f.Optimal = res.Plan
	f.Split = res.Split
	f.Feasible = res.Feasible
	return res
}

// Closing is what one firm's end-of-period accounts owe to the rest of the
// economy.
type Closing struct {
	FirmID          int
	Sales           float64
	Profit          float64
	Tax             float64
	Interest        float64
	DepositInterest float64
	Repayment       float64
	LiquidAsset     float64
	Debt            float64
	WriteOff        float64
	Exited          bool
}

// Close settles the period for f. fn must be built against realised demand so
// that sales are what the market actually bought. A firm ending with negative
// liquid assets exits and its remaining debt is written off.
func Close(f *model.Firm, fn payment.Function, m model.Macro) Closing {
	plan := f.Optimal
	q := plan.Production
	inv := plan.Investment()

	outstanding := f.Debt.Current + f.Loan
	sold := math.Min(q+f.Inventories, fn.Demand())
	sales := fn.Sales(q)
	remaining := fn.LiquidRemaining(q, inv)

	c := Closing{
		FirmID:          f.ID,
		Sales:           sales,
		Interest:        m.DebtRate * outstanding,
		DepositInterest: m.DepositRate * remaining,
		Repayment:       m.RepaymentShare * outstanding,
	}
	c.Profit = sales + c.DepositInterest - c.Interest
	c.Tax = m.TaxRate * c.Profit
	c.LiquidAsset = c.Profit - c.Tax + remaining + f.Split.ForDebtRepayment - c.Repayment
	c.Debt = outstanding - c.Repayment

	f.GrossOperatingSurplus = sales - fn.UnitCost()*q
	f.PastSales = sales
	f.Inventories = math.Max(0, q+f.Inventories-sold)
	f.Capital = f.Capital*(1-m.Depreciation) + inv
	f.LiquidAsset.Roll(c.LiquidAsset)
	f.Debt.Roll(c.Debt)

	if c.LiquidAsset < 0 {
		c.Exited = true
		c.WriteOff = math.Max(0, c.Debt)
		f.Exited = true
		f.Debt.Current = 0
	}
	return c
}
