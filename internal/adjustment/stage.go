// Package adjustment derives a firm's feasible production, investment and
// borrowing plan before its loan is known (a priori) and after the bank has
// granted it (a posteriori).
//
// Both passes walk the same preference order: substitutionary investment is
// cut first, then expansionary investment, then production for inventories,
// then production for sales. Each stage either resolves the plan with a
// closed-form root of the payment function or hands over to the next.
package adjustment

import (
	"CreditCycle/internal/model"
)

// Stage identifies a step of the adjustment chain.
type Stage int

const (
	SubInvestment Stage = iota
	ExpInvestment
	Inventory
	Production
	Done
)

func (s Stage) String() string {
	switch s {
	case SubInvestment:
		return "substitutionary_investment"
	case ExpInvestment:
		return "expansionary_investment"
	case Inventory:
		return "inventory"
	case Production:
		return "production"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// Entry records how the adjustment chain was entered.
type Entry int

const (
	// EntryNone means the plan was payable without running the chain.
	EntryNone Entry = iota
	// EntryPositiveLiquidAsset means the plan was funded internally, so every
	// cut stays on the internally funded side of the payment function.
	EntryPositiveLiquidAsset
	// EntryNilLiquidAsset means liquid assets were exhausted and the plan
	// needed a loan, so each root is classified against the funding kink.
	EntryNilLiquidAsset
)

func (e Entry) String() string {
	switch e {
	case EntryPositiveLiquidAsset:
		return "positive_liquid_asset"
	case EntryNilLiquidAsset:
		return "nil_liquid_asset"
	default:
		return "none"
	}
}

// Policy is what distinguishes the a priori pass from the a posteriori pass.
type Policy struct {
	Name string
	// Absorb routes whatever the loan pool does not spend on production and
	// investment into debt repayment.
	Absorb bool
	// Exhaust keeps the whole pool when no stage can make the plan payable.
	// Without it the firm gives up the loan instead.
	Exhaust bool
}

// Result is the outcome of an adjustment pass.
type Result struct {
	Plan         model.Plan
	Split        model.LoanSplit
	CreditDemand float64
	Entry        Entry
	// Stage is the stage that resolved the plan. Done means either no stage
	// was needed or none could help; Feasible tells the two apart.
	Stage    Stage
	Feasible bool
	Payment  float64
}

type outcome int

const (
	next outcome = iota
	resolved
)
