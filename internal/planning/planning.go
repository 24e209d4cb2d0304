// Package planning sets the desired production and investment a firm brings
// into the adjustment passes.
package planning

import (
	"math"

	"CreditCycle/internal/model"
	"CreditCycle/internal/payment"
)

// Config holds the planning rules shared by all firms.
type Config struct {
	// InventoryShare is the desired end-of-period stock as a share of
	// expected demand.
	InventoryShare float64
	// Markup over unit cost sets the price.
	Markup float64
	// OutputPerCapital is output per capital unit at full capacity. Zero
	// means capacity never binds.
	OutputPerCapital float64
}

// Planner derives desired plans.
type Planner struct {
	cfg Config
}

// New creates a Planner.
func New(cfg Config) *Planner {
	return &Planner{cfg: cfg}
}

// Plan prices the firm, records the demand it expects and sets its desired
// plan. Production targets expected demand plus the desired stock, net of
// current inventories, up to capacity. Demand beyond capacity becomes
// expansionary investment; depreciated capital is replaced by substitutionary
// investment. Both are whole machines.
func (p *Planner) Plan(f *model.Firm, m model.Macro, expected float64) model.Plan {
	expected = math.Max(0, expected)
	f.ExpectedDemand = expected
	if f.Productivity > 0 {
		f.Price = (1 + p.cfg.Markup) * m.Wage / f.Productivity
	}

	target := math.Max(0, expected*(1+p.cfg.InventoryShare)-f.Inventories)
	plan := model.Plan{
		Production:                target,
		InvestmentSubstitutionary: payment.Quantize(f.Capital*m.Depreciation, m.MachineSize),
	}

	if p.cfg.OutputPerCapital > 0 {
		capacity := f.Capital * p.cfg.OutputPerCapital
		if target > capacity {
			plan.Production = capacity
			gap := (target - capacity) / p.cfg.OutputPerCapital
			plan.InvestmentExpansionary = payment.Quantize(gap, m.MachineSize)
		}
	}

	f.Desired = plan
	return plan
}
