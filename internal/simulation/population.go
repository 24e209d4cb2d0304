package simulation

import (
	"CreditCycle/internal/checkpoint"
	"CreditCycle/internal/model"
)

// Seed is the initial state shared by every firm of a fresh population.
type Seed struct {
	Count                 int
	LiquidAsset           float64
	Debt                  float64
	Capital               float64
	Productivity          float64
	Inventories           float64
	PastSales             float64
	GrossOperatingSurplus float64
}

// NewPopulation creates Count identical firms with IDs 1..Count.
func NewPopulation(s Seed) []*model.Firm {
	firms := make([]*model.Firm, s.Count)
	for i := range firms {
		firms[i] = &model.Firm{
			ID:                    i + 1,
			LiquidAsset:           model.TwoSlot{Previous: s.LiquidAsset, Current: s.LiquidAsset},
			Debt:                  model.TwoSlot{Previous: s.Debt, Current: s.Debt},
			Capital:               s.Capital,
			Productivity:          s.Productivity,
			Inventories:           s.Inventories,
			PastSales:             s.PastSales,
			GrossOperatingSurplus: s.GrossOperatingSurplus,
		}
	}
	return firms
}

// Snapshot captures the state needed to resume after the last closed period.
func (e *Economy) Snapshot() *checkpoint.Snapshot {
	firms := make([]model.Firm, len(e.firms))
	for i, f := range e.firms {
		firms[i] = *f
	}
	return &checkpoint.Snapshot{
		RunID:      e.opts.RunID,
		Period:     e.period,
		Firms:      firms,
		Bank:       e.deps.Bank.GetState(),
		Government: e.deps.Government.GetState(),
	}
}

// Resume sets the period counter of an economy rebuilt from a snapshot.
func (e *Economy) Resume(period int) {
	e.period = period
}

// FirmsFromSnapshot returns pointers to copies of the snapshot's firms.
func FirmsFromSnapshot(snap *checkpoint.Snapshot) []*model.Firm {
	firms := make([]*model.Firm, len(snap.Firms))
	for i := range snap.Firms {
		f := snap.Firms[i]
		firms[i] = &f
	}
	return firms
}
