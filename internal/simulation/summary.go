package simulation

import (
	"CreditCycle/internal/firm"
	"CreditCycle/internal/model"
	"CreditCycle/internal/recorder"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

func (e *Economy) summarise(firms []*model.Firm, closings []firm.Closing, supply, revenue float64) *recorder.PeriodSummary {
	s := &recorder.PeriodSummary{
		RunID:        e.opts.RunID,
		Period:       e.period,
		ActiveFirms:  len(firms),
		CreditSupply: supply,
		TaxRevenue:   revenue,
	}

	demand := make([]float64, 0, len(firms))
	loans := make([]float64, 0, len(firms))
	var liquid, debt []float64
	for i, f := range firms {
		demand = append(demand, f.CreditDemand)
		loans = append(loans, f.Loan)
		s.Production += f.Optimal.Production
		s.Investment += f.Optimal.Investment()
		s.Sales += closings[i].Sales
		if f.Loan < f.CreditDemand {
			s.Rationed++
		}
		if !f.Feasible {
			s.Infeasible++
		}
		if closings[i].Exited {
			s.Exits++
			continue
		}
		liquid = append(liquid, f.LiquidAsset.Current)
		debt = append(debt, f.Debt.Current)
	}
	s.CreditDemand = floats.Sum(demand)
	s.Loans = floats.Sum(loans)
	if len(liquid) > 0 {
		s.MeanLiquidAsset = stat.Mean(liquid, nil)
		s.MeanDebt = stat.Mean(debt, nil)
	}

	bs := e.deps.Bank.GetState()
	s.BankEquity = bs.Equity
	s.BankDebt = bs.Debt
	s.BadDebt = bs.BadDebt
	return s
}
