package bank

import (
	"cmp"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
)

// Demand is one firm's request for credit.
type Demand struct {
	FirmID int
	Amount float64
	Ratio  float64 // net worth over past sales
}

// Grant is the loan a firm receives.
type Grant struct {
	FirmID int
	Amount float64
}

// Allocate shares the remaining credit supply among positive demands. When
// supply covers the aggregate every firm gets its demand; otherwise firms are
// served in descending ratio order, ties by ascending ID, each receiving
// min(demand, remaining) until supply runs out. Grants come back in service
// order. The ranking is cleared afterwards.
func (b *Bank) Allocate(demands []Demand) []Grant {
	b.mu.Lock()
	defer b.mu.Unlock()
	defer clear(b.ranking)

	queue := make([]Demand, 0, len(demands))
	amounts := make([]float64, 0, len(demands))
	for _, d := range demands {
		if d.Amount <= 0 {
			continue
		}
		queue = append(queue, d)
		amounts = append(amounts, d.Amount)
	}
	if len(queue) == 0 {
		return nil
	}

	aggregate := floats.Sum(amounts)
	remaining := math.Max(0, b.state.TotalCreditRemaining)
	grants := make([]Grant, 0, len(queue))

	if aggregate <= remaining {
		for _, d := range queue {
			grants = append(grants, Grant{FirmID: d.FirmID, Amount: d.Amount})
		}
		b.state.TotalCreditRemaining = remaining - aggregate
		b.log.Debug().
			Int("firms", len(queue)).
			Float64("demand", aggregate).
			Float64("supply", remaining).
			Msg("credit demand fully served")
		return grants
	}

	slices.SortStableFunc(queue, func(x, y Demand) int {
		if c := cmp.Compare(y.Ratio, x.Ratio); c != 0 {
			return c
		}
		return cmp.Compare(x.FirmID, y.FirmID)
	})

	rationed := 0
	for _, d := range queue {
		amount := math.Min(d.Amount, remaining)
		remaining -= amount
		if amount < d.Amount {
			rationed++
		}
		grants = append(grants, Grant{FirmID: d.FirmID, Amount: amount})
	}
	b.state.TotalCreditRemaining = remaining

	b.log.Info().
		Int("firms", len(queue)).
		Int("rationed", rationed).
		Float64("demand", aggregate).
		Float64("supply", b.state.CreditSupply).
		Msg("credit rationed")
	return grants
}
