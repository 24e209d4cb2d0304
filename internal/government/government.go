// Package government collects the profit tax.
package government

import (
	"sync"

	"CreditCycle/internal/model"

	"github.com/rs/zerolog"
)

// Government books tax receipts with concurrency safety.
type Government struct {
	mu      sync.Mutex
	state   model.GovernmentState
	pending float64 // receipts of the period being closed
	log     zerolog.Logger
}

// New creates a Government levying taxRate on firm profits.
func New(taxRate float64, log zerolog.Logger) *Government {
	return Restore(model.GovernmentState{TaxRate: taxRate}, log)
}

// Restore creates a Government from saved state.
func Restore(state model.GovernmentState, log zerolog.Logger) *Government {
	return &Government{state: state, log: log.With().Str("component", "government").Logger()}
}

// GetState returns a copy of the current state.
func (g *Government) GetState() model.GovernmentState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// TaxRate returns the profit tax rate.
func (g *Government) TaxRate() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state.TaxRate
}

// BookTax records tax paid by a firm. Loss-making firms pay negative tax.
func (g *Government) BookTax(amount float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pending += amount
	g.state.Receipts += amount
}

// ClosePeriod moves this period's receipts into the revenue series.
func (g *Government) ClosePeriod() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	revenue := g.pending
	g.state.Revenue.Roll(revenue)
	g.pending = 0

	g.log.Debug().
		Float64("revenue", revenue).
		Float64("receipts", g.state.Receipts).
		Msg("period closed")
	return revenue
}
