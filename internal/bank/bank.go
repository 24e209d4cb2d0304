// Package bank holds the single commercial bank: its balance sheet, the
// per-period credit supply and the rationing of that supply among firms.
package bank

import (
	"math"
	"sync"

	"CreditCycle/internal/model"

	"github.com/rs/zerolog"
)

// Config sets how the bank sizes its credit supply.
type Config struct {
	InitialEquity float64
	// CapitalRatio is the regulatory equity-to-loans ratio. When positive the
	// supply is whatever keeps loans within Equity/CapitalRatio; otherwise
	// FixedSupply is offered every period.
	CapitalRatio float64
	FixedSupply  float64
}

// Bank manages the bank balance sheet with concurrency safety.
type Bank struct {
	mu           sync.Mutex
	state        model.BankState
	capitalRatio float64
	fixedSupply  float64
	// ranking is filled while firms plan and cleared by Allocate.
	ranking map[int]float64
	log     zerolog.Logger
}

// New creates a Bank with a fresh balance sheet.
func New(cfg Config, log zerolog.Logger) *Bank {
	return Restore(model.BankState{Equity: cfg.InitialEquity}, cfg, log)
}

// Restore creates a Bank from a saved balance sheet.
func Restore(state model.BankState, cfg Config, log zerolog.Logger) *Bank {
	return &Bank{
		state:        state,
		capitalRatio: cfg.CapitalRatio,
		fixedSupply:  cfg.FixedSupply,
		ranking:      make(map[int]float64),
		log:          log.With().Str("component", "bank").Logger(),
	}
}

// GetState returns a copy of the current balance sheet.
func (b *Bank) GetState() model.BankState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// UpdateCreditSupply opens a period: it clears last period's flows and sets the
// credit available to firms.
func (b *Bank) UpdateCreditSupply() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state.InterestIncome = 0
	b.state.DepositInterest = 0
	b.state.BadDebt = 0

	supply := b.fixedSupply
	if b.capitalRatio > 0 {
		supply = math.Max(0, b.state.Equity/b.capitalRatio-b.state.Debt)
	}
	b.state.CreditSupply = supply
	b.state.TotalCreditRemaining = supply

	b.log.Debug().
		Float64("equity", b.state.Equity).
		Float64("debt", b.state.Debt).
		Float64("supply", supply).
		Msg("credit supply updated")
	return supply
}

// RegisterRatio records a firm's net-worth-to-sales ratio for this period's
// ranking. A firm without sales gets ratio zero.
func (b *Bank) RegisterRatio(firmID int, liquidAsset, pastSales float64) {
	ratio := 0.0
	if pastSales > 0 {
		ratio = liquidAsset / pastSales
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.ranking[firmID] = ratio
}

// Demand builds a credit request carrying the firm's registered ratio.
// Unregistered firms rank with ratio zero.
func (b *Bank) Demand(firmID int, amount float64) Demand {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Demand{FirmID: firmID, Amount: amount, Ratio: b.ranking[firmID]}
}

// BookLoan adds a granted loan to the bank's claims on firms.
func (b *Bank) BookLoan(amount float64) {
	if amount <= 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.Debt += amount
}

// BookRepayment records amortisation and interest received from a firm.
func (b *Bank) BookRepayment(principal, interest float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.Debt -= principal
	b.state.InterestIncome += interest
	b.state.Equity += interest
}

// BookDepositInterest records interest paid on a firm's liquid assets.
func (b *Bank) BookDepositInterest(amount float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.DepositInterest += amount
	b.state.Equity -= amount
}

// WriteOff removes the debt of an exiting firm from the books.
func (b *Bank) WriteOff(amount float64) {
	if amount <= 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.Debt -= amount
	b.state.BadDebt += amount
	b.state.Equity -= amount
	b.log.Info().Float64("amount", amount).Float64("equity", b.state.Equity).Msg("bad debt written off")
}
