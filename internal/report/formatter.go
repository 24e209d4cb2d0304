// Package report renders simulation output as plain text for the console.
package report

import (
	"fmt"
	"strings"

	"CreditCycle/internal/model"
	"CreditCycle/internal/recorder"
)

// FormatPeriod formats one period summary.
func FormatPeriod(s *recorder.PeriodSummary) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Period %d | run %s\n", s.Period, s.RunID))
	b.WriteString(fmt.Sprintf("  firms: %d active, %d exited, %d infeasible\n", s.ActiveFirms, s.Exits, s.Infeasible))

	served := 100.0
	if s.CreditDemand > 0 {
		served = s.Loans / s.CreditDemand * 100
	}
	b.WriteString(fmt.Sprintf("  credit: demand %.2f, supply %.2f, granted %.2f (%.1f%% served, %d rationed)\n",
		s.CreditDemand, s.CreditSupply, s.Loans, served, s.Rationed))
	b.WriteString(fmt.Sprintf("  output: production %.2f, sales %.2f, investment %.2f\n", s.Production, s.Sales, s.Investment))
	b.WriteString(fmt.Sprintf("  firm means: liquid assets %.2f, debt %.2f\n", s.MeanLiquidAsset, s.MeanDebt))
	b.WriteString(fmt.Sprintf("  tax revenue %.2f | bank equity %.2f, loans %.2f, bad debt %.2f\n",
		s.TaxRevenue, s.BankEquity, s.BankDebt, s.BadDebt))
	return b.String()
}

// FormatBank formats the bank balance sheet for display.
func FormatBank(state model.BankState) string {
	var b strings.Builder
	b.WriteString("Bank\n")
	b.WriteString(fmt.Sprintf("  equity: %.2f\n", state.Equity))
	b.WriteString(fmt.Sprintf("  loans outstanding: %.2f\n", state.Debt))
	b.WriteString(fmt.Sprintf("  credit supply: %.2f (%.2f unallocated)\n", state.CreditSupply, state.TotalCreditRemaining))
	b.WriteString(fmt.Sprintf("  last period: interest %.2f, deposit interest %.2f, bad debt %.2f\n",
		state.InterestIncome, state.DepositInterest, state.BadDebt))
	return b.String()
}
