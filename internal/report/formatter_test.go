package report

import (
	"testing"

	"CreditCycle/internal/model"
	"CreditCycle/internal/recorder"

	"github.com/stretchr/testify/assert"
)

func TestFormatPeriod(t *testing.T) {
	out := FormatPeriod(&recorder.PeriodSummary{
		RunID:        "r1",
		Period:       4,
		ActiveFirms:  10,
		Exits:        1,
		Rationed:     3,
		CreditDemand: 200,
		Loans:        150,
	})

	assert.Contains(t, out, "Period 4 | run r1")
	assert.Contains(t, out, "10 active, 1 exited")
	assert.Contains(t, out, "75.0% served, 3 rationed")
}

func TestFormatPeriodNoDemand(t *testing.T) {
	out := FormatPeriod(&recorder.PeriodSummary{Period: 1})
	assert.Contains(t, out, "100.0% served")
}

func TestFormatBank(t *testing.T) {
	out := FormatBank(model.BankState{Equity: 12.5, Debt: 100, CreditSupply: 50, TotalCreditRemaining: 5})
	assert.Contains(t, out, "equity: 12.50")
	assert.Contains(t, out, "credit supply: 50.00 (5.00 unallocated)")
}
