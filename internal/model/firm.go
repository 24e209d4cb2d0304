package model

import "math"

// Firm is the financial state of a consumption-good firm. The fields from
// Desired down to Split are recomputed every period; the rest persists.
type Firm struct {
	ID                    int     `json:"id" msgpack:"id"`
	LiquidAsset           TwoSlot `json:"liquid_asset" msgpack:"liquid_asset"`
	Debt                  TwoSlot `json:"debt" msgpack:"debt"`
	Capital               float64 `json:"capital" msgpack:"capital"`
	Productivity          float64 `json:"productivity" msgpack:"productivity"`
	Price                 float64 `json:"price" msgpack:"price"`
	Inventories           float64 `json:"inventories" msgpack:"inventories"`
	PastSales             float64 `json:"past_sales" msgpack:"past_sales"`
	GrossOperatingSurplus float64 `json:"gross_operating_surplus" msgpack:"gross_operating_surplus"`
	Exited                bool    `json:"exited" msgpack:"exited"`

	Desired         Plan      `json:"desired" msgpack:"desired"`
	Star            Plan      `json:"star" msgpack:"star"`
	Optimal         Plan      `json:"optimal" msgpack:"optimal"`
	ExpectedDemand  float64   `json:"expected_demand" msgpack:"expected_demand"`
	MaxPossibleLoan float64   `json:"max_possible_loan" msgpack:"max_possible_loan"`
	CreditDemand    float64   `json:"credit_demand" msgpack:"credit_demand"`
	Loan            float64   `json:"loan" msgpack:"loan"`
	StarSplit       LoanSplit `json:"star_split" msgpack:"star_split"`
	Split           LoanSplit `json:"split" msgpack:"split"`
	Feasible        bool      `json:"feasible" msgpack:"feasible"`
}

// BorrowingCeiling returns the maximum loan the firm may ask for this period.
func (f *Firm) BorrowingCeiling(loanToValue float64) float64 {
	return math.Max(0, loanToValue*f.GrossOperatingSurplus)
}

// NetWorthToSales is the bank's solvency proxy: liquid assets over last
// period's sales. A firm without sales ranks last.
func (f *Firm) NetWorthToSales() float64 {
	if f.PastSales <= 0 {
		return 0
	}
	return f.LiquidAsset.Current / f.PastSales
}

// ResetPeriod clears the per-period decision fields.
func (f *Firm) ResetPeriod() {
	f.Desired = Plan{}
	f.Star = Plan{}
	f.Optimal = Plan{}
	f.ExpectedDemand = 0
	f.MaxPossibleLoan = 0
	f.CreditDemand = 0
	f.Loan = 0
	f.StarSplit = LoanSplit{}
	f.Split = LoanSplit{}
	f.Feasible = false
}
