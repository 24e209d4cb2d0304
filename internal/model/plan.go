package model

// Plan is a production and investment decision for one period.
// Investment quantities are in capital units and are multiples of the machine size.
type Plan struct {
	Production                float64 `json:"production" msgpack:"production"`
	InvestmentExpansionary    float64 `json:"investment_expansionary" msgpack:"investment_expansionary"`
	InvestmentSubstitutionary float64 `json:"investment_substitutionary" msgpack:"investment_substitutionary"`
}

// Investment returns total investment.
func (p Plan) Investment() float64 {
	return p.InvestmentExpansionary + p.InvestmentSubstitutionary
}

// LoanSplit is the internal use of a loan (or of the borrowing ceiling before
// the loan is known).
type LoanSplit struct {
	ForProductionAndInvestment float64 `json:"for_production_and_investment" msgpack:"for_production_and_investment"`
	ForDebtRepayment           float64 `json:"for_debt_repayment" msgpack:"for_debt_repayment"`
}

// Total returns the loan the split accounts for.
func (s LoanSplit) Total() float64 {
	return s.ForProductionAndInvestment + s.ForDebtRepayment
}
