package model

// BankState is the persistent balance sheet of the bank.
type BankState struct {
	Equity               float64 `json:"equity" msgpack:"equity"`
	CreditSupply         float64 `json:"credit_supply" msgpack:"credit_supply"`
	TotalCreditRemaining float64 `json:"total_credit_remaining" msgpack:"total_credit_remaining"`
	Debt                 float64 `json:"debt" msgpack:"debt"` // outstanding loans to firms
	BadDebt              float64 `json:"bad_debt" msgpack:"bad_debt"`
	InterestIncome       float64 `json:"interest_income" msgpack:"interest_income"`
	DepositInterest      float64 `json:"deposit_interest" msgpack:"deposit_interest"`
}

// GovernmentState tracks tax receipts.
type GovernmentState struct {
	TaxRate  float64 `json:"tax_rate" msgpack:"tax_rate"`
	Revenue  TwoSlot `json:"revenue" msgpack:"revenue"`
	Receipts float64 `json:"receipts" msgpack:"receipts"`
}
