package model

// Macro holds the economy-wide variables every firm reads during a period.
type Macro struct {
	Wage           float64 `json:"wage" msgpack:"wage"`
	TaxRate        float64 `json:"tax_rate" msgpack:"tax_rate"`
	DepositRate    float64 `json:"deposit_rate" msgpack:"deposit_rate"`
	DebtRate       float64 `json:"debt_rate" msgpack:"debt_rate"`
	RepaymentShare float64 `json:"repayment_share" msgpack:"repayment_share"` // share of debt amortised each period
	MachineSize    float64 `json:"machine_size" msgpack:"machine_size"`       // capital units per machine
	SupplierPrice  float64 `json:"supplier_price" msgpack:"supplier_price"`   // price of one machine
	LoanToValue    float64 `json:"loan_to_value" msgpack:"loan_to_value"`
	Depreciation   float64 `json:"depreciation" msgpack:"depreciation"`
}
