package recorder

// PeriodSummary holds the economy-wide aggregates of one period.
type PeriodSummary struct {
	RunID  string
	Period int

	ActiveFirms int
	Exits       int
	Infeasible  int
	Rationed    int

	CreditSupply float64
	CreditDemand float64
	Loans        float64

	Production float64
	Sales      float64
	Investment float64

	MeanLiquidAsset float64
	MeanDebt        float64

	TaxRevenue float64
	BankEquity float64
	BankDebt   float64
	BadDebt    float64
}

// FirmRow is one firm's decision and outcome in a period.
type FirmRow struct {
	FirmID          int
	Production      float64
	Expansionary    float64
	Substitutionary float64
	CreditDemand    float64
	Loan            float64
	LiquidAsset     float64
	Debt            float64
	Stage           string
	Feasible        bool
	Exited          bool
}

// Recorder persists simulation output for analysis.
type Recorder interface {
	RecordPeriod(s *PeriodSummary) error
	RecordFirms(runID string, period int, rows []FirmRow) error
	Close() error
}
