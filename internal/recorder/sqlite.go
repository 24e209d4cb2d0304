package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists simulation output to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log zerolog.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets dashboards read while a run writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log.With().Str("component", "recorder").Logger()}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS periods (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id            TEXT NOT NULL,
			period            INTEGER NOT NULL,
			timestamp         INTEGER NOT NULL,
			active_firms      INTEGER,
			exits             INTEGER,
			infeasible        INTEGER,
			rationed          INTEGER,
			credit_supply     REAL,
			credit_demand     REAL,
			loans             REAL,
			production        REAL,
			sales             REAL,
			investment        REAL,
			mean_liquid_asset REAL,
			mean_debt         REAL,
			tax_revenue       REAL,
			bank_equity       REAL,
			bank_debt         REAL,
			bad_debt          REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_periods_run ON periods(run_id, period)`,

		`CREATE TABLE IF NOT EXISTS firm_periods (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id          TEXT NOT NULL,
			period          INTEGER NOT NULL,
			firm_id         INTEGER NOT NULL,
			production      REAL,
			expansionary    REAL,
			substitutionary REAL,
			credit_demand   REAL,
			loan            REAL,
			liquid_asset    REAL,
			debt            REAL,
			stage           TEXT,
			feasible        INTEGER,
			exited          INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_firm_periods_run ON firm_periods(run_id, period, firm_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordPeriod(s *PeriodSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO periods
		(run_id, period, timestamp, active_firms, exits, infeasible, rationed,
		 credit_supply, credit_demand, loans, production, sales, investment,
		 mean_liquid_asset, mean_debt, tax_revenue, bank_equity, bank_debt, bad_debt)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		s.RunID, s.Period, time.Now().Unix(),
		s.ActiveFirms, s.Exits, s.Infeasible, s.Rationed,
		s.CreditSupply, s.CreditDemand, s.Loans,
		s.Production, s.Sales, s.Investment,
		s.MeanLiquidAsset, s.MeanDebt,
		s.TaxRevenue, s.BankEquity, s.BankDebt, s.BadDebt,
	)
	return err
}

// RecordFirms writes all rows of a period in one transaction.
func (r *SQLiteRecorder) RecordFirms(runID string, period int, rows []FirmRow) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO firm_periods
		(run_id, period, firm_id, production, expansionary, substitutionary,
		 credit_demand, loan, liquid_asset, debt, stage, feasible, exited)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.Exec(runID, period, row.FirmID,
			row.Production, row.Expansionary, row.Substitutionary,
			row.CreditDemand, row.Loan, row.LiquidAsset, row.Debt,
			row.Stage, row.Feasible, row.Exited,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert firm %d: %w", row.FirmID, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
