package recorder

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteRecorder(t *testing.T) {
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "run.db"), zerolog.Nop())
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, r.RecordPeriod(&PeriodSummary{
		RunID:        "run-1",
		Period:       3,
		ActiveFirms:  2,
		CreditDemand: 150,
		Loans:        100,
	}))
	require.NoError(t, r.RecordFirms("run-1", 3, []FirmRow{
		{FirmID: 1, Production: 10, Loan: 60, Stage: "done", Feasible: true},
		{FirmID: 2, Production: 0, Loan: 40, Stage: "production", Exited: true},
	}))

	var loans float64
	require.NoError(t, r.db.QueryRow(`SELECT loans FROM periods WHERE run_id = ? AND period = ?`, "run-1", 3).Scan(&loans))
	assert.Equal(t, 100.0, loans)

	var n int
	var total float64
	require.NoError(t, r.db.QueryRow(`SELECT COUNT(*), SUM(loan) FROM firm_periods WHERE run_id = ?`, "run-1").Scan(&n, &total))
	assert.Equal(t, 2, n)
	assert.Equal(t, 100.0, total)

	var exited int
	require.NoError(t, r.db.QueryRow(`SELECT exited FROM firm_periods WHERE firm_id = 2`).Scan(&exited))
	assert.Equal(t, 1, exited)
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	assert.NoError(t, r.RecordPeriod(&PeriodSummary{}))
	assert.NoError(t, r.RecordFirms("x", 1, nil))
	assert.NoError(t, r.Close())
}
