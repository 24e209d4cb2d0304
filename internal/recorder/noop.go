package recorder

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordPeriod(_ *PeriodSummary) error           { return nil }
func (n *NoopRecorder) RecordFirms(_ string, _ int, _ []FirmRow) error { return nil }
func (n *NoopRecorder) Close() error                                  { return nil }
