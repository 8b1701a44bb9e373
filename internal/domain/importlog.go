package domain

// Import log status values.
const (
	ImportStatusSuccess = "success"
	ImportStatusPartial = "partial"
	ImportStatusFailed  = "failed"
)

// ImportLog is the persisted audit row for one import run. Errors are
// truncated by the repository caller before insert (first 10).
type ImportLog struct {
	Filename    string
	Status      string // success|partial|failed
	RowsTotal   int
	RowsSuccess int
	RowsFailed  int
	Errors      []string
}

// ImportReport is the per-run result returned to the caller. It has no
// identity of its own; the audit trail lives in ImportLog.
type ImportReport struct {
	Success      bool     `json:"success"`
	TotalRows    int      `json:"totalRows"`
	SuccessCount int      `json:"successCount"`
	FailedCount  int      `json:"failedCount"`
	Errors       []string `json:"errors"`
}

// Status derives the audit status: failed when nothing succeeded and
// there is at least one error (covers both all-rows-failed and
// batch-fatal parse errors, which carry no row counts), success when no
// row failed, otherwise partial.
func (r ImportReport) Status() string {
	switch {
	case r.SuccessCount == 0 && (r.FailedCount > 0 || len(r.Errors) > 0):
		return ImportStatusFailed
	case r.FailedCount == 0:
		return ImportStatusSuccess
	default:
		return ImportStatusPartial
	}
}
