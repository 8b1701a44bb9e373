package app

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/mitchell1972/cafesnearme/internal/domain"
)

// storedErrorLimit caps how many row errors are kept on the audit log row.
const storedErrorLimit = 10

// ImportService runs the spreadsheet -> normalized record pipeline. Rows
// are processed strictly sequentially; failures are per-row and never stop
// the batch, except storage errors, which are batch-fatal.
type ImportService struct {
	repo  domain.CafeRepository
	cache domain.Cache

	// OnRow is called once per processed row with "ok" or "failed".
	// Wired to the metrics counter at startup; defaults to a no-op so
	// the app layer carries no adapter import.
	OnRow func(result string)
}

func NewImportService(r domain.CafeRepository, cache domain.Cache) *ImportService {
	return &ImportService{repo: r, cache: cache, OnRow: func(string) {}}
}

// ImportFile dispatches on the file extension (.csv, .xlsx, .xls).
func (s *ImportService) ImportFile(ctx context.Context, filename string, data []byte) (domain.ImportReport, error) {
	switch strings.ToLower(path.Ext(filename)) {
	case ".csv":
		return s.ImportCSV(ctx, filename, data)
	case ".xlsx", ".xls":
		return s.ImportExcel(ctx, filename, data)
	default:
		return domain.ImportReport{}, fmt.Errorf("unsupported file type %q", path.Ext(filename))
	}
}

// ImportCSV ingests a header-keyed CSV. Data rows are numbered from 2 in
// error messages, matching how a spreadsheet tool shows the file.
func (s *ImportService) ImportCSV(ctx context.Context, filename string, data []byte) (domain.ImportReport, error) {
	rows, err := parseCSV(bytes.NewReader(data))
	if err != nil {
		return s.parseFailure(ctx, filename, err)
	}
	return s.importRows(ctx, filename, rows, 2)
}

// ImportExcel ingests the first sheet of an XLSX/XLS workbook.
func (s *ImportService) ImportExcel(ctx context.Context, filename string, data []byte) (domain.ImportReport, error) {
	rows, err := parseXLSX(data)
	if err != nil {
		return s.parseFailure(ctx, filename, err)
	}
	return s.importRows(ctx, filename, rows, 2)
}

// importRows is the shared sequential loop: map, upsert, record outcome.
// rowOffset is the source row number of the first data row.
func (s *ImportService) importRows(ctx context.Context, filename string, rows []Row, rowOffset int) (domain.ImportReport, error) {
	report := domain.ImportReport{TotalRows: len(rows), Errors: []string{}}

	for i, row := range rows {
		rowNum := i + rowOffset

		c, err := mapRow(row, rowNum)
		if err != nil {
			report.FailedCount++
			report.Errors = append(report.Errors, err.Error())
			s.OnRow("failed")
			continue
		}

		if err := s.repo.UpsertCafe(ctx, c); err != nil {
			// Storage failure, not a data problem: abort the batch.
			report.FailedCount++
			report.Errors = append(report.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
			s.writeAuditLog(ctx, filename, report)
			return report, fmt.Errorf("upsert cafe %q: %w", c.Slug, err)
		}

		report.SuccessCount++
		s.OnRow("ok")
		s.invalidateCafe(ctx, c)
	}

	report.Success = report.FailedCount == 0
	s.writeAuditLog(ctx, filename, report)

	log.Info().
		Str("file", filename).
		Int("total", report.TotalRows).
		Int("ok", report.SuccessCount).
		Int("failed", report.FailedCount).
		Msg("import completed")

	return report, nil
}

// parseFailure records a batch-fatal parse error: no rows processed, a
// single top-level error message.
func (s *ImportService) parseFailure(ctx context.Context, filename string, err error) (domain.ImportReport, error) {
	report := domain.ImportReport{Errors: []string{err.Error()}}
	s.writeAuditLog(ctx, filename, report)
	return report, nil
}

// writeAuditLog persists the run summary. Best-effort: a failed audit
// write must not turn a completed import into an error.
func (s *ImportService) writeAuditLog(ctx context.Context, filename string, report domain.ImportReport) {
	errs := report.Errors
	if len(errs) > storedErrorLimit {
		errs = errs[:storedErrorLimit]
	}
	l := domain.ImportLog{
		Filename:    filename,
		Status:      report.Status(),
		RowsTotal:   report.TotalRows,
		RowsSuccess: report.SuccessCount,
		RowsFailed:  report.FailedCount,
		Errors:      errs,
	}
	if err := s.repo.InsertImportLog(ctx, l); err != nil {
		log.Warn().Err(err).Str("file", filename).Msg("audit log write failed")
	}
}

// invalidateCafe evicts the caches a fresh upsert can make stale: the
// record itself, the city roll-up, and the first page of the city listing.
// Deeper listing pages age out on TTL.
func (s *ImportService) invalidateCafe(ctx context.Context, c domain.Cafe) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, "cafe:"+c.Slug)
	_ = s.cache.Del(ctx, "cities")
	_ = s.cache.Del(ctx, fmt.Sprintf("city:%s:%d:%d", strings.ToLower(c.City), defaultPageLimit, 0))
}
