package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/superclaims/claims-processor/constants"
	"github.com/superclaims/claims-processor/internal/entity"
)

// Service produces XLSX bytes for claim audit exports: one summary sheet of
// extracted records plus a findings sheet of discrepancies and warnings.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// ExportClaimXLSX returns an XLSX workbook (as bytes) for one processed claim.
func (s *Service) ExportClaimXLSX(result entity.ClaimResult) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	if err := s.writeSummarySheet(f, result); err != nil {
		return nil, err
	}
	if err := s.writeFindingsSheet(f, result); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"request_id", result.RequestID,
		"documents", len(result.Documents),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func (s *Service) writeSummarySheet(f *excelize.File, result entity.ClaimResult) error {
	const sheet = "Claim"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	// Sheet1 is excelize's default; the workbook only needs our two sheets.
	_ = f.DeleteSheet("Sheet1")

	write := func(col, row int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}

	write(1, 1, "Request ID")
	write(2, 1, result.RequestID)
	write(1, 2, "Status")
	write(2, 2, string(result.Decision.Status))
	write(1, 3, "Confidence")
	write(2, 3, result.Decision.Confidence)
	write(1, 4, "Approved Amount")
	if result.Decision.ApprovedAmount != nil {
		write(2, 4, result.Decision.ApprovedAmount.String())
	}
	write(1, 5, "Reason")
	write(2, 5, truncate(result.Decision.Reason, 300))
	write(1, 6, "Processing Time (ms)")
	write(2, 6, result.ProcessingTimeMS)

	headers := []string{"Filename", "Document Type", "Confidence", "Acquisition", "Patient Name", "Total Amount", "Fields Filled", "Errors"}
	const headerRow = 8
	for i, h := range headers {
		write(i+1, headerRow, h)
	}

	row := headerRow + 1
	for _, rec := range result.Documents {
		write(1, row, rec.Filename)
		write(2, row, string(rec.Kind))
		write(3, row, rec.Confidence)
		write(4, row, string(rec.Method))
		if n := rec.PatientName(); n != nil {
			write(5, row, *n)
		}
		if rec.Kind == constants.KindBill && rec.Bill != nil && rec.Bill.TotalAmount != nil {
			write(6, row, rec.Bill.TotalAmount.String())
		}
		write(7, row, len(rec.Provenance))
		write(8, row, len(rec.Errors))
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 32)
	_ = f.SetColWidth(sheet, "B", "B", 20)
	_ = f.SetColWidth(sheet, "C", "D", 14)
	_ = f.SetColWidth(sheet, "E", "E", 26)
	_ = f.SetColWidth(sheet, "F", "F", 16)
	return nil
}

func (s *Service) writeFindingsSheet(f *excelize.File, result entity.ClaimResult) error {
	const sheet = "Findings"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	write := func(col, row int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}

	headers := []string{"Type", "Field", "Severity", "Description", "Documents"}
	for i, h := range headers {
		write(i+1, 1, h)
	}

	row := 2
	for _, kind := range result.Validation.MissingDocuments {
		write(1, row, "missing_document")
		write(2, row, string(kind))
		write(3, row, string(constants.SeverityHigh))
		write(4, row, fmt.Sprintf("Required document not present: %s", kind))
		row++
	}
	for _, d := range result.Validation.Discrepancies {
		write(1, row, "discrepancy")
		write(2, row, d.Field)
		write(3, row, string(d.Severity))
		write(4, row, truncate(d.Description, 300))
		write(5, row, joinTruncated(d.Documents, 120))
		row++
	}
	for _, w := range result.Validation.Warnings {
		write(1, row, "warning")
		write(3, row, string(constants.SeverityLow))
		write(4, row, truncate(w, 300))
		row++
	}
	for _, e := range result.Errors {
		write(1, row, "processing_error")
		write(4, row, truncate(e, 300))
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 18)
	_ = f.SetColWidth(sheet, "B", "C", 16)
	_ = f.SetColWidth(sheet, "D", "D", 64)
	_ = f.SetColWidth(sheet, "E", "E", 40)
	return nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}

func joinTruncated(items []string, n int) string {
	out := ""
	for i, it := range items {
		if i > 0 {
			out += ", "
		}
		out += it
	}
	return truncate(out, n)
}
