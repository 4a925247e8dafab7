package export

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/superclaims/claims-processor/constants"
	"github.com/superclaims/claims-processor/internal/entity"
)

func sampleResult() entity.ClaimResult {
	name := "Mary Philo"
	amount := decimal.NewFromInt(150000)
	return entity.ClaimResult{
		RequestID: "req-export",
		Documents: []entity.ExtractedRecord{
			{
				Filename:   "apollo_bill.pdf",
				Kind:       constants.KindBill,
				Confidence: 0.92,
				Method:     constants.MethodPrimary,
				Bill:       &entity.BillRecord{PatientName: &name, TotalAmount: &amount},
				Provenance: map[string]constants.ExtractionTier{
					"patient_name": constants.TierLLM,
					"total_amount": constants.TierPattern,
				},
			},
		},
		Validation: entity.ValidationResult{
			IsValid:          false,
			MissingDocuments: []constants.DocumentKind{constants.KindDischargeSummary},
			Discrepancies: []entity.Discrepancy{{
				Field:       "patient_name",
				Description: "Patient name differs across documents",
				Severity:    constants.SeverityHigh,
				Documents:   []string{"apollo_bill.pdf", "discharge.pdf"},
			}},
			Warnings: []string{"Bill is missing the bill date"},
		},
		Decision: entity.ClaimDecision{
			Status:     constants.StatusRejected,
			Reason:     "Required documents are missing.",
			Confidence: 1.0,
		},
		Errors:           []string{"scan.pdf: text acquisition failed"},
		ProcessingTimeMS: 1234,
	}
}

func TestService_ExportClaimXLSX(t *testing.T) {
	svc := NewService(nil)
	book, err := svc.ExportClaimXLSX(sampleResult())
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(book))
	if err != nil {
		t.Fatalf("workbook does not reopen: %v", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	want := map[string]bool{"Claim": false, "Findings": false}
	for _, s := range sheets {
		if s == "Sheet1" {
			t.Error("default Sheet1 left in workbook")
		}
		if _, ok := want[s]; ok {
			want[s] = true
		}
	}
	for s, seen := range want {
		if !seen {
			t.Errorf("sheet %q missing, have %v", s, sheets)
		}
	}

	if v, _ := f.GetCellValue("Claim", "B1"); v != "req-export" {
		t.Errorf("request id cell = %q", v)
	}
	if v, _ := f.GetCellValue("Claim", "B2"); v != "rejected" {
		t.Errorf("status cell = %q", v)
	}
	if v, _ := f.GetCellValue("Claim", "A9"); v != "apollo_bill.pdf" {
		t.Errorf("first document row = %q", v)
	}
	if v, _ := f.GetCellValue("Claim", "E9"); v != "Mary Philo" {
		t.Errorf("patient name cell = %q", v)
	}
	if v, _ := f.GetCellValue("Claim", "F9"); v != "150000" {
		t.Errorf("total amount cell = %q", v)
	}

	rows, err := f.GetRows("Findings")
	if err != nil {
		t.Fatal(err)
	}
	// header + missing doc + discrepancy + warning + processing error
	if len(rows) != 5 {
		t.Fatalf("findings rows = %d, want 5", len(rows))
	}
	kinds := map[string]bool{}
	for _, r := range rows[1:] {
		kinds[r[0]] = true
	}
	for _, k := range []string{"missing_document", "discrepancy", "warning", "processing_error"} {
		if !kinds[k] {
			t.Errorf("findings missing a %s row", k)
		}
	}
}

func TestService_ExportEmptyClaim(t *testing.T) {
	svc := NewService(nil)
	book, err := svc.ExportClaimXLSX(entity.ClaimResult{RequestID: "req-empty"})
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(book))
	if err != nil {
		t.Fatalf("workbook does not reopen: %v", err)
	}
	defer func() { _ = f.Close() }()
	if v, _ := f.GetCellValue("Claim", "B1"); v != "req-empty" {
		t.Errorf("request id cell = %q", v)
	}
}
