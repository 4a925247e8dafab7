package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/superclaims/claims-processor/constants"
	"github.com/superclaims/claims-processor/internal/llm"
)

type fakeCompleter struct {
	content string
	err     error
	calls   int
}

func (f *fakeCompleter) Complete(_ context.Context, _ llm.Request) (llm.Response, error) {
	f.calls++
	if f.err != nil {
		return llm.Response{}, f.err
	}
	return llm.Response{Content: f.content}, nil
}

func TestBillExtractor_ModelTierFillsFields(t *testing.T) {
	completer := &fakeCompleter{content: `{
		"hospital_name": "Apollo Hospitals",
		"total_amount": 332602.59,
		"date_of_service": "2025-02-03",
		"patient_name": "Mrs. Nandi Rawat",
		"bill_number": "IPID-325624",
		"line_items": [{"description": "Room Rent", "amount": 45000}]
	}`}
	e := NewBillExtractor(completer, nil)

	rec, prov, errs := e.Extract(context.Background(), "INVOICE Patient Name: Mrs. Nandi Rawat", "apollo_bill.pdf")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if rec.HospitalName == nil || *rec.HospitalName != "Apollo Hospitals" {
		t.Errorf("hospital_name = %v", rec.HospitalName)
	}
	if rec.TotalAmount == nil || !rec.TotalAmount.Equal(decimal.RequireFromString("332602.59")) {
		t.Errorf("total_amount = %v", rec.TotalAmount)
	}
	if rec.DateOfService == nil || rec.DateOfService.String() != "2025-02-03" {
		t.Errorf("date_of_service = %v", rec.DateOfService)
	}
	if len(rec.LineItems) != 1 || rec.LineItems[0].Description != "Room Rent" {
		t.Errorf("line_items = %+v", rec.LineItems)
	}
	for _, field := range []string{"hospital_name", "total_amount", "date_of_service", "patient_name", "bill_number", "line_items"} {
		if prov[field] != constants.TierLLM {
			t.Errorf("provenance[%s] = %s, want llm", field, prov[field])
		}
	}
}

func TestBillExtractor_PartialModelResponseKeepsFields(t *testing.T) {
	// The model may omit keys it found nothing for; the ones it did return
	// must survive, with the omissions left to the later tiers.
	completer := &fakeCompleter{content: `{
		"hospital_name": "Apollo Hospitals",
		"total_amount": 332602.59,
		"date_of_service": "2025-02-03",
		"patient_name": "Mrs. Nandi Rawat"
	}`}
	e := NewBillExtractor(completer, nil)

	rec, prov, errs := e.Extract(context.Background(), "INVOICE Patient Name: Mrs. Nandi Rawat", "apollo_bill.pdf")
	if len(errs) != 0 {
		t.Fatalf("partial response recorded errors: %v", errs)
	}
	if rec.HospitalName == nil || *rec.HospitalName != "Apollo Hospitals" {
		t.Errorf("hospital_name = %v", rec.HospitalName)
	}
	if rec.TotalAmount == nil || !rec.TotalAmount.Equal(decimal.RequireFromString("332602.59")) {
		t.Errorf("total_amount = %v", rec.TotalAmount)
	}
	for _, field := range []string{"hospital_name", "total_amount", "date_of_service", "patient_name"} {
		if prov[field] != constants.TierLLM {
			t.Errorf("provenance[%s] = %s, want llm", field, prov[field])
		}
	}
	if rec.BillNumber != nil {
		t.Errorf("bill_number = %v, want nil for an omitted key with no pattern match", rec.BillNumber)
	}
	if tier, ok := prov["bill_number"]; ok {
		t.Errorf("provenance[bill_number] = %s, want unset", tier)
	}
}

func TestBillExtractor_PatternTierOnModelFailure(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("model unavailable")}
	e := NewBillExtractor(completer, nil)

	text := `Apollo Hospitals
Patient Name : Mrs. Mary Philo Age: 52
Bill No: INV-2025-001
Net Payable Amount : Rs. 1,50,000
Bill Date: 03-Feb-2025`
	rec, prov, errs := e.Extract(context.Background(), text, "scan001.pdf")

	if len(errs) != 1 {
		t.Fatalf("want one recorded error, got %v", errs)
	}
	if rec.TotalAmount == nil || !rec.TotalAmount.Equal(decimal.NewFromInt(150000)) {
		t.Errorf("total_amount = %v, want 150000", rec.TotalAmount)
	}
	if rec.PatientName == nil || *rec.PatientName != "Mrs. Mary Philo" {
		t.Errorf("patient_name = %v", rec.PatientName)
	}
	if rec.BillNumber == nil || *rec.BillNumber != "INV-2025-001" {
		t.Errorf("bill_number = %v", rec.BillNumber)
	}
	if prov["total_amount"] != constants.TierPattern {
		t.Errorf("provenance[total_amount] = %s, want pattern", prov["total_amount"])
	}
}

func TestBillExtractor_FilenameTierIdentityOnly(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("model unavailable")}
	e := NewBillExtractor(completer, nil)

	// No hospital, amount or date anywhere in the text.
	rec, prov, _ := e.Extract(context.Background(), "some unstructured scan output noise", "fortis_bill_scan.pdf")

	if rec.HospitalName == nil || *rec.HospitalName != "Fortis Healthcare" {
		t.Fatalf("hospital_name = %v, want Fortis Healthcare", rec.HospitalName)
	}
	if prov["hospital_name"] != constants.TierFilename {
		t.Errorf("provenance[hospital_name] = %s, want filename_inference", prov["hospital_name"])
	}
	if rec.TotalAmount != nil {
		t.Errorf("filename tier must never fill amounts, got %s", rec.TotalAmount)
	}
	if rec.DateOfService != nil {
		t.Errorf("filename tier must never fill dates, got %s", rec.DateOfService)
	}
}

func TestBillExtractor_TooLittleText(t *testing.T) {
	completer := &fakeCompleter{}
	e := NewBillExtractor(completer, nil)

	rec, prov, errs := e.Extract(context.Background(), "   \n ", "apollo.pdf")
	if completer.calls != 0 {
		t.Error("model called despite empty text")
	}
	if rec.HospitalName != nil || len(prov) != 0 || len(errs) != 0 {
		t.Errorf("empty input produced data: rec=%+v prov=%v errs=%v", rec, prov, errs)
	}
}

func TestBillExtractor_MalformedModelOutputFallsThrough(t *testing.T) {
	completer := &fakeCompleter{content: `{"totally": "wrong shape"}`}
	e := NewBillExtractor(completer, nil)

	text := "Fortis Hospital\nGrand Total: 25,000"
	rec, _, errs := e.Extract(context.Background(), text, "claim.pdf")
	if len(errs) != 1 {
		t.Fatalf("schema-invalid output should record an error, got %v", errs)
	}
	if rec.TotalAmount == nil || !rec.TotalAmount.Equal(decimal.NewFromInt(25000)) {
		t.Errorf("pattern tier did not rescue total: %v", rec.TotalAmount)
	}
}
