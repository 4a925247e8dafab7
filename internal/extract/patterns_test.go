package extract

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestMatchTotalAmount_PrefersLabelledTotal(t *testing.T) {
	text := `
Consultation Charges    5000.00
Room Rent               45000.00
Net Payable Amount : Rs. 3,32,602.59
`
	got := matchTotalAmount(text)
	if got == nil {
		t.Fatal("no amount matched")
	}
	want := decimal.RequireFromString("332602.59")
	if !got.Equal(want) {
		t.Errorf("matchTotalAmount = %s, want %s", got, want)
	}
}

func TestMatchTotalAmount_LargestWhenRepeated(t *testing.T) {
	text := `
Total Amount: 12000
Total Amount: 98000
`
	got := matchTotalAmount(text)
	if got == nil {
		t.Fatal("no amount matched")
	}
	if !got.Equal(decimal.NewFromInt(98000)) {
		t.Errorf("matchTotalAmount = %s, want 98000", got)
	}
}

func TestMatchTotalAmount_IgnoresImplausiblySmall(t *testing.T) {
	if got := matchTotalAmount("Total Amount: 500"); got != nil {
		t.Errorf("amount below the plausibility floor matched: %s", got)
	}
	if got := matchTotalAmount("no amounts here"); got != nil {
		t.Errorf("matched amount in text without one: %s", got)
	}
}

func TestMatchPatientName(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Patient Name : Mrs. Mary Philo Age: 52", "Mrs. Mary Philo"},
		{"Patient Name: Mary Philo\n", "Mary Philo"},
		{"Patient Name : Mr. John Doe UHID 1234", "Mr. John Doe"},
	}
	for _, tt := range tests {
		if got := matchPatientName(tt.text); got != tt.want {
			t.Errorf("matchPatientName(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestMatchHospitalName(t *testing.T) {
	if got := matchHospitalName("SIR GANGA RAM HOSPITAL\nNew Delhi"); got == "" {
		t.Error("known hospital in header not matched")
	}
	if got := matchHospitalName("Some Unknown Clinic"); got != "" {
		t.Errorf("unexpected hospital match: %q", got)
	}
}

func TestInferHospitalFromFilename(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"apollo_hospital_bill_12345.pdf", "Apollo Hospitals"},
		{"max health.pdf", "Max Healthcare"},
		{"FORTIS-claim.pdf", "Fortis Healthcare"},
		{"gangaram_discharge.pdf", "Sir Ganga Ram Hospital"},
		{"document_001.pdf", ""},
	}
	for _, tt := range tests {
		if got := inferHospitalFromFilename(tt.filename); got != tt.want {
			t.Errorf("inferHospitalFromFilename(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}

func TestMatchLineItems(t *testing.T) {
	text := `
Consultation Charges      1500.00
Room Rent (3 days)        13,500.00
Grand Total               15000.00
`
	items := matchLineItems(text)
	if len(items) != 2 {
		t.Fatalf("got %d line items, want 2: %+v", len(items), items)
	}
	if items[0].Description != "Consultation Charges" {
		t.Errorf("first item description = %q", items[0].Description)
	}
	if !items[1].Amount.Equal(decimal.RequireFromString("13500.00")) {
		t.Errorf("second item amount = %s, want 13500.00", items[1].Amount)
	}
}
