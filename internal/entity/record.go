package entity

import (
	"github.com/shopspring/decimal"

	"github.com/superclaims/claims-processor/constants"
)

// LineItem is one itemized charge on a bill.
type LineItem struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// BillRecord holds the structured fields of a hospital bill. Every field is
// independently nullable; a value is only ever set from the source text.
type BillRecord struct {
	HospitalName  *string          `json:"hospital_name"`
	TotalAmount   *decimal.Decimal `json:"total_amount"`
	DateOfService *Date            `json:"date_of_service"`
	PatientName   *string          `json:"patient_name"`
	BillNumber    *string          `json:"bill_number"`
	LineItems     []LineItem       `json:"line_items"`
}

// DischargeRecord holds the structured fields of a discharge summary.
type DischargeRecord struct {
	PatientName       *string  `json:"patient_name"`
	Diagnosis         *string  `json:"diagnosis"`
	AdmissionDate     *Date    `json:"admission_date"`
	DischargeDate     *Date    `json:"discharge_date"`
	TreatingPhysician *string  `json:"treating_physician"`
	Procedures        []string `json:"procedures"`
	Medications       []string `json:"medications"`
}

// IDCardRecord holds the structured fields of an insurance ID card.
type IDCardRecord struct {
	PolicyHolderName  *string `json:"policy_holder_name"`
	PolicyNumber      *string `json:"policy_number"`
	InsuranceProvider *string `json:"insurance_provider"`
	CoverageDetails   *string `json:"coverage_details"`
	ValidFrom         *Date   `json:"valid_from"`
	ValidUntil        *Date   `json:"valid_until"`
}

// ExtractedRecord is the tagged variant over the three record shapes.
// Exactly one of Bill/Discharge/IDCard is non-nil and matches Kind.
// Provenance maps field names to the cascade tier that filled them, which
// downstream confidence weighting relies on.
type ExtractedRecord struct {
	Filename   string                                    `json:"filename"`
	Kind       constants.DocumentKind                    `json:"document_type"`
	Confidence float64                                   `json:"confidence"`
	Reasoning  string                                    `json:"reasoning,omitempty"`
	Method     constants.ExtractionMethod                `json:"extraction_method"`
	Bill       *BillRecord                               `json:"bill,omitempty"`
	Discharge  *DischargeRecord                          `json:"discharge_summary,omitempty"`
	IDCard     *IDCardRecord                             `json:"id_card,omitempty"`
	Provenance map[string]constants.ExtractionTier       `json:"field_provenance,omitempty"`
	Errors     []string                                  `json:"processing_errors,omitempty"`
}

// PatientName returns the person name relevant for cross-document checks,
// regardless of record shape.
func (r *ExtractedRecord) PatientName() *string {
	switch r.Kind {
	case constants.KindBill:
		if r.Bill != nil {
			return r.Bill.PatientName
		}
	case constants.KindDischargeSummary:
		if r.Discharge != nil {
			return r.Discharge.PatientName
		}
	case constants.KindIDCard:
		if r.IDCard != nil {
			return r.IDCard.PolicyHolderName
		}
	}
	return nil
}
