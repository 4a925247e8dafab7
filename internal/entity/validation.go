package entity

import (
	"github.com/superclaims/claims-processor/constants"
)

// Discrepancy is one cross-document inconsistency found during validation.
type Discrepancy struct {
	Field       string                   `json:"field"`
	Description string                   `json:"description"`
	Severity    constants.Severity       `json:"severity"`
	Documents   []string                 `json:"documents_involved,omitempty"`
}

// ValidationResult is the outcome of cross-document validation for one
// claim. Never mutated after creation.
type ValidationResult struct {
	IsValid          bool                     `json:"is_valid"`
	MissingDocuments []constants.DocumentKind `json:"missing_documents"`
	Discrepancies    []Discrepancy            `json:"discrepancies"`
	Warnings         []string                 `json:"warnings"`
	Summary          string                   `json:"validation_summary"`
}

// HighSeverity reports whether any discrepancy is graded high.
func (v *ValidationResult) HighSeverity() bool {
	for _, d := range v.Discrepancies {
		if d.Severity == constants.SeverityHigh {
			return true
		}
	}
	return false
}
