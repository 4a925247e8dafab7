package entity

import (
	"github.com/shopspring/decimal"

	"github.com/superclaims/claims-processor/constants"
)

// ClaimDecision is the terminal artifact of a claim, created exactly once.
// Status, ApprovedAmount and Confidence are derived only from deterministic
// rules; the language model contributes prose, never the verdict.
type ClaimDecision struct {
	Status          constants.ClaimStatus `json:"status"`
	Reason          string                `json:"reason"`
	ApprovedAmount  *decimal.Decimal      `json:"approved_amount"`
	Confidence      float64               `json:"confidence"`
	DecisionFactors []string              `json:"decision_factors"`
}

// ClaimResult is the complete response for one processed claim.
type ClaimResult struct {
	RequestID        string            `json:"request_id"`
	Documents        []ExtractedRecord `json:"documents"`
	Validation       ValidationResult  `json:"validation"`
	Decision         ClaimDecision     `json:"claim_decision"`
	ProcessingTimeMS int64             `json:"processing_time_ms"`
	Errors           []string          `json:"errors,omitempty"`
}
