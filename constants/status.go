package constants

// ClaimStatus is the terminal verdict on a claim.
type ClaimStatus string

const (
	StatusApproved      ClaimStatus = "approved"
	StatusRejected      ClaimStatus = "rejected"
	StatusPendingReview ClaimStatus = "pending_review"
)

// Severity grades a cross-document discrepancy. High severity blocks the
// claim; medium and low are recorded but never flip is_valid on their own.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// ExtractionTier identifies which cascade tier produced a field value.
type ExtractionTier string

const (
	TierLLM      ExtractionTier = "llm"
	TierPattern  ExtractionTier = "pattern"
	TierFilename ExtractionTier = "filename_inference"
)

// ExtractionMethod records how a document's text was acquired.
type ExtractionMethod string

const (
	MethodPrimary ExtractionMethod = "primary"
	MethodOCR     ExtractionMethod = "ocr"
	MethodFailed  ExtractionMethod = "failed"
)
