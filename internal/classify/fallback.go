package classify

import (
	"fmt"
	"strings"

	"github.com/superclaims/claims-processor/constants"
	"github.com/superclaims/claims-processor/internal/entity"
)

// Keyword scorecards for the heuristic path. Content keywords outrank
// filename hints because scanned uploads often carry meaningless names.
var (
	billKeywords = []string{
		"bill no", "invoice", "billing", "gross amount",
		"net amount", "total amount", "payment", "receipt",
	}
	dischargeKeywords = []string{
		"discharge summary", "diagnosis", "admission date", "discharge date",
		"surgeon", "procedure", "medication", "treatment",
	}

	billFilenameHints      = []string{"bill", "invoice", "receipt", "payment"}
	dischargeFilenameHints = []string{"discharge", "summary", "report", "medical"}
	idCardFilenameHints    = []string{"card", "id", "insurance", "policy"}
)

const (
	keywordMatchMin   = 3
	fallbackScanChars = 5000
)

// fallbackClassification labels a document without the model. Content keyword
// counts are tried first, then filename hints, then unknown.
func fallbackClassification(filename, text string) entity.ClassifiedDocument {
	nameLower := strings.ToLower(filename)
	contentLower := strings.ToLower(text)
	if len(contentLower) > fallbackScanChars {
		contentLower = contentLower[:fallbackScanChars]
	}

	billCount := countKeywords(contentLower, billKeywords)
	dischargeCount := countKeywords(contentLower, dischargeKeywords)

	var (
		kind       constants.DocumentKind
		confidence float64
		reasoning  string
	)
	switch {
	case billCount >= keywordMatchMin:
		kind, confidence = constants.KindBill, 0.7
		reasoning = fmt.Sprintf("Found %d billing keywords in content", billCount)
	case dischargeCount >= keywordMatchMin:
		kind, confidence = constants.KindDischargeSummary, 0.7
		reasoning = fmt.Sprintf("Found %d discharge keywords in content", dischargeCount)
	case containsAny(nameLower, billFilenameHints):
		kind, confidence = constants.KindBill, 0.6
		reasoning = "Filename contains billing keywords"
	case containsAny(nameLower, dischargeFilenameHints):
		kind, confidence = constants.KindDischargeSummary, 0.6
		reasoning = "Filename contains discharge keywords"
	case containsAny(nameLower, idCardFilenameHints):
		kind, confidence = constants.KindIDCard, 0.6
		reasoning = "Filename contains ID card keywords"
	default:
		kind, confidence = constants.KindUnknown, 0.3
		reasoning = "No clear indicators found in filename or content"
	}

	return entity.ClassifiedDocument{
		Filename:   filename,
		Kind:       kind,
		Confidence: confidence,
		Reasoning:  reasoning,
	}
}

func countKeywords(haystack string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(haystack, kw) {
			n++
		}
	}
	return n
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
