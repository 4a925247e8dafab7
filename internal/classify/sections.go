package classify

import (
	"strings"

	"github.com/superclaims/claims-processor/constants"
	"github.com/superclaims/claims-processor/internal/entity"
)

// Hospitals routinely append the discharge summary to the bill PDF. These
// markers decide whether a bill-labelled document also carries one.
var sectionKeywords = []string{
	"discharge summary", "diagnosis:", "admission date",
	"discharge date", "surgery", "procedure done",
	"treatment", "surgeon", "anesthesiologist",
}

const secondarySectionConfidence = 0.85

// attachSections populates doc.Sections. Every document gets at least its
// primary (kind, text) pair; a bill whose text carries enough discharge
// markers additionally gets a discharge_summary section so the extractor
// fan-out processes both.
func attachSections(doc *entity.ClassifiedDocument, text string, keywordMin int) {
	doc.Sections = []entity.Section{{Kind: doc.Kind, Text: text}}

	if doc.Kind != constants.KindBill {
		return
	}

	textLower := strings.ToLower(text)
	found := 0
	for _, kw := range sectionKeywords {
		if strings.Contains(textLower, kw) {
			found++
		}
	}
	if found < keywordMin {
		return
	}

	doc.HasAdditionalSection = true

	// Both sections keep the full text when no clean boundary exists; the
	// extractors tolerate surrounding noise better than a bad split.
	billText, dischargeText := splitAtBoundary(text, textLower)
	doc.Sections = []entity.Section{
		{Kind: constants.KindBill, Text: billText},
		{Kind: constants.KindDischargeSummary, Text: dischargeText},
	}
}

// splitAtBoundary cuts at an explicit "discharge summary" heading when one
// appears past the opening of the document.
func splitAtBoundary(text, textLower string) (bill, discharge string) {
	idx := strings.Index(textLower, "discharge summary")
	if idx > len(text)/4 {
		return text[:idx], text[idx:]
	}
	return text, text
}

// SecondarySectionConfidence is the confidence recorded for records produced
// from a detected secondary section rather than the primary label.
func SecondarySectionConfidence() float64 { return secondarySectionConfidence }
