package constants

import "strings"

// DocumentKind is the closed set of document types the classifier may emit.
// Routing switches over this type must stay exhaustive; adding a kind means
// touching the classifier, the extractor registry, and the validator.
type DocumentKind string

const (
	KindBill             DocumentKind = "bill"
	KindDischargeSummary DocumentKind = "discharge_summary"
	KindIDCard           DocumentKind = "id_card"
	KindUnknown          DocumentKind = "unknown"
)

// RequiredKinds are the document kinds a claim must contain to be valid.
var RequiredKinds = []DocumentKind{KindBill, KindDischargeSummary}

// ParseDocumentKind maps a free string (e.g. from a model response) onto the
// enum, defaulting to KindUnknown for anything unrecognized.
func ParseDocumentKind(s string) DocumentKind {
	switch DocumentKind(strings.ToLower(strings.TrimSpace(s))) {
	case KindBill:
		return KindBill
	case KindDischargeSummary:
		return KindDischargeSummary
	case KindIDCard:
		return KindIDCard
	default:
		return KindUnknown
	}
}

// AllowedExtensions holds the file extensions accepted at intake.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
