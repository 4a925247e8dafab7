package extract

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Pattern tier for bill fields. Patterns are ordered by specificity; the
// first match wins for everything except amounts, where the largest
// plausible value near a total-style label wins.

var hospitalTextPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(Apollo\s+Hospitals?(?:\s+[\w\s]+)?)`),
	regexp.MustCompile(`(?i)(Max\s+(?:Healthcare|Hospital|Super\s+Speciality\s+Hospital)(?:\s+[\w\s]+)?)`),
	regexp.MustCompile(`(?i)(Fortis\s+(?:Healthcare|Hospital)(?:\s+[\w\s]+)?)`),
	regexp.MustCompile(`(?i)(Sir\s+Ganga\s+Ram\s+Hospital)`),
	regexp.MustCompile(`(?i)(AIIMS(?:\s+[\w\s]+)?)`),
	regexp.MustCompile(`(?i)(Medanta(?:\s+[\w\s]+)?)`),
	regexp.MustCompile(`(?i)(Manipal\s+Hospitals?(?:\s+[\w\s]+)?)`),
}

var amountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?im)payor\s*amount\s*[:\-]?\s*(?:rs\.?|inr|₹)?\s*([0-9,]+\.?[0-9]*)`),
	regexp.MustCompile(`(?im)net\s*(?:bill\s*)?amount\s*[:\-]?\s*(?:rs\.?|inr|₹)?\s*([0-9,]+\.?[0-9]*)`),
	regexp.MustCompile(`(?im)net\s*payable\s*amount?\s*[:\-]?\s*(?:rs\.?|inr|₹)?\s*\(?\s*([0-9,]+\.?[0-9]*)\s*\)?`),
	regexp.MustCompile(`(?im)bill\s*amount\s*[:\-]?\s*(?:rs\.?|inr|₹)?\s*([0-9,]+\.?[0-9]*)`),
	regexp.MustCompile(`(?im)(?:total|final)\s*amount\s*[:\-]?\s*(?:rs\.?|inr|₹)?\s*([0-9,]+\.?[0-9]*)`),
	regexp.MustCompile(`(?im)grand\s*total\s*[:\-]?\s*(?:rs\.?|inr|₹)?\s*([0-9,]+\.?[0-9]*)`),
	regexp.MustCompile(`(?im)amount\s*(?:payable|due)\s*[:\-]?\s*(?:rs\.?|inr|₹)?\s*([0-9,]+\.?[0-9]*)`),
}

var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)patient\s*name\s*[:\-]?\s*((?:Mr|Mrs|Ms|Dr)\.?\s+[A-Z][a-z]+(?:\s+[A-Z][a-z]+){0,2})(?:\s+(?:Bill|UHID|Age|Gender|\d))`),
	regexp.MustCompile(`(?i)patient\s*name\s*[:\-]?\s*((?:Mr|Mrs|Ms|Dr)\.?\s+[A-Z][a-z]+(?:\s+[A-Z][a-z]+){0,3})`),
	regexp.MustCompile(`(?i)patient\s*name\s*[:\-]?\s*([A-Z][a-z]+\s+[A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)`),
}

var nameSuffixTrim = regexp.MustCompile(`(?i)\s+(Bill|UHID|Age|Gender|Episode|Admission).*$`)

var billDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d{1,2}[-/](?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[-/]\d{2,4})`),
	regexp.MustCompile(`(?i)(?:bill|invoice)\s*date\s*[:\-]?\s*(\d{1,2}[-/]\d{1,2}[-/]\d{2,4})`),
	regexp.MustCompile(`(?i)date\s*of\s*(?:service|admission|bill)\s*[:\-]?\s*(\d{1,2}[-/]\d{1,2}[-/]\d{2,4})`),
	regexp.MustCompile(`(?i)(?:service|admission)\s*date\s*[:\-]?\s*(\d{1,2}[-/]\d{1,2}[-/]\d{2,4})`),
	regexp.MustCompile(`(?i)admitted\s*(?:on)?\s*[:\-]?\s*(\d{1,2}[-/]\d{1,2}[-/]\d{2,4})`),
	regexp.MustCompile(`(?i)discharge\s*(?:date|on)?\s*[:\-]?\s*(\d{1,2}[-/]\d{1,2}[-/]\d{2,4})`),
}

var billNumberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:bill|invoice|receipt)\s*(?:no|number|#)\s*[:\-]?\s*([A-Z0-9\-/]+)`),
	regexp.MustCompile(`(?i)IPID\s*[:\-]?\s*([A-Z0-9\-/]+)`),
}

var admissionDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)admission\s*date\s*[:\-]\s*(\d{1,2}[-/](?:[A-Za-z]{3}|\d{1,2})[-/]\d{2,4})`),
	regexp.MustCompile(`(?i)admitted\s*on\s*[:\-]?\s*(\d{1,2}[-/](?:[A-Za-z]{3}|\d{1,2})[-/]\d{2,4})`),
	regexp.MustCompile(`(?i)date\s*of\s*admission\s*[:\-]\s*(\d{1,2}[-/](?:[A-Za-z]{3}|\d{1,2})[-/]\d{2,4})`),
}

var dischargeDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)discharge\s*date\s*[:\-]\s*(\d{1,2}[-/](?:[A-Za-z]{3}|\d{1,2})[-/]\d{2,4})`),
	regexp.MustCompile(`(?i)discharged\s*on\s*[:\-]?\s*(\d{1,2}[-/](?:[A-Za-z]{3}|\d{1,2})[-/]\d{2,4})`),
	regexp.MustCompile(`(?i)date\s*of\s*discharge\s*[:\-]\s*(\d{1,2}[-/](?:[A-Za-z]{3}|\d{1,2})[-/]\d{2,4})`),
}

var diagnosisPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)final\s*diagnosis\s*[:\-]\s*([^\n]{10,200})`),
	regexp.MustCompile(`(?i)primary\s*diagnosis\s*[:\-]\s*([^\n]{10,200})`),
	regexp.MustCompile(`(?i)diagnosis\s*[:\-]\s*([^\n]{10,200})`),
}

var dischargeNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:patient\s*name|name)\s*[:\-]\s*([A-Z][A-Za-z\s.]{3,50}?)(?:\s+(?:age|sex|gender|male|female|yr|\d)|\n)`),
	regexp.MustCompile(`(?i)\b(?:mr|mrs|ms|miss)\.?\s+([A-Z][A-Z\s]{5,40})(?:\s+(?:age|sex|male|female|yr|\d)|\n)`),
}

// Amounts under this are line items or copay rows, not bill totals.
var minPlausibleTotal = decimal.NewFromInt(1000)

func firstMatch(text string, patterns []*regexp.Regexp) string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// matchHospitalName finds a known hospital name in document text.
func matchHospitalName(text string) string {
	for _, re := range hospitalTextPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.Join(strings.Fields(m[1]), " ")
		}
	}
	return ""
}

// matchTotalAmount scans labelled-amount patterns in priority order. Within
// the first pattern that matches, the largest plausible value wins — totals
// repeat across pages and the final one is the grand total.
func matchTotalAmount(text string) *decimal.Decimal {
	for _, re := range amountPatterns {
		var best *decimal.Decimal
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			raw := strings.NewReplacer(",", "", "₹", "", "(", "", ")", "").Replace(m[1])
			amt, err := decimal.NewFromString(strings.TrimSpace(raw))
			if err != nil || amt.LessThan(minPlausibleTotal) {
				continue
			}
			if best == nil || amt.GreaterThan(*best) {
				best = &amt
			}
		}
		if best != nil {
			return best
		}
	}
	return nil
}

func matchPatientName(text string) string {
	name := firstMatch(text, namePatterns)
	if name == "" {
		return ""
	}
	return strings.TrimSpace(nameSuffixTrim.ReplaceAllString(name, ""))
}
