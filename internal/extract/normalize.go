package extract

import "regexp"

// Scanned PDFs come back from OCR with characters spread apart
// ("M r s . N ANDI" for "Mrs. NANDI") and a handful of recurring
// misrecognitions. These passes repair the text before any tier runs.
var spacingFixes = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`(\d)\s+(\d)`), "$1$2"},
	{regexp.MustCompile(`([A-Z])\s+([a-z])\s+([a-z])`), "$1$2$3"},
	{regexp.MustCompile(`([A-Z])\s+([A-Z])\s+([A-Z])`), "$1$2$3"},
	{regexp.MustCompile(`([A-Za-z])\s+([A-Za-z])\s+([A-Za-z])\s*\.`), "$1$2$3."},
	{regexp.MustCompile(`([A-Z])\s+([A-Z][a-z])`), "$1$2"},
}

var artifactFixes = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`Mate\)`), "Male"},
	{regexp.MustCompile(`Femate\)`), "Female"},
	{regexp.MustCompile(`(\w+)!_\s+`), "$1 "},
	{regexp.MustCompile(`!_`), ""},
	{regexp.MustCompile(`\s+\)`), ")"},
	{regexp.MustCompile(`\(\s+`), "("},
	{regexp.MustCompile(`\s+:`), ":"},
	{regexp.MustCompile(`:\s{2,}`), ": "},
}

// NormalizeOCRText repairs common OCR spacing and substitution artifacts.
// Idempotent; safe to apply to cleanly extracted text too.
func NormalizeOCRText(text string) string {
	// Digit runs need a loop: "3 2 5 6" collapses pairwise.
	prev := ""
	for prev != text {
		prev = text
		text = spacingFixes[0].re.ReplaceAllString(text, spacingFixes[0].repl)
	}
	for _, f := range spacingFixes[1:] {
		text = f.re.ReplaceAllString(text, f.repl)
	}
	for _, f := range artifactFixes {
		text = f.re.ReplaceAllString(text, f.repl)
	}
	return text
}
