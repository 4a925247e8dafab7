package extract

import "strings"

// Filename inference is the last cascade tier. It only ever fills
// identity-like fields; amounts and dates never come from a filename.
var hospitalFilenameHints = []struct {
	key  string
	name string
}{
	{"apollo", "Apollo Hospitals"},
	{"appolo", "Apollo Hospitals"},
	{"max", "Max Healthcare"},
	{"fortis", "Fortis Healthcare"},
	{"ganga ram", "Sir Ganga Ram Hospital"},
	{"gangaram", "Sir Ganga Ram Hospital"},
	{"aiims", "AIIMS"},
	{"medanta", "Medanta"},
	{"manipal", "Manipal Hospitals"},
}

// inferHospitalFromFilename maps a known hospital token in the filename to
// its canonical name. Empty string when no hint matches.
func inferHospitalFromFilename(filename string) string {
	lower := strings.ToLower(filename)
	for _, h := range hospitalFilenameHints {
		if strings.Contains(lower, h.key) {
			return h.name
		}
	}
	return ""
}
