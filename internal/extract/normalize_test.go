package extract

import (
	"strings"
	"testing"
)

func TestNormalizeOCRText_SpacedDigits(t *testing.T) {
	got := NormalizeOCRText("Bill No: 3 2 5 6 2 4")
	if !strings.Contains(got, "325624") {
		t.Errorf("spaced digits not collapsed: %q", got)
	}
}

func TestNormalizeOCRText_SpacedTitles(t *testing.T) {
	got := NormalizeOCRText("M r s . NANDI RAWAT")
	if !strings.Contains(got, "Mrs.") {
		t.Errorf("spaced title not repaired: %q", got)
	}
}

func TestNormalizeOCRText_SpacedName(t *testing.T) {
	got := NormalizeOCRText("N ANDI RAWAT")
	if !strings.Contains(got, "NANDI") {
		t.Errorf("split name not joined: %q", got)
	}
}

func TestNormalizeOCRText_CharacterSubstitutions(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Gender: Mate)", "Male"},
		{"Gender: Femate)", "Female"},
		{"KOSGI!_ Sharma", "KOSGI Sharma"},
		{"Name :  Value", "Name: Value"},
	}
	for _, tt := range tests {
		if got := NormalizeOCRText(tt.in); !strings.Contains(got, tt.want) {
			t.Errorf("NormalizeOCRText(%q) = %q, want substring %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeOCRText_Idempotent(t *testing.T) {
	in := "Patient Name: Mrs. Nandi Rawat Bill No: 325624"
	once := NormalizeOCRText(in)
	twice := NormalizeOCRText(once)
	if once != twice {
		t.Errorf("normalization not idempotent:\nonce:  %q\ntwice: %q", once, twice)
	}
}
