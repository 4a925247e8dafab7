package extract

import "testing"

func TestParseDate_KnownFormats(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2025-02-03", "2025-02-03"},
		{"03-Feb-2025", "2025-02-03"},
		{"03/Feb/2025", "2025-02-03"},
		{"03-Feb-25", "2025-02-03"},
		{"12/25/2025", "2025-12-25"},
		{"25/12/2025", "2025-12-25"},
		{"25-12-2025", "2025-12-25"},
		{"  2025-02-03  ", "2025-02-03"},
	}
	for _, tt := range tests {
		got := ParseDate(tt.in)
		if got == nil {
			t.Errorf("ParseDate(%q) = nil, want %s", tt.in, tt.want)
			continue
		}
		if got.String() != tt.want {
			t.Errorf("ParseDate(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParseDate_FirstMatchWins(t *testing.T) {
	// Ambiguous numeric dates resolve via the fixed layout order:
	// month/day before day/month.
	got := ParseDate("03/02/2025")
	if got == nil {
		t.Fatal("ParseDate returned nil for ambiguous date")
	}
	if got.String() != "2025-03-02" {
		t.Errorf("ambiguous date resolved to %s, want 2025-03-02", got)
	}
}

func TestParseDate_Unparseable(t *testing.T) {
	for _, in := range []string{"", "not a date", "2025", "32/13/2025", "Episode 12/345"} {
		if got := ParseDate(in); got != nil {
			t.Errorf("ParseDate(%q) = %s, want nil", in, got)
		}
	}
}
