package validate

import "testing"

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Mrs. Nandi Rawat", "nandi rawat"},
		{"DR. A. Kumar", "a. kumar"},
		{"  mary   philo  ", "mary philo"},
		{"Miss Jane Doe", "jane doe"},
		{"Rawat", "rawat"},
	}
	for _, tt := range tests {
		if got := normalizeName(tt.in); got != tt.want {
			t.Errorf("normalizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNameDistance(t *testing.T) {
	if d := nameDistance("Mrs. Nandi Rawat", "NANDI RAWAT"); d != 0 {
		t.Errorf("honorific-only difference distance = %d, want 0", d)
	}
	if d := nameDistance("Mary Philo", "Mary Philoo"); d != 1 {
		t.Errorf("single-char drift distance = %d, want 1", d)
	}
	if d := nameDistance("Mary Philo", "Rajesh Kumar"); d <= 3 {
		t.Errorf("unrelated names distance = %d, want > 3", d)
	}
}
