package recommend

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"hiphop_to_rap", "hiphop", "rap"},
		{"hyphenated_hiphop", "hip-hop", "rap"},
		{"rnb", "rnb", "r-n-b"},
		{"passthrough", "jazz", "jazz"},
		{"passthrough_rock", "rock", "rock"},
		{"uppercase", "HipHop", "rap"},
		{"whitespace", "  metal ", "metal"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.raw); got != tt.want {
				t.Errorf("Normalize(%q) = %q; want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"hiphop", "rap", "jazz", "rnb", "r-n-b", "classical", ""}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}
