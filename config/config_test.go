package config

import "testing"

func TestGetSearchLimit(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want int
	}{
		{"empty", "", 50},
		{"invalid", "foo", 50},
		{"zero", "0", 50},
		{"negative", "-10", 50},
		{"min", "1", 1},
		{"mid", "25", 25},
		{"max", "50", 50},
		{"over", "51", 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SPOTIFY_SEARCH_LIMIT", tt.env)
			if got := getSearchLimit(); got != tt.want {
				t.Errorf("getSearchLimit() = %d; want %d", got, tt.want)
			}
		})
	}
}

func TestGetClassifierTimeout(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want int
	}{
		{"empty", "", 30},
		{"invalid", "abc", 30},
		{"zero", "0", 30},
		{"negative", "-1", 30},
		{"valid_small", "5", 5},
		{"valid_large", "120", 120},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CLASSIFIER_TIMEOUT_SECONDS", tt.env)
			if got := getClassifierTimeout(); got != tt.want {
				t.Errorf("getClassifierTimeout() = %d; want %d", got, tt.want)
			}
		})
	}
}

func TestGetSessionTTL(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want int
	}{
		{"empty", "", 24},
		{"invalid", "foo", 24},
		{"zero", "0", 24},
		{"valid", "72", 72},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SESSION_TTL_HOURS", tt.env)
			if got := getSessionTTL(); got != tt.want {
				t.Errorf("getSessionTTL() = %d; want %d", got, tt.want)
			}
		})
	}
}

func TestGetMaxSearchOffset(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want int
	}{
		{"empty", "", 200},
		{"invalid", "foo", 200},
		{"negative", "-5", 200},
		{"zero_disables", "0", 0},
		{"mid", "500", 500},
		{"max", "950", 950},
		{"over", "2000", 950},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("MAX_SEARCH_OFFSET", tt.env)
			if got := getMaxSearchOffset(); got != tt.want {
				t.Errorf("getMaxSearchOffset() = %d; want %d", got, tt.want)
			}
		})
	}
}

func TestGetMarket(t *testing.T) {
	t.Setenv("SPOTIFY_MARKET", "")
	if got := getMarket(); got != "US" {
		t.Errorf("getMarket() = %q; want US", got)
	}
	t.Setenv("SPOTIFY_MARKET", "GB")
	if got := getMarket(); got != "GB" {
		t.Errorf("getMarket() = %q; want GB", got)
	}
}
