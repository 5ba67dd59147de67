package httpserver

import (
	"net/url"
	"testing"
)

func TestParseTopLimit(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    int
		wantErr bool
	}{
		{"absent", "", 0, false},
		{"valid", "limit=5", 5, false},
		{"clamped", "limit=500", 100, false},
		{"zero", "limit=0", 0, true},
		{"negative", "limit=-3", 0, true},
		{"not a number", "limit=abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatalf("parse query: %v", err)
			}
			got, err := parseTopLimit(values)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseTopLimit(%q) expected error", tt.query)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseTopLimit(%q): %v", tt.query, err)
			}
			if got != tt.want {
				t.Fatalf("parseTopLimit(%q) = %d, want %d", tt.query, got, tt.want)
			}
		})
	}
}

func FuzzParseTopLimit(f *testing.F) {
	seeds := []string{
		"limit=10",
		"limit=abc",
		"limit=-1",
		"",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, raw string) {
		values, err := url.ParseQuery(raw)
		if err != nil {
			return
		}
		limit, err := parseTopLimit(values)
		if err == nil && (limit < 0 || limit > 100) {
			t.Fatalf("parseTopLimit(%q) = %d, outside [0, 100]", raw, limit)
		}
	})
}
