package analysis

import (
	"math"
	"testing"
)

func TestNormalizeFlowValue(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"raw yuan positive", 1536e8, 1536},
		{"raw yuan negative", -1536e8, -1536},
		{"already in yi", 85.5, 85.5},
		{"negative yi", -42.1, -42.1},
		{"boundary not scaled", 1e6, 1e6},
		{"just above boundary", 1e6 + 1, (1e6 + 1) / 1e8},
		{"zero", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeFlowValue(tt.in); got != tt.want {
				t.Fatalf("NormalizeFlowValue(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	if !math.IsNaN(NormalizeFlowValue(math.NaN())) {
		t.Fatal("NaN should pass through unchanged")
	}
}
