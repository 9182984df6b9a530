package noderank

import "testing"

func TestScore(t *testing.T) {
	tests := []struct {
		name      string
		latencyMs float64
		averageMs float64
		want      float64
	}{
		{"low latency with consistency bonus", 50, 55, 70},
		{"low latency without bonus", 50, 90, 50},
		{"diff exactly at bonus cutoff", 50, 70, 50},
		{"diff just inside bonus window", 50, 69.9, 70},
		{"latency at the component ceiling", 100, 100, 20},
		{"latency above the ceiling, consistent", 120, 115, 20},
		{"latency above the ceiling, inconsistent", 120, 80, 0},
		{"best possible score", 1, 1, 119},
		{"confirmation faster than average", 30, 45, 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.latencyMs, tt.averageMs)
			if got != tt.want {
				t.Errorf("Score(%v, %v) = %v, want %v", tt.latencyMs, tt.averageMs, got, tt.want)
			}
		})
	}
}
