package pipeline

import (
	"testing"
)

func TestComputeTokenStats(t *testing.T) {
	tests := []struct {
		name   string
		counts []int
		want   TokenStats
	}{
		{
			name:   "empty",
			counts: nil,
			want:   TokenStats{},
		},
		{
			name:   "single value",
			counts: []int{100},
			want:   TokenStats{Min: 100, Max: 100, Mean: 100, P95: 100},
		},
		{
			name:   "unsorted input",
			counts: []int{30, 10, 20},
			want:   TokenStats{Min: 10, Max: 30, Mean: 20, P95: 30},
		},
		{
			name:   "mean rounded to two decimals",
			counts: []int{1, 2},
			want:   TokenStats{Min: 1, Max: 2, Mean: 1.5, P95: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := computeTokenStats(tt.counts); got != tt.want {
				t.Errorf("computeTokenStats(%v) = %+v, want %+v", tt.counts, got, tt.want)
			}
		})
	}
}

func TestComputeTokenStatsP95(t *testing.T) {
	counts := make([]int, 100)
	for i := range counts {
		counts[i] = i + 1 // 1..100
	}
	got := computeTokenStats(counts)
	if got.P95 != 96 {
		t.Errorf("P95 = %d, want 96", got.P95)
	}
	if got.Min != 1 || got.Max != 100 {
		t.Errorf("min/max = %d/%d", got.Min, got.Max)
	}
}
