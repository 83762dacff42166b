package stats

import (
	"math"
	"testing"
)

func TestIQRExclude(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want []float64
	}{
		{
			name: "fewer than four samples pass through",
			in:   []float64{10, 11, 1000},
			want: []float64{10, 11, 1000},
		},
		{
			name: "outlier dropped order preserved",
			in:   []float64{10, 1000, 11, 12},
			want: []float64{10, 11, 12},
		},
		{
			name: "tight sample kept whole",
			in:   []float64{10, 11, 12, 13},
			want: []float64{10, 11, 12, 13},
		},
		{
			name: "empty",
			in:   nil,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IQRExclude(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("IQRExclude(%v) = %v, want %v", tt.in, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("IQRExclude(%v)[%d] = %v, want %v", tt.in, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestWinsorizeIntervals(t *testing.T) {
	age := func(d int) *int { return &d }

	t.Run("short intervals dropped not counted", func(t *testing.T) {
		// 60s is under the 2-minute hard floor.
		in := []float64{60, 3600, 3700, 3800, 3900}
		kept, capped := WinsorizeIntervals(in, nil)
		if capped != 0 {
			t.Errorf("capped = %d, want 0 (drops are not counted)", capped)
		}
		if len(kept) != 4 {
			t.Errorf("kept = %v, want the four plausible intervals", kept)
		}
		for _, v := range kept {
			if v < 3600 {
				t.Errorf("kept contains dropped value %v", v)
			}
		}
	})

	t.Run("long intervals capped to age bound", func(t *testing.T) {
		// Newborn cap is 6h = 21600s; a 20h gap gets capped, not dropped.
		in := []float64{7200, 7300, 7400, 7500, 72000}
		kept, capped := WinsorizeIntervals(in, age(10))
		if capped != 1 {
			t.Fatalf("capped = %d, want 1", capped)
		}
		if len(kept) != 5 {
			t.Fatalf("kept = %d values, want 5 (capped values retained)", len(kept))
		}
		maxKept := kept[len(kept)-1]
		if maxKept > 21600+0.5 {
			t.Errorf("capped value = %v, want <= newborn bound 21600", maxKept)
		}
	})

	t.Run("degenerate bounds drop everything", func(t *testing.T) {
		// All intervals under the hard floor force lower > upper.
		in := []float64{10, 20, 30, 40}
		kept, capped := WinsorizeIntervals(in, age(10))
		if len(kept) != 0 {
			t.Errorf("kept = %v, want empty", kept)
		}
		if capped != 4 {
			t.Errorf("capped = %d, want all 4 counted", capped)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		kept, capped := WinsorizeIntervals(nil, nil)
		if len(kept) != 0 || capped != 0 {
			t.Errorf("got %v,%d, want empty,0", kept, capped)
		}
	})
}

func TestAgeAwareUpperBound(t *testing.T) {
	age := func(d int) *int { return &d }
	tests := []struct {
		name string
		age  *int
		want float64
	}{
		{"unknown age widest", nil, 43200},
		{"newborn", age(10), 21600},
		{"one to three months", age(45), 28800},
		{"three to six months", age(120), 36000},
		{"older", age(250), 43200},
		{"boundary 28", age(28), 28800},
		{"boundary 90", age(90), 36000},
		{"boundary 182", age(182), 43200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AgeAwareUpperBound(tt.age); got != tt.want {
				t.Errorf("AgeAwareUpperBound = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPercentileSorted(t *testing.T) {
	sorted := []float64{10, 20, 30, 40}
	// position = p*(n-1), linear interpolation
	if got := percentileSorted(sorted, 0.25); math.Abs(got-17.5) > 1e-9 {
		t.Errorf("p25 = %v, want 17.5", got)
	}
	if got := percentileSorted(sorted, 0.75); math.Abs(got-32.5) > 1e-9 {
		t.Errorf("p75 = %v, want 32.5", got)
	}
	if got := percentileSorted(sorted, 0); got != 10 {
		t.Errorf("p0 = %v, want 10", got)
	}
	if got := percentileSorted(sorted, 1); got != 40 {
		t.Errorf("p100 = %v, want 40", got)
	}
}
