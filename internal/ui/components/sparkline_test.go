package components_test

import (
	"testing"
	"unicode/utf8"

	"trafficwatch/internal/ui/components"
)

func TestSparkline(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		values []float64
		width  int
		want   string
	}{
		{"empty", nil, 10, ""},
		{"no width", []float64{1}, 0, ""},
		{"ramp", []float64{0, 1, 2, 3, 4, 5, 6, 7}, 10, "▁▂▃▄▅▆▇█"},
		{"flat", []float64{0.5, 0.5, 0.5}, 10, "▄▄▄"},
		{"min and max", []float64{0.25, 1.25, 0.25}, 10, "▁█▁"},
		{"keeps tail", []float64{100, 0, 1}, 2, "▁█"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := components.Sparkline(tc.values, tc.width)
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
			if tc.width > 0 && utf8.RuneCountInString(got) > tc.width {
				t.Fatalf("sparkline wider than %d", tc.width)
			}
		})
	}
}
