package domain

import (
	"math"
	"testing"
)

func TestClassifyPaletteColorsMapToThemselves(t *testing.T) {
	for _, entry := range Palette {
		if got := Classify(entry.Color); got != entry.Category {
			t.Fatalf("Classify(%v) = %q, want %q", entry.Color, got, entry.Category)
		}
	}
}

func TestClassifyBlackIsNearestByDistance(t *testing.T) {
	var want string
	best := math.Inf(1)
	for _, entry := range Palette {
		c := entry.Color
		d := math.Sqrt(c.R*c.R + c.G*c.G + c.B*c.B)
		if d < best {
			best, want = d, entry.Category
		}
	}
	if want != CategoryCritical {
		t.Fatalf("expected red reference to be nearest to black, got %q", want)
	}
	if got := Classify(Black); got != want {
		t.Fatalf("Classify(black) = %q, want %q", got, want)
	}
}

func TestClassifyNearMisses(t *testing.T) {
	cases := []struct {
		name  string
		color RGB
		want  string
	}{
		{name: "pure yellow", color: RGB{1, 1, 0}, want: CategoryGeneral},
		{name: "pure green", color: RGB{0, 1, 0}, want: CategoryActions},
		{name: "pure red", color: RGB{1, 0, 0}, want: CategoryCritical},
		{name: "cyan", color: RGB{0.5, 0.9, 1}, want: CategoryIdeas},
		{name: "pink", color: RGB{1, 0.6, 0.8}, want: CategoryQuotes},
		{name: "out of range", color: RGB{-3, 9, -3}, want: CategoryActions},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.color); got != tc.want {
				t.Fatalf("Classify(%v) = %q, want %q", tc.color, got, tc.want)
			}
		})
	}
}

func TestColorFromComponents(t *testing.T) {
	if _, ok := ColorFromComponents(nil); ok {
		t.Fatalf("expected empty colour array to be absent")
	}
	if _, ok := ColorFromComponents([]float64{1, 2}); ok {
		t.Fatalf("expected two-component array to be rejected")
	}
	gray, ok := ColorFromComponents([]float64{0.5})
	if !ok || gray != (RGB{0.5, 0.5, 0.5}) {
		t.Fatalf("unexpected gray conversion: %v %v", gray, ok)
	}
	rgb, ok := ColorFromComponents([]float64{1, 0.9412, 0.4})
	if !ok || rgb != (RGB{1, 0.9412, 0.4}) {
		t.Fatalf("unexpected rgb conversion: %v %v", rgb, ok)
	}
	cmyk, ok := ColorFromComponents([]float64{0, 1, 1, 0})
	if !ok || cmyk != (RGB{1, 0, 0}) {
		t.Fatalf("unexpected cmyk conversion: %v %v", cmyk, ok)
	}
}
