package units

import (
	"math"
	"testing"
)

func TestToPoundsKilograms(t *testing.T) {
	got := ToPounds(100, "KG")
	if math.Abs(got-220.462) > 1e-9 {
		t.Fatalf("expected 220.462 got %v", got)
	}
	if ToPounds(50, "kgm") != ToPounds(50, "KGM") {
		t.Fatalf("unit matching should be case-insensitive")
	}
}

func TestToPoundsPassThrough(t *testing.T) {
	for _, u := range []string{"LB", "LBS", "LBR", "LBM", " lbs "} {
		if got := ToPounds(123.4, u); got != 123.4 {
			t.Fatalf("unit %q: expected 123.4 got %v", u, got)
		}
	}
}

func TestToPoundsUnknownUnitAssumedPounds(t *testing.T) {
	if got := ToPounds(42, "EA"); got != 42 {
		t.Fatalf("unknown unit should pass through, got %v", got)
	}
}
