package validator

import (
	"math"
	"testing"
)

func TestCoordinate(t *testing.T) {
	v := New()

	if !v.Coordinate(59.33, 18.06) {
		t.Fatal("expected Stockholm to be a valid coordinate")
	}
	if v.Coordinate(91, 0) {
		t.Fatal("expected latitude 91 to be rejected")
	}
	if v.Coordinate(0, -181) {
		t.Fatal("expected longitude -181 to be rejected")
	}
	if v.Coordinate(math.NaN(), 0) {
		t.Fatal("expected NaN to be rejected")
	}
}
