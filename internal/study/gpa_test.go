package study

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestGPA(t *testing.T) {
	tests := []struct {
		name    string
		courses []Course
		scale   Scale
		want    float64
		counted int
	}{
		{
			name:    "spec example on NG 5.0",
			courses: []Course{{Units: 3, Grade: "A"}, {Units: 2, Grade: "B"}},
			scale:   ScaleNG5,
			want:    4.6,
			counted: 2,
		},
		{
			name:    "single course",
			courses: []Course{{Units: 4, Grade: "C"}},
			scale:   ScaleNG5,
			want:    3,
			counted: 1,
		},
		{
			name: "invalid rows excluded from both sums",
			courses: []Course{
				{Units: 3, Grade: "A"},
				{Units: 0, Grade: "A"},  // non-positive units
				{Units: -2, Grade: "B"}, // negative units
				{Units: 3, Grade: "Z"},  // grade not on scale
			},
			scale:   ScaleNG5,
			want:    5,
			counted: 1,
		},
		{
			name:    "no valid rows",
			courses: []Course{{Units: 0, Grade: "A"}, {Units: 3, Grade: "?"}},
			scale:   ScaleNG5,
			want:    0,
			counted: 0,
		},
		{
			name:    "all F is zero",
			courses: []Course{{Units: 3, Grade: "F"}, {Units: 2, Grade: "F"}},
			scale:   ScaleNG5,
			want:    0,
			counted: 2,
		},
		{
			name:    "4 point scale",
			courses: []Course{{Units: 3, Grade: "A"}, {Units: 3, Grade: "B"}},
			scale:   Scale4,
			want:    3.5,
			counted: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, counted := GPA(tt.courses, tt.scale)
			if !almostEqual(got, tt.want) {
				t.Errorf("gpa = %v, want %v", got, tt.want)
			}
			if counted != tt.counted {
				t.Errorf("counted = %d, want %d", counted, tt.counted)
			}
		})
	}
}

func TestRound2(t *testing.T) {
	if got := Round2(4.596666); !almostEqual(got, 4.6) {
		t.Errorf("Round2 = %v, want 4.6", got)
	}
}

func TestRequiredNext(t *testing.T) {
	// current 3.0 over 60 units, target 3.5 over 90 total:
	// (3.0*60 + r*30)/90 = 3.5 -> r = (3.5*90 - 3.0*60)/30 = 4.5
	got, ok := RequiredNext(3.0, 60, 3.5, 30, ScaleNG5)
	if !ok {
		t.Fatal("expected reachable target")
	}
	if !almostEqual(got, 4.5) {
		t.Errorf("required = %v, want 4.5", got)
	}
}

func TestRequiredNextUnreachable(t *testing.T) {
	// Jumping from 2.0 to 4.9 in one light semester needs more than the
	// scale maximum.
	got, ok := RequiredNext(2.0, 100, 4.9, 10, ScaleNG5)
	if ok {
		t.Fatalf("expected unreachable target, got required = %v", got)
	}
}

func TestRequiredNextAlreadySecured(t *testing.T) {
	got, ok := RequiredNext(5.0, 120, 3.0, 10, ScaleNG5)
	if !ok {
		t.Fatal("expected ok")
	}
	if got != 0 {
		t.Errorf("required = %v, want 0 (target already secured)", got)
	}
}

func TestRequiredNextNoUnits(t *testing.T) {
	if _, ok := RequiredNext(3.0, 60, 3.5, 0, ScaleNG5); ok {
		t.Error("expected not ok for zero next units")
	}
}
