// Package study holds the Study sub-app's pure computations: GPA math,
// practice attempt review derivation and the Q&A leaderboard scoring.
package study

import "math"

// Scale maps letter grades to grade points.
type Scale map[string]float64

// ScaleNG5 is the Nigerian 5-point scale, the app default.
var ScaleNG5 = Scale{"A": 5, "B": 4, "C": 3, "D": 2, "E": 1, "F": 0}

// Scale4 is the 4-point alternative.
var Scale4 = Scale{"A": 4, "B": 3, "C": 2, "D": 1, "F": 0}

// Course is one GPA calculator row.
type Course struct {
	Units int    `json:"units"`
	Grade string `json:"grade"`
}

// Max returns the highest grade point on the scale.
func (s Scale) Max() float64 {
	var max float64
	for _, p := range s {
		if p > max {
			max = p
		}
	}
	return max
}

// GPA computes Σ(units×points)/Σ(units) over valid rows. A row is invalid,
// and excluded from both sums, when its units are not positive or its grade
// is not on the scale. counted reports how many rows contributed; a result
// of (0, 0) means no valid rows.
func GPA(courses []Course, scale Scale) (gpa float64, counted int) {
	var points float64
	var units int
	for _, c := range courses {
		p, ok := scale[c.Grade]
		if !ok || c.Units <= 0 {
			continue
		}
		points += float64(c.Units) * p
		units += c.Units
		counted++
	}
	if units == 0 {
		return 0, 0
	}
	return points / float64(units), counted
}

// Round2 rounds a GPA to two decimal places for display.
func Round2(gpa float64) float64 {
	return math.Round(gpa*100) / 100
}

// RequiredNext solves for the GPA needed over the next units to reach the
// target CGPA:
//
//	(current*doneUnits + required*nextUnits) / (doneUnits+nextUnits) = target
//
// ok is false when nextUnits is not positive or the answer exceeds the
// scale's maximum (the target is unreachable); a negative answer clamps to
// zero (the target is already secured).
func RequiredNext(current float64, doneUnits int, target float64, nextUnits int, scale Scale) (required float64, ok bool) {
	if nextUnits <= 0 {
		return 0, false
	}
	required = (target*float64(doneUnits+nextUnits) - current*float64(doneUnits)) / float64(nextUnits)
	if required > scale.Max() {
		return required, false
	}
	if required < 0 {
		required = 0
	}
	return required, true
}
