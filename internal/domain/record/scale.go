package record

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownScale is returned when parsing an unrecognized scale name.
var ErrUnknownScale = errors.New("record: unknown grade scale")

// GradeScale selects the grade-point table used for GPA computation.
// A deployment picks exactly one canonical scale; the other exists only as
// a display conversion. The tables are explicit and enum-indexed so a grade
// letter is never interpreted under the wrong convention.
type GradeScale int

const (
	// ScaleFivePoint is the 0-5 scale with six plain letters A-F.
	// This is the canonical scale.
	ScaleFivePoint GradeScale = iota

	// ScaleFourPoint is the 0-4 scale with plus/minus variants.
	ScaleFourPoint
)

// String returns the scale name.
func (s GradeScale) String() string {
	switch s {
	case ScaleFivePoint:
		return "five-point"
	case ScaleFourPoint:
		return "four-point"
	default:
		return fmt.Sprintf("scale(%d)", int(s))
	}
}

// ParseScale parses a scale name from configuration.
func ParseScale(name string) (GradeScale, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "five-point", "five", "5":
		return ScaleFivePoint, nil
	case "four-point", "four", "4":
		return ScaleFourPoint, nil
	default:
		return ScaleFivePoint, fmt.Errorf("%w: %q", ErrUnknownScale, name)
	}
}

// fivePointTable maps the six plain letters onto 0-5.
var fivePointTable = map[Grade]float64{
	"A": 5, "B": 4, "C": 3, "D": 2, "E": 1, "F": 0,
}

// fourPointTable maps letters with plus/minus variants onto 0-4.
var fourPointTable = map[Grade]float64{
	"A": 4.0, "A-": 3.7,
	"B+": 3.3, "B": 3.0, "B-": 2.7,
	"C+": 2.3, "C": 2.0, "C-": 1.7,
	"D+": 1.3, "D": 1.0,
	"F": 0,
}

// Points returns the grade-point value of a letter under this scale.
// The second return is false when the letter has no mapping; such a grade
// still completes a course but is excluded from the GPA denominator.
func (s GradeScale) Points(g Grade) (float64, bool) {
	if g.IsEmpty() {
		return 0, false
	}
	var table map[Grade]float64
	switch s {
	case ScaleFourPoint:
		table = fourPointTable
	default:
		table = fivePointTable
	}
	pts, ok := table[Grade(strings.ToUpper(strings.TrimSpace(g.String())))]
	return pts, ok
}

// Max returns the highest grade-point value of the scale.
func (s GradeScale) Max() float64 {
	if s == ScaleFourPoint {
		return 4.0
	}
	return 5.0
}

// ConvertGPA linearly rescales a GPA from one scale to another, for display
// only. Stored data is always interpreted under the canonical scale.
func ConvertGPA(gpa float64, from, to GradeScale) float64 {
	if from == to || from.Max() == 0 {
		return gpa
	}
	return gpa * to.Max() / from.Max()
}
