package models

import (
	"math"
	"strconv"
)

// GradePoint is a course outcome on the 0.0 to 4.0 scale. Only the eleven
// canonical values are valid; input collection rejects anything else.
type GradePoint float64

// Canonical grade points, highest first.
const (
	GradeA      GradePoint = 4.0
	GradeAMinus GradePoint = 3.7
	GradeBPlus  GradePoint = 3.3
	GradeB      GradePoint = 3.0
	GradeBMinus GradePoint = 2.7
	GradeCPlus  GradePoint = 2.3
	GradeC      GradePoint = 2.0
	GradeCMinus GradePoint = 1.7
	GradeDPlus  GradePoint = 1.3
	GradeD      GradePoint = 1.0
	GradeE      GradePoint = 0.0
)

// MaxGradePoint is the top of the scale.
const MaxGradePoint = GradeA

type gradeEntry struct {
	point  GradePoint
	letter string
}

// keyed by tenths so values parsed from text compare exactly
var gradeScale = map[int]gradeEntry{
	40: {GradeA, "A"},
	37: {GradeAMinus, "A-"},
	33: {GradeBPlus, "B+"},
	30: {GradeB, "B"},
	27: {GradeBMinus, "B-"},
	23: {GradeCPlus, "C+"},
	20: {GradeC, "C"},
	17: {GradeCMinus, "C-"},
	13: {GradeDPlus, "D+"},
	10: {GradeD, "D"},
	0:  {GradeE, "E"},
}

var canonicalOrder = []GradePoint{
	GradeA, GradeAMinus, GradeBPlus, GradeB, GradeBMinus,
	GradeCPlus, GradeC, GradeCMinus, GradeDPlus, GradeD, GradeE,
}

func tenths(g GradePoint) (int, bool) {
	scaled := float64(g) * 10
	rounded := math.Round(scaled)
	if math.Abs(scaled-rounded) > 1e-6 {
		return 0, false
	}
	return int(rounded), true
}

// LetterFor returns the display symbol for a canonical grade point.
func LetterFor(g GradePoint) (string, bool) {
	key, ok := tenths(g)
	if !ok {
		return "", false
	}
	entry, ok := gradeScale[key]
	if !ok {
		return "", false
	}
	return entry.letter, true
}

// Canonical snaps g onto the scale value it stands for, absorbing float noise
// such as 3.7000001.
func Canonical(g GradePoint) (GradePoint, bool) {
	key, ok := tenths(g)
	if !ok {
		return 0, false
	}
	entry, ok := gradeScale[key]
	if !ok {
		return 0, false
	}
	return entry.point, true
}

// IsCanonical reports whether g is one of the eleven scale values.
func IsCanonical(g GradePoint) bool {
	_, ok := LetterFor(g)
	return ok
}

// CanonicalGradePoints lists every valid grade point, highest first.
func CanonicalGradePoints() []GradePoint {
	out := make([]GradePoint, len(canonicalOrder))
	copy(out, canonicalOrder)
	return out
}

// ParseGradePoint accepts either a numeric grade ("3.7") or a letter ("A-").
func ParseGradePoint(raw string) (GradePoint, bool) {
	for _, g := range canonicalOrder {
		if letter, _ := LetterFor(g); letter == raw {
			return g, true
		}
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return Canonical(GradePoint(f))
}

// String renders the grade with one decimal, e.g. "3.7".
func (g GradePoint) String() string {
	return strconv.FormatFloat(float64(g), 'f', 1, 64)
}

// Band is the coarse five-way classification used for distributions.
type Band string

const (
	BandA Band = "A"
	BandB Band = "B"
	BandC Band = "C"
	BandD Band = "D"
	BandE Band = "E"
)

// Bands lists every band in display order.
var Bands = []Band{BandA, BandB, BandC, BandD, BandE}

// BandFor classifies with half-open lower thresholds. It is independent of the
// letter scale: 3.7 ("A-") is band A while 3.3 ("B+") is band B.
func BandFor(g GradePoint) Band {
	switch {
	case g >= 3.5:
		return BandA
	case g >= 2.5:
		return BandB
	case g >= 1.5:
		return BandC
	case g >= 1.0:
		return BandD
	default:
		return BandE
	}
}

// Predicate is the honors classification of a cumulative average.
type Predicate string

const (
	PredicateCumLaude     Predicate = "CUM_LAUDE"
	PredicateSuperior     Predicate = "SUPERIOR"
	PredicateSatisfactory Predicate = "SATISFACTORY"
	PredicatePassing      Predicate = "PASSING"
	PredicateFailing      Predicate = "FAILING"
	PredicateUndefined    Predicate = "UNDEFINED"
)

// Honors thresholds, evaluated highest first.
const (
	CumLaudeThreshold     = 3.75
	SuperiorThreshold     = 3.50
	SatisfactoryThreshold = 3.00
	PassingThreshold      = 2.00
)

// HonorsFor bands a cumulative average. Zero means no data.
func HonorsFor(avg float64) Predicate {
	switch {
	case avg >= CumLaudeThreshold:
		return PredicateCumLaude
	case avg >= SuperiorThreshold:
		return PredicateSuperior
	case avg >= SatisfactoryThreshold:
		return PredicateSatisfactory
	case avg >= PassingThreshold:
		return PredicatePassing
	case avg > 0:
		return PredicateFailing
	default:
		return PredicateUndefined
	}
}

// Label is the human readable predicate.
func (p Predicate) Label() string {
	switch p {
	case PredicateCumLaude:
		return "Cum Laude"
	case PredicateSuperior:
		return "Superior"
	case PredicateSatisfactory:
		return "Satisfactory"
	case PredicatePassing:
		return "Passing"
	case PredicateFailing:
		return "Failing"
	default:
		return "-"
	}
}

// RoundGPA rounds half-up at the second decimal. The epsilon absorbs binary
// representation error so 3.445 rounds to 3.45.
func RoundGPA(x float64) float64 {
	return math.Floor(x*100+0.5+1e-9) / 100
}

// FormatGPA renders an average with two decimals.
func FormatGPA(x float64) string {
	return strconv.FormatFloat(x, 'f', 2, 64)
}
