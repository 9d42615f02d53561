package models

import "time"

// Trend is the direction of semester averages over time.
type Trend string

const (
	TrendImproving        Trend = "IMPROVING"
	TrendDeclining        Trend = "DECLINING"
	TrendStable           Trend = "STABLE"
	TrendInsufficientData Trend = "INSUFFICIENT_DATA"
)

// Standing compares one semester against the others.
type Standing string

const (
	StandingAboveAverage     Standing = "ABOVE_AVERAGE"
	StandingBelowAverage     Standing = "BELOW_AVERAGE"
	StandingConsistent       Standing = "CONSISTENT"
	StandingInsufficientData Standing = "INSUFFICIENT_DATA"
)

// Load classifies a semester's total SKS.
type Load string

const (
	LoadOverload Load = "OVERLOAD"
	LoadHeavy    Load = "HEAVY"
	LoadOptimal  Load = "OPTIMAL"
	LoadLight    Load = "LIGHT"
)

// Severity tags a recommendation.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// CohortComparison is a semester measured against the mean of the others.
type CohortComparison struct {
	SemesterID ID       `json:"semesterId"`
	IP         float64  `json:"ip"`
	CohortMean float64  `json:"cohortMean"`
	Diff       float64  `json:"diff"`
	Standing   Standing `json:"standing"`
}

// PreviousComparison is a semester measured against the one right before it.
type PreviousComparison struct {
	SemesterID ID      `json:"semesterId"`
	IP         float64 `json:"ip"`
	PreviousIP float64 `json:"previousIp"`
	Delta      float64 `json:"delta"`
	Trend      Trend   `json:"trend"`
}

// SemesterRef identifies a semester in a report.
type SemesterRef struct {
	ID     ID      `json:"id"`
	Number int     `json:"number"`
	IP     float64 `json:"ip"`
}

// Extremes holds the best and worst semesters.
type Extremes struct {
	Best  SemesterRef  `json:"best"`
	Worst *SemesterRef `json:"worst,omitempty"`
}

// BandBreakdown carries one value per band.
type BandBreakdown struct {
	A int `json:"A"`
	B int `json:"B"`
	C int `json:"C"`
	D int `json:"D"`
	E int `json:"E"`
}

// Get returns the value for a band.
func (b BandBreakdown) Get(band Band) int {
	switch band {
	case BandA:
		return b.A
	case BandB:
		return b.B
	case BandC:
		return b.C
	case BandD:
		return b.D
	default:
		return b.E
	}
}

// Add increments the value for a band.
func (b *BandBreakdown) Add(band Band, n int) {
	switch band {
	case BandA:
		b.A += n
	case BandB:
		b.B += n
	case BandC:
		b.C += n
	case BandD:
		b.D += n
	default:
		b.E += n
	}
}

// Sum totals all bands.
func (b BandBreakdown) Sum() int {
	return b.A + b.B + b.C + b.D + b.E
}

// Distribution is a per-band breakdown of course outcomes. Total == 0 is the
// defined empty result.
type Distribution struct {
	Total   int           `json:"total"`
	Counts  BandBreakdown `json:"counts"`
	Percent BandBreakdown `json:"percent"`
}

// Recommendation is one advisory record.
type Recommendation struct {
	Severity Severity `json:"severity"`
	Title    string   `json:"title"`
	Message  string   `json:"message"`
	Actions  []string `json:"actions,omitempty"`
}

// SemesterInsight is per-semester commentary.
type SemesterInsight struct {
	SemesterID   ID                  `json:"semesterId"`
	Number       int                 `json:"number"`
	IP           float64             `json:"ip"`
	TotalSKS     int                 `json:"totalSKS"`
	Load         Load                `json:"load"`
	VsCohort     CohortComparison    `json:"vsCohort"`
	VsPrevious   *PreviousComparison `json:"vsPrevious,omitempty"`
	Distribution Distribution        `json:"distribution"`
}

// AchievementStatus reports one catalogue entry against a transcript.
type AchievementStatus struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Unlocked    bool   `json:"unlocked"`
}

// AnalysisReport is the structured analysis of a transcript.
type AnalysisReport struct {
	GeneratedAt     time.Time           `json:"generatedAt"`
	Summary         Summary             `json:"summary"`
	Trend           Trend               `json:"trend"`
	Extremes        *Extremes           `json:"extremes,omitempty"`
	Distribution    Distribution        `json:"distribution"`
	Recommendations []Recommendation    `json:"recommendations"`
	Semesters       []SemesterInsight   `json:"semesters"`
	Achievements    []AchievementStatus `json:"achievements"`
}
