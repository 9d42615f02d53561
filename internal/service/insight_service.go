package service

import (
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/ipk-calculator/internal/models"
)

// Fixed comparison tolerances.
const (
	cohortTolerance   = 0.2
	previousTolerance = 0.1
)

// SKS load bands.
const (
	overloadAbove = 24
	heavyFrom     = 22
	optimalFrom   = 18
)

// Distribution extremes used by recommendations.
const (
	dominantBandAPercent = 70
	lowBandsPercent      = 20
)

// OverallTrend counts strictly rising against strictly falling adjacent
// semester pairs; the majority wins and a tie is stable.
func OverallTrend(t *models.Transcript) models.Trend {
	if t == nil || len(t.Semesters) < 2 {
		return models.TrendInsufficientData
	}
	up, down := 0, 0
	for i := 1; i < len(t.Semesters); i++ {
		prev := t.Semesters[i-1].IP.Float()
		cur := t.Semesters[i].IP.Float()
		switch {
		case cur > prev:
			up++
		case cur < prev:
			down++
		}
	}
	switch {
	case up > down:
		return models.TrendImproving
	case down > up:
		return models.TrendDeclining
	default:
		return models.TrendStable
	}
}

// ExtremeSemesters picks the best semester (first on ties) and the worst
// non-empty semester. ok is false for an empty transcript; Worst is nil when
// every semester is empty.
func ExtremeSemesters(t *models.Transcript) (models.Extremes, bool) {
	if t.IsEmpty() {
		return models.Extremes{}, false
	}
	best := t.Semesters[0]
	var worst *models.Semester
	for _, s := range t.Semesters {
		if s.IP > best.IP {
			best = s
		}
		if s.IsEmpty() {
			continue
		}
		if worst == nil || s.IP < worst.IP {
			worst = s
		}
	}
	out := models.Extremes{Best: refOf(best)}
	if worst != nil {
		ref := refOf(worst)
		out.Worst = &ref
	}
	return out, true
}

// SemesterVsCohort compares one semester with the mean IP of every other
// non-empty semester.
func SemesterVsCohort(t *models.Transcript, id models.ID) models.CohortComparison {
	out := models.CohortComparison{SemesterID: id, Standing: models.StandingInsufficientData}
	target, err := t.Semester(id)
	if err != nil || target.IsEmpty() {
		return out
	}
	out.IP = target.IP.Float()

	var sum float64
	var n int
	for _, s := range t.Semesters {
		if s.ID == id || s.IsEmpty() {
			continue
		}
		sum += s.IP.Float()
		n++
	}
	if n == 0 {
		return out
	}
	out.CohortMean = models.RoundGPA(sum / float64(n))
	out.Diff = roundDelta(out.IP - sum/float64(n))
	switch {
	case out.Diff > cohortTolerance:
		out.Standing = models.StandingAboveAverage
	case out.Diff < -cohortTolerance:
		out.Standing = models.StandingBelowAverage
	default:
		out.Standing = models.StandingConsistent
	}
	return out
}

// SemesterVsPrevious compares a semester with the one right before it. The
// first semester has nothing to compare against.
func SemesterVsPrevious(t *models.Transcript, id models.ID) models.PreviousComparison {
	out := models.PreviousComparison{SemesterID: id, Trend: models.TrendInsufficientData}
	idx := t.Position(id)
	if idx < 0 {
		return out
	}
	out.IP = t.Semesters[idx].IP.Float()
	if idx == 0 {
		return out
	}
	out.PreviousIP = t.Semesters[idx-1].IP.Float()
	out.Delta = roundDelta(out.IP - out.PreviousIP)
	out.Trend = classifyDelta(out.Delta)
	return out
}

func classifyDelta(delta float64) models.Trend {
	switch {
	case delta > previousTolerance:
		return models.TrendImproving
	case delta < -previousTolerance:
		return models.TrendDeclining
	default:
		return models.TrendStable
	}
}

// GradeDistribution buckets courses into bands with whole-percent shares.
func GradeDistribution(courses []models.Course) models.Distribution {
	var dist models.Distribution
	if len(courses) == 0 {
		return dist
	}
	for _, c := range courses {
		dist.Counts.Add(models.BandFor(c.Grade), 1)
	}
	dist.Total = len(courses)
	for _, band := range models.Bands {
		pct := math.Round(float64(dist.Counts.Get(band)) * 100 / float64(dist.Total))
		dist.Percent.Add(band, int(pct))
	}
	return dist
}

// ClassifyLoad bands a semester's total SKS.
func ClassifyLoad(totalSKS int) models.Load {
	switch {
	case totalSKS > overloadAbove:
		return models.LoadOverload
	case totalSKS >= heavyFrom:
		return models.LoadHeavy
	case totalSKS >= optimalFrom:
		return models.LoadOptimal
	default:
		return models.LoadLight
	}
}

// GenerateRecommendations evaluates the advisory rules in a fixed order:
// honors banding, trend, SKS load, grade distribution. Each rule adds at most
// one record.
func GenerateRecommendations(t *models.Transcript) []models.Recommendation {
	rules := []func(*models.Transcript) (models.Recommendation, bool){
		honorsRecommendation,
		trendRecommendation,
		loadRecommendation,
		distributionRecommendation,
	}
	out := make([]models.Recommendation, 0, len(rules))
	for _, rule := range rules {
		if rec, ok := rule(t); ok {
			out = append(out, rec)
		}
	}
	return out
}

func honorsRecommendation(t *models.Transcript) (models.Recommendation, bool) {
	summary := models.RecomputeTranscript(t)
	ipk := models.FormatGPA(summary.IPK)
	switch summary.Predicate {
	case models.PredicateCumLaude:
		return models.Recommendation{
			Severity: models.SeveritySuccess,
			Title:    "On track for Cum Laude",
			Message:  fmt.Sprintf("IPK %s meets the %.2f cum laude threshold.", ipk, models.CumLaudeThreshold),
			Actions:  []string{"Keep the current study routine", "Look at research or competition opportunities"},
		}, true
	case models.PredicateSuperior:
		return models.Recommendation{
			Severity: models.SeveritySuccess,
			Title:    "Superior standing",
			Message:  fmt.Sprintf("IPK %s is %s away from cum laude.", ipk, models.FormatGPA(gap(models.CumLaudeThreshold, summary.IPK))),
			Actions:  []string{"Aim for A- or better in high-SKS courses", "Protect the average by avoiding overload semesters"},
		}, true
	case models.PredicateSatisfactory:
		return models.Recommendation{
			Severity: models.SeverityWarning,
			Title:    "Satisfactory standing",
			Message:  fmt.Sprintf("IPK %s needs %s more to reach superior.", ipk, models.FormatGPA(gap(models.SuperiorThreshold, summary.IPK))),
			Actions:  []string{"Prioritise courses with the most SKS", "Review weak subjects with a study group"},
		}, true
	case models.PredicatePassing:
		return models.Recommendation{
			Severity: models.SeverityWarning,
			Title:    "Passing standing",
			Message:  fmt.Sprintf("IPK %s is below %.2f.", ipk, models.SatisfactoryThreshold),
			Actions:  []string{"Meet your academic advisor", "Plan a lighter, focused semester", "Consider retaking D and E courses"},
		}, true
	case models.PredicateFailing:
		return models.Recommendation{
			Severity: models.SeverityDanger,
			Title:    "Below the passing threshold",
			Message:  fmt.Sprintf("IPK %s is below the %.2f minimum.", ipk, models.PassingThreshold),
			Actions:  []string{"Meet your academic advisor this week", "Retake failed courses first", "Reduce the SKS load next semester"},
		}, true
	default:
		return models.Recommendation{}, false
	}
}

func trendRecommendation(t *models.Transcript) (models.Recommendation, bool) {
	switch OverallTrend(t) {
	case models.TrendImproving:
		return models.Recommendation{
			Severity: models.SeveritySuccess,
			Title:    "Improving trend",
			Message:  "Semester IP has mostly gone up over time.",
		}, true
	case models.TrendDeclining:
		return models.Recommendation{
			Severity: models.SeverityWarning,
			Title:    "Declining trend",
			Message:  "Semester IP has mostly gone down over time.",
			Actions:  []string{"Compare the workload of recent semesters", "Identify courses that pulled the IP down"},
		}, true
	default:
		return models.Recommendation{}, false
	}
}

func loadRecommendation(t *models.Transcript) (models.Recommendation, bool) {
	semesters := t.NonEmptySemesters()
	if len(semesters) == 0 {
		return models.Recommendation{}, false
	}
	var overloaded []string
	light := 0
	for _, s := range semesters {
		switch ClassifyLoad(s.TotalSKS) {
		case models.LoadOverload:
			overloaded = append(overloaded, fmt.Sprintf("%d", s.Number))
		case models.LoadLight:
			light++
		}
	}
	if len(overloaded) > 0 {
		return models.Recommendation{
			Severity: models.SeverityWarning,
			Title:    "SKS overload",
			Message:  fmt.Sprintf("Semester %s took more than %d SKS.", strings.Join(overloaded, ", "), overloadAbove),
			Actions:  []string{"Keep future semesters between 18 and 21 SKS"},
		}, true
	}
	if light == len(semesters) {
		return models.Recommendation{
			Severity: models.SeverityWarning,
			Title:    "Light SKS load",
			Message:  fmt.Sprintf("Every semester so far is below %d SKS.", optimalFrom),
			Actions:  []string{"Check the graduation plan for remaining SKS", "Add a course when the IP allows it"},
		}, true
	}
	return models.Recommendation{}, false
}

func distributionRecommendation(t *models.Transcript) (models.Recommendation, bool) {
	dist := GradeDistribution(t.Courses())
	if dist.Total == 0 {
		return models.Recommendation{}, false
	}
	if dist.Counts.A*100 >= dominantBandAPercent*dist.Total {
		return models.Recommendation{
			Severity: models.SeveritySuccess,
			Title:    "Mostly A grades",
			Message:  fmt.Sprintf("%d%% of courses are in band A.", dist.Percent.A),
		}, true
	}
	low := dist.Counts.D + dist.Counts.E
	if low*100 >= lowBandsPercent*dist.Total {
		return models.Recommendation{
			Severity: models.SeverityDanger,
			Title:    "Many D and E grades",
			Message:  fmt.Sprintf("%d of %d courses are in bands D or E.", low, dist.Total),
			Actions:  []string{"Retake D and E courses where allowed", "Ask lecturers for feedback early in the term"},
		}, true
	}
	return models.Recommendation{}, false
}

// SemesterInsights builds per-semester commentary in transcript order.
func SemesterInsights(t *models.Transcript) []models.SemesterInsight {
	if t.IsEmpty() {
		return []models.SemesterInsight{}
	}
	out := make([]models.SemesterInsight, 0, len(t.Semesters))
	for i, s := range t.Semesters {
		insight := models.SemesterInsight{
			SemesterID:   s.ID,
			Number:       s.Number,
			IP:           s.IP.Float(),
			TotalSKS:     s.TotalSKS,
			Load:         ClassifyLoad(s.TotalSKS),
			VsCohort:     SemesterVsCohort(t, s.ID),
			Distribution: GradeDistribution(s.Courses),
		}
		if i > 0 {
			prev := SemesterVsPrevious(t, s.ID)
			insight.VsPrevious = &prev
		}
		out = append(out, insight)
	}
	return out
}

// InsightService assembles the structured analysis report.
type InsightService struct {
	logger *zap.Logger
}

// NewInsightService constructs InsightService.
func NewInsightService(logger *zap.Logger) *InsightService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InsightService{logger: logger}
}

// Analyze is a pure function of the transcript apart from logging.
func (s *InsightService) Analyze(t *models.Transcript, now time.Time) models.AnalysisReport {
	report := models.AnalysisReport{
		GeneratedAt:     now,
		Summary:         models.RecomputeTranscript(t),
		Trend:           OverallTrend(t),
		Distribution:    GradeDistribution(t.Courses()),
		Recommendations: GenerateRecommendations(t),
		Semesters:       SemesterInsights(t),
		Achievements:    AchievementStatuses(t),
	}
	if extremes, ok := ExtremeSemesters(t); ok {
		report.Extremes = &extremes
	}
	s.logger.Debug("transcript analysed",
		zap.Float64("ipk", report.Summary.IPK),
		zap.String("trend", string(report.Trend)),
		zap.Int("recommendations", len(report.Recommendations)),
	)
	return report
}

func refOf(s *models.Semester) models.SemesterRef {
	return models.SemesterRef{ID: s.ID, Number: s.Number, IP: s.IP.Float()}
}

// roundDelta rounds a signed difference to two decimals, half away from zero.
func roundDelta(x float64) float64 {
	return math.Round(x*100) / 100
}

func gap(threshold, value float64) float64 {
	if value >= threshold {
		return 0
	}
	return roundDelta(threshold - value)
}
