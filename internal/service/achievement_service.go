package service

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/noah-isme/ipk-calculator/internal/models"
)

// Achievement identifiers, in catalogue order.
const (
	AchievementPerfectSemester = "perfect_semester"
	AchievementCumLaude        = "cum_laude"
	AchievementCourseCollector = "course_collector"
	AchievementRisingStar      = "rising_star"
	AchievementStraightA       = "straight_a"
	AchievementSteadyHand      = "steady_hand"
	AchievementComeback        = "comeback"
	AchievementCreditMilestone = "credit_milestone"
)

const (
	courseCollectorCount  = 20
	risingStarRun         = 3
	straightAThreshold    = models.GradeAMinus
	steadyWindow          = 4
	steadyTolerance       = 0.1
	comebackDelta         = 0.5
	creditMilestoneSKS    = 144
	achievementFloatSlack = 1e-9
)

// AchievementDefinition is one named milestone. Satisfied is a pure function
// of the whole transcript.
type AchievementDefinition struct {
	ID          string
	Name        string
	Description string
	check       func(t *models.Transcript, summary models.Summary) bool
}

// Satisfied evaluates the milestone against a transcript.
func (d AchievementDefinition) Satisfied(t *models.Transcript) bool {
	return d.check(t, models.RecomputeTranscript(t))
}

// AchievementDefinitions returns the fixed, ordered catalogue.
func AchievementDefinitions() []AchievementDefinition {
	return []AchievementDefinition{
		{AchievementPerfectSemester, "Perfect Semester", "A semester with IP 4.00", hasPerfectSemester},
		{AchievementCumLaude, "Cum Laude", "IPK at or above 3.75", func(_ *models.Transcript, s models.Summary) bool {
			return s.IPK >= models.CumLaudeThreshold
		}},
		{AchievementCourseCollector, "Course Collector", "20 courses completed", func(_ *models.Transcript, s models.Summary) bool {
			return s.TotalCourses >= courseCollectorCount
		}},
		{AchievementRisingStar, "Rising Star", "3 semesters in a row with a higher IP", hasRisingRun},
		{AchievementStraightA, "Straight A", "Every course in a semester at A- or better", hasStraightASemester},
		{AchievementSteadyHand, "Steady Hand", "Last 4 semester IPs within 0.1 of their mean", isSteady},
		{AchievementComeback, "Comeback", "IP up by 0.5 right after a drop", hasComeback},
		{AchievementCreditMilestone, "Credit Milestone", "144 SKS completed", func(_ *models.Transcript, s models.Summary) bool {
			return s.TotalSKS >= creditMilestoneSKS
		}},
	}
}

// EvaluateAchievements returns the ids of every satisfied milestone in
// catalogue order. Nothing is cached; historical edits are always reflected.
func EvaluateAchievements(t *models.Transcript) []string {
	summary := models.RecomputeTranscript(t)
	out := make([]string, 0)
	for _, def := range AchievementDefinitions() {
		if def.check(t, summary) {
			out = append(out, def.ID)
		}
	}
	return out
}

// AchievementStatuses reports every catalogue entry with its unlocked flag.
func AchievementStatuses(t *models.Transcript) []models.AchievementStatus {
	summary := models.RecomputeTranscript(t)
	defs := AchievementDefinitions()
	out := make([]models.AchievementStatus, 0, len(defs))
	for _, def := range defs {
		out = append(out, models.AchievementStatus{
			ID:          def.ID,
			Name:        def.Name,
			Description: def.Description,
			Unlocked:    def.check(t, summary),
		})
	}
	return out
}

// DiffAchievements returns ids in current that are absent from previous,
// keeping the order of current.
func DiffAchievements(previous, current []string) []string {
	seen := make(map[string]struct{}, len(previous))
	for _, id := range previous {
		seen[id] = struct{}{}
	}
	out := make([]string, 0)
	for _, id := range current {
		if _, ok := seen[id]; ok {
			continue
		}
		out = append(out, id)
	}
	return out
}

func nonEmptyIPs(t *models.Transcript) []float64 {
	semesters := t.NonEmptySemesters()
	ips := make([]float64, len(semesters))
	for i, s := range semesters {
		ips[i] = s.IP.Float()
	}
	return ips
}

func hasPerfectSemester(t *models.Transcript, _ models.Summary) bool {
	for _, ip := range nonEmptyIPs(t) {
		if ip >= float64(models.MaxGradePoint)-achievementFloatSlack {
			return true
		}
	}
	return false
}

func hasRisingRun(t *models.Transcript, _ models.Summary) bool {
	ips := nonEmptyIPs(t)
	run := 1
	for i := 1; i < len(ips); i++ {
		if ips[i] > ips[i-1] {
			run++
			if run >= risingStarRun {
				return true
			}
			continue
		}
		run = 1
	}
	return false
}

func hasStraightASemester(t *models.Transcript, _ models.Summary) bool {
	for _, s := range t.NonEmptySemesters() {
		all := true
		for _, c := range s.Courses {
			if c.Grade < straightAThreshold {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

func isSteady(t *models.Transcript, _ models.Summary) bool {
	ips := nonEmptyIPs(t)
	if len(ips) < steadyWindow {
		return false
	}
	window := ips[len(ips)-steadyWindow:]
	var sum float64
	for _, ip := range window {
		sum += ip
	}
	mean := sum / float64(len(window))
	for _, ip := range window {
		if math.Abs(ip-mean) > steadyTolerance+achievementFloatSlack {
			return false
		}
	}
	return true
}

func hasComeback(t *models.Transcript, _ models.Summary) bool {
	ips := nonEmptyIPs(t)
	for i := 2; i < len(ips); i++ {
		dropped := ips[i-1] < ips[i-2]
		if dropped && ips[i]-ips[i-1] >= comebackDelta-achievementFloatSlack {
			return true
		}
	}
	return false
}

type achievementStore interface {
	Load(ctx context.Context) ([]string, error)
	Save(ctx context.Context, ids []string) error
}

// AchievementService remembers which milestones have already been announced.
// It sits on the caller side of the evaluator.
type AchievementService struct {
	store  achievementStore
	logger *zap.Logger
}

// NewAchievementService constructs AchievementService.
func NewAchievementService(store achievementStore, logger *zap.Logger) *AchievementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AchievementService{store: store, logger: logger}
}

// Sync evaluates the transcript, returns milestones never announced before and
// records them. Previously announced ids stay recorded even if an edit makes
// them unsatisfied, so each milestone is announced once.
func (s *AchievementService) Sync(ctx context.Context, t *models.Transcript) ([]string, error) {
	previous, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	current := EvaluateAchievements(t)
	unlocked := DiffAchievements(previous, current)
	if len(unlocked) == 0 {
		return unlocked, nil
	}
	if err := s.store.Save(ctx, append(append([]string{}, previous...), unlocked...)); err != nil {
		return nil, err
	}
	for _, id := range unlocked {
		s.logger.Info("achievement unlocked", zap.String("achievement", id))
	}
	return unlocked, nil
}
