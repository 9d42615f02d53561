package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/ipk-calculator/internal/dto"
	"github.com/noah-isme/ipk-calculator/internal/models"
	"github.com/noah-isme/ipk-calculator/internal/repository"
	"github.com/noah-isme/ipk-calculator/internal/service"
	"github.com/noah-isme/ipk-calculator/pkg/config"
	appErrors "github.com/noah-isme/ipk-calculator/pkg/errors"
	"github.com/noah-isme/ipk-calculator/pkg/storage"
)

const usage = `usage: ipk <command> [flags]

commands:
  summary                                      show semesters and the cumulative IPK
  semester add                                 append an empty semester
  semester rm   -n N                           delete semester N
  semester note -n N [-note T] [-tags a,b] [-lesson T]
  course add  -semester N -name NAME -sks K -grade G
  course edit -semester N -course I -name NAME -sks K -grade G
  course rm   -semester N -course I
  analyze [-json]                              trends, distribution and recommendations
  achievements                                 list achievements
  export -format txt|csv|pdf                   write the transcript to the export dir
  reset -yes                                   delete every semester
`

var errUsage = errors.New("invalid usage")

type app struct {
	transcripts  *service.TranscriptService
	insights     *service.InsightService
	achievements *service.AchievementService
	reports      *service.ReportService
	metrics      *service.MetricsService
	logger       *zap.Logger
	out          io.Writer
	now          func() time.Time
}

func newApp(cfg *config.Config, store repository.KeyValueStore, logr *zap.Logger, out io.Writer) (*app, error) {
	exports, err := storage.NewLocalStorage(cfg.Export.Dir)
	if err != nil {
		return nil, err
	}
	metrics := service.NewMetricsService()
	transcriptRepo := repository.NewTranscriptRepository(store, cfg.Store.TranscriptKey)
	achievementRepo := repository.NewAchievementRepository(store, cfg.Store.AchievementKey)

	return &app{
		transcripts:  service.NewTranscriptService(transcriptRepo, dto.NewValidator(), metrics, logr),
		insights:     service.NewInsightService(logr),
		achievements: service.NewAchievementService(achievementRepo, logr),
		reports:      service.NewReportService(exports, logr, nil, nil),
		metrics:      metrics,
		logger:       logr,
		out:          out,
		now:          time.Now,
	}, nil
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}
	t, err := a.transcripts.Load(ctx)
	if err != nil {
		return err
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "summary":
		a.printSummary(t)
		return nil
	case "semester":
		return a.withAchievements(ctx, t, func() error { return a.semesterCommand(ctx, t, rest) })
	case "course":
		return a.withAchievements(ctx, t, func() error { return a.courseCommand(ctx, t, rest) })
	case "analyze":
		return a.analyze(t, rest)
	case "achievements":
		a.printAchievements(t)
		return nil
	case "export":
		return a.export(ctx, t, rest)
	case "reset":
		return a.reset(ctx, t, rest)
	case "help", "-h", "-help", "--help":
		fmt.Fprint(a.out, usage)
		return nil
	default:
		return usageError("unknown command %q", cmd)
	}
}

// withAchievements runs a mutation, then announces milestones reached for the
// first time. A failed save is still followed by the announcement since the
// in-memory transcript changed.
func (a *app) withAchievements(ctx context.Context, t *models.Transcript, mutate func() error) error {
	mutateErr := mutate()
	if mutateErr != nil && !errors.Is(mutateErr, appErrors.ErrStorage) {
		return mutateErr
	}
	unlocked, err := a.achievements.Sync(ctx, t)
	if err != nil {
		a.logger.Warn("achievement sync failed", zap.Error(err))
	}
	byID := make(map[string]service.AchievementDefinition)
	for _, def := range service.AchievementDefinitions() {
		byID[def.ID] = def
	}
	for _, id := range unlocked {
		def := byID[id]
		fmt.Fprintf(a.out, "Achievement unlocked: %s - %s\n", def.Name, def.Description)
	}
	return mutateErr
}

func (a *app) semesterCommand(ctx context.Context, t *models.Transcript, args []string) error {
	if len(args) == 0 {
		return usageError("semester needs add, rm or note")
	}
	fs := newFlagSet("semester " + args[0])
	number := fs.Int("n", 0, "semester number")
	note := fs.String("note", "", "free-text note")
	tags := fs.String("tags", "", "comma separated tags")
	lesson := fs.String("lesson", "", "lesson learned")
	if err := fs.Parse(args[1:]); err != nil {
		return usageError("%v", err)
	}

	switch args[0] {
	case "add":
		sem, err := a.transcripts.AddSemester(ctx, t)
		if sem != nil {
			fmt.Fprintf(a.out, "Semester %d added\n", sem.Number)
		}
		return err
	case "rm":
		sem, err := t.SemesterByNumber(*number)
		if err != nil {
			return err
		}
		if err := a.transcripts.RemoveSemester(ctx, t, sem.ID); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Semester %d removed, %d left\n", *number, len(t.Semesters))
		return nil
	case "note":
		sem, err := t.SemesterByNumber(*number)
		if err != nil {
			return err
		}
		in := dto.SemesterNoteInput{Note: *note, Tags: splitTags(*tags), Lesson: *lesson}
		if _, err := a.transcripts.AnnotateSemester(ctx, t, sem.ID, in); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Semester %d updated\n", sem.Number)
		return nil
	default:
		return usageError("unknown semester action %q", args[0])
	}
}

func (a *app) courseCommand(ctx context.Context, t *models.Transcript, args []string) error {
	if len(args) == 0 {
		return usageError("course needs add, edit or rm")
	}
	fs := newFlagSet("course " + args[0])
	semNumber := fs.Int("semester", 0, "semester number")
	index := fs.Int("course", 0, "course position inside the semester")
	name := fs.String("name", "", "course name")
	sks := fs.Int("sks", 0, "credit weight (1-6)")
	grade := fs.String("grade", "", "grade letter or point, e.g. A- or 3.7")
	if err := fs.Parse(args[1:]); err != nil {
		return usageError("%v", err)
	}

	sem, err := t.SemesterByNumber(*semNumber)
	if err != nil {
		return err
	}

	switch args[0] {
	case "add":
		in, err := courseInput(*name, *sks, *grade)
		if err != nil {
			return err
		}
		course, err := a.transcripts.AddCourse(ctx, t, sem.ID, in)
		if err != nil && course.ID == "" {
			return err
		}
		fmt.Fprintf(a.out, "Added %s (%d SKS, %s) to semester %d, IP %s\n", course.Name, course.SKS, course.GradeLetter, sem.Number, sem.IP)
		return err
	case "edit":
		target, err := courseAt(sem, *index)
		if err != nil {
			return err
		}
		in, err := courseInput(*name, *sks, *grade)
		if err != nil {
			return err
		}
		course, err := a.transcripts.UpdateCourse(ctx, t, sem.ID, target.ID, in)
		if err != nil && course.ID == "" {
			return err
		}
		fmt.Fprintf(a.out, "Updated %s in semester %d, IP %s\n", course.Name, sem.Number, sem.IP)
		return err
	case "rm":
		target, err := courseAt(sem, *index)
		if err != nil {
			return err
		}
		if err := a.transcripts.RemoveCourse(ctx, t, sem.ID, target.ID); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Removed %s from semester %d, IP %s\n", target.Name, sem.Number, sem.IP)
		return nil
	default:
		return usageError("unknown course action %q", args[0])
	}
}

func (a *app) analyze(t *models.Transcript, args []string) error {
	fs := newFlagSet("analyze")
	asJSON := fs.Bool("json", false, "print the report as JSON")
	if err := fs.Parse(args); err != nil {
		return usageError("%v", err)
	}
	report := a.insights.Analyze(t, a.now())
	if *asJSON {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Fprintf(a.out, "IPK %s (%s), %d SKS, trend %s\n",
		models.FormatGPA(report.Summary.IPK), report.Summary.Predicate.Label(), report.Summary.TotalSKS, report.Trend)
	if report.Extremes != nil {
		fmt.Fprintf(a.out, "Best semester: %d (IP %s)\n", report.Extremes.Best.Number, models.FormatGPA(report.Extremes.Best.IP))
		if w := report.Extremes.Worst; w != nil {
			fmt.Fprintf(a.out, "Worst semester: %d (IP %s)\n", w.Number, models.FormatGPA(w.IP))
		}
	}
	if report.Distribution.Total > 0 {
		parts := make([]string, 0, len(models.Bands))
		for _, band := range models.Bands {
			parts = append(parts, fmt.Sprintf("%s %d%%", band, report.Distribution.Percent.Get(band)))
		}
		fmt.Fprintf(a.out, "Distribution: %s\n", strings.Join(parts, ", "))
	}
	for _, s := range report.Semesters {
		line := fmt.Sprintf("  Semester %d: IP %s, %d SKS (%s), vs others %s", s.Number, models.FormatGPA(s.IP), s.TotalSKS, s.Load, s.VsCohort.Standing)
		if s.VsPrevious != nil {
			line += fmt.Sprintf(", vs previous %s (%+.2f)", s.VsPrevious.Trend, s.VsPrevious.Delta)
		}
		fmt.Fprintln(a.out, line)
	}
	for _, rec := range report.Recommendations {
		fmt.Fprintf(a.out, "[%s] %s: %s\n", rec.Severity, rec.Title, rec.Message)
		for _, action := range rec.Actions {
			fmt.Fprintf(a.out, "    - %s\n", action)
		}
	}
	return nil
}

func (a *app) export(ctx context.Context, t *models.Transcript, args []string) error {
	fs := newFlagSet("export")
	format := fs.String("format", string(models.ReportFormatText), "txt, csv or pdf")
	if err := fs.Parse(args); err != nil {
		return usageError("%v", err)
	}
	parsed, err := models.ParseReportFormat(*format)
	if err != nil {
		return usageError("%v", err)
	}
	result, err := a.reports.Export(ctx, t, parsed, a.now())
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Transcript written to %s (%d bytes)\n", result.Path, result.Size)
	return nil
}

func (a *app) reset(ctx context.Context, t *models.Transcript, args []string) error {
	fs := newFlagSet("reset")
	yes := fs.Bool("yes", false, "confirm deleting every semester")
	if err := fs.Parse(args); err != nil {
		return usageError("%v", err)
	}
	if !*yes {
		return usageError("reset deletes every semester and cannot be undone; pass -yes to confirm")
	}
	if err := a.transcripts.Reset(ctx, t); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "All semesters deleted")
	return nil
}

func (a *app) printSummary(t *models.Transcript) {
	summary := a.transcripts.Summary(t)
	if t.IsEmpty() {
		fmt.Fprintln(a.out, "No semesters yet. Start with: ipk semester add")
		return
	}
	for _, s := range t.Semesters {
		fmt.Fprintf(a.out, "Semester %d: IP %s, %d SKS, %d courses\n", s.Number, s.IP, s.TotalSKS, len(s.Courses))
		for i, c := range s.Courses {
			fmt.Fprintf(a.out, "  %d. %s  %d SKS  %s (%s)\n", i+1, c.Name, c.SKS, c.GradeLetter, c.Grade)
		}
		if len(s.Tags) > 0 {
			fmt.Fprintf(a.out, "  tags: %s\n", strings.Join(s.Tags, ", "))
		}
	}
	fmt.Fprintf(a.out, "IPK %s, %d SKS, %d courses, %s\n",
		models.FormatGPA(summary.IPK), summary.TotalSKS, summary.TotalCourses, summary.Predicate.Label())
}

func (a *app) printAchievements(t *models.Transcript) {
	for _, status := range service.AchievementStatuses(t) {
		mark := " "
		if status.Unlocked {
			mark = "x"
		}
		fmt.Fprintf(a.out, "[%s] %s - %s\n", mark, status.Name, status.Description)
	}
}

func courseInput(name string, sks int, rawGrade string) (dto.CourseInput, error) {
	rawGrade = strings.TrimSpace(rawGrade)
	grade, ok := models.ParseGradePoint(strings.ToUpper(rawGrade))
	if !ok {
		f, err := strconv.ParseFloat(rawGrade, 64)
		if err != nil {
			return dto.CourseInput{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("grade %q is neither a letter nor a number", rawGrade))
		}
		// the validator produces the canonical-scale message
		grade = models.GradePoint(f)
	}
	return dto.CourseInput{Name: name, SKS: sks, Grade: grade}, nil
}

func courseAt(sem *models.Semester, position int) (models.Course, error) {
	if position < 1 || position > len(sem.Courses) {
		return models.Course{}, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("semester %d has no course %d", sem.Number, position))
	}
	return sem.Courses[position-1], nil
}

func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func usageError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}
