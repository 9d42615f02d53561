package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/ipk-calculator/internal/dto"
	"github.com/noah-isme/ipk-calculator/internal/models"
	appErrors "github.com/noah-isme/ipk-calculator/pkg/errors"
)

type transcriptStore interface {
	Load(ctx context.Context) (*models.Transcript, bool, error)
	Save(ctx context.Context, t *models.Transcript) error
}

// Mutation labels used for logging and metrics.
const (
	opAddSemester      = "add_semester"
	opRemoveSemester   = "remove_semester"
	opAnnotateSemester = "annotate_semester"
	opAddCourse        = "add_course"
	opUpdateCourse     = "update_course"
	opRemoveCourse     = "remove_course"
	opReset            = "reset"
)

// TranscriptService applies mutations to a caller-owned transcript and saves
// the snapshot afterwards. A failed save leaves the in-memory mutation in
// place and is reported as a storage error.
type TranscriptService struct {
	store     transcriptStore
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewTranscriptService constructs TranscriptService.
func NewTranscriptService(store transcriptStore, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *TranscriptService {
	if validate == nil {
		validate = dto.NewValidator()
	} else {
		dto.RegisterValidations(validate)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TranscriptService{store: store, validator: validate, metrics: metrics, logger: logger}
}

// Load reads the stored snapshot. A missing snapshot yields an empty transcript.
func (s *TranscriptService) Load(ctx context.Context) (*models.Transcript, error) {
	start := time.Now()
	t, found, err := s.store.Load(ctx)
	if s.metrics != nil {
		s.metrics.ObserveStore("load", time.Since(start), err)
	}
	if err != nil {
		return nil, wrapStorage(err, "failed to load transcript")
	}
	if !found || t == nil {
		s.logger.Debug("no stored transcript, starting empty")
		t = models.NewTranscript()
	}
	if s.metrics != nil {
		s.metrics.SetSummary(t.Cumulative())
	}
	return t, nil
}

// Summary returns fresh cumulative statistics.
func (s *TranscriptService) Summary(t *models.Transcript) models.Summary {
	return models.RecomputeTranscript(t)
}

// AddSemester appends an empty semester.
func (s *TranscriptService) AddSemester(ctx context.Context, t *models.Transcript) (*models.Semester, error) {
	sem := t.AddSemester()
	s.logger.Info("semester added", zap.Int("number", sem.Number), zap.String("semester_id", sem.ID.String()))
	return sem, s.commit(ctx, t, opAddSemester)
}

// RemoveSemester deletes a semester; later semesters are renumbered.
func (s *TranscriptService) RemoveSemester(ctx context.Context, t *models.Transcript, id models.ID) error {
	if err := t.RemoveSemester(id); err != nil {
		return err
	}
	s.logger.Info("semester removed", zap.String("semester_id", id.String()), zap.Int("remaining", len(t.Semesters)))
	return s.commit(ctx, t, opRemoveSemester)
}

// AnnotateSemester replaces note, tags and lesson learned.
func (s *TranscriptService) AnnotateSemester(ctx context.Context, t *models.Transcript, id models.ID, in dto.SemesterNoteInput) (*models.Semester, error) {
	if err := s.validator.Struct(in); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, "invalid semester note")
	}
	sem, err := t.Semester(id)
	if err != nil {
		return nil, err
	}
	sem.Annotate(in.Note, in.Tags, in.Lesson)
	return sem, s.commit(ctx, t, opAnnotateSemester)
}

// AddCourse validates the input and appends a course to a semester.
func (s *TranscriptService) AddCourse(ctx context.Context, t *models.Transcript, semesterID models.ID, in dto.CourseInput) (models.Course, error) {
	if err := s.validateCourse(&in); err != nil {
		return models.Course{}, err
	}
	sem, err := t.Semester(semesterID)
	if err != nil {
		return models.Course{}, err
	}
	course, err := models.NewCourse(in.Name, in.SKS, in.Grade)
	if err != nil {
		return models.Course{}, err
	}
	sem.AddCourse(course)
	s.logger.Info("course added",
		zap.Int("semester", sem.Number),
		zap.String("course", course.Name),
		zap.Int("sks", course.SKS),
		zap.String("grade", course.GradeLetter),
		zap.String("ip", sem.IP.String()),
	)
	return course, s.commit(ctx, t, opAddCourse)
}

// UpdateCourse replaces a course's name, SKS and grade, keeping its identity.
func (s *TranscriptService) UpdateCourse(ctx context.Context, t *models.Transcript, semesterID, courseID models.ID, in dto.CourseInput) (models.Course, error) {
	if err := s.validateCourse(&in); err != nil {
		return models.Course{}, err
	}
	sem, err := t.Semester(semesterID)
	if err != nil {
		return models.Course{}, err
	}
	course, err := sem.UpdateCourse(courseID, in.Name, in.SKS, in.Grade)
	if err != nil {
		return models.Course{}, err
	}
	s.logger.Info("course updated", zap.Int("semester", sem.Number), zap.String("course_id", courseID.String()), zap.String("ip", sem.IP.String()))
	return course, s.commit(ctx, t, opUpdateCourse)
}

// RemoveCourse deletes a course from a semester.
func (s *TranscriptService) RemoveCourse(ctx context.Context, t *models.Transcript, semesterID, courseID models.ID) error {
	sem, err := t.Semester(semesterID)
	if err != nil {
		return err
	}
	if err := sem.RemoveCourse(courseID); err != nil {
		return err
	}
	s.logger.Info("course removed", zap.Int("semester", sem.Number), zap.String("course_id", courseID.String()), zap.String("ip", sem.IP.String()))
	return s.commit(ctx, t, opRemoveCourse)
}

// Reset drops every semester.
func (s *TranscriptService) Reset(ctx context.Context, t *models.Transcript) error {
	t.Reset()
	s.logger.Warn("transcript reset")
	return s.commit(ctx, t, opReset)
}

func (s *TranscriptService) validateCourse(in *dto.CourseInput) error {
	in.Normalize()
	if err := s.validator.Struct(in); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, dto.ValidationMessage(err))
	}
	return nil
}

func (s *TranscriptService) commit(ctx context.Context, t *models.Transcript, operation string) error {
	if s.metrics != nil {
		s.metrics.RecordMutation(operation)
		s.metrics.SetSummary(t.Cumulative())
	}
	start := time.Now()
	err := s.store.Save(ctx, t)
	if s.metrics != nil {
		s.metrics.ObserveStore("save", time.Since(start), err)
	}
	if err != nil {
		s.logger.Error("save transcript", zap.String("operation", operation), zap.Error(err))
		return wrapStorage(err, "failed to save transcript")
	}
	return nil
}

func wrapStorage(err error, message string) error {
	if errors.Is(err, appErrors.ErrStorage) {
		return err
	}
	return appErrors.Wrap(err, appErrors.ErrStorage.Code, message)
}
