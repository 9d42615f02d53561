package dto

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/ipk-calculator/internal/models"
)

// CourseInput is what the input-collection side hands over when a course is
// added or edited.
type CourseInput struct {
	Name  string            `json:"name" validate:"required,max=120"`
	SKS   int               `json:"sks" validate:"min=1,max=6"`
	Grade models.GradePoint `json:"grade" validate:"gradepoint"`
}

// Normalize trims the name so whitespace-only names fail "required".
func (in *CourseInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
}

// SemesterNoteInput carries the optional semester annotations.
type SemesterNoteInput struct {
	Note   string   `json:"note" validate:"max=1000"`
	Tags   []string `json:"tags" validate:"max=20,dive,max=40"`
	Lesson string   `json:"lesson" validate:"max=1000"`
}

// NewValidator returns a validator with the domain tags registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	RegisterValidations(v)
	return v
}

// RegisterValidations adds the "gradepoint" tag to an existing validator.
func RegisterValidations(v *validator.Validate) {
	_ = v.RegisterValidation("gradepoint", func(fl validator.FieldLevel) bool {
		return models.IsCanonical(models.GradePoint(fl.Field().Float()))
	})
}

// ValidationMessage renders validator failures as a single readable sentence.
func ValidationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return strings.Join(msgs, "; ")
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "Name":
		if fe.Tag() == "required" {
			return "course name is required"
		}
		return fmt.Sprintf("course name must be at most %s characters", fe.Param())
	case "SKS":
		return fmt.Sprintf("sks must be between %d and %d", models.MinCourseSKS, models.MaxCourseSKS)
	case "Grade":
		points := models.CanonicalGradePoints()
		parts := make([]string, len(points))
		for i, g := range points {
			parts[i] = g.String()
		}
		return "grade must be one of " + strings.Join(parts, ", ")
	default:
		return fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag())
	}
}
