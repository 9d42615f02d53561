package models

import (
	"fmt"
	"strings"

	appErrors "github.com/noah-isme/ipk-calculator/pkg/errors"
)

// SKS bounds for a single course.
const (
	MinCourseSKS = 1
	MaxCourseSKS = 6
)

// Course is one completed unit of study inside a semester.
type Course struct {
	ID          ID         `json:"id"`
	Name        string     `json:"name"`
	SKS         int        `json:"sks"`
	Grade       GradePoint `json:"grade"`
	GradeLetter string     `json:"gradeLetter"`
}

// NewCourse stamps a fresh identity and derives the letter. Callers validate
// name and SKS beforehand; the grade lookup is the only check repeated here.
func NewCourse(name string, sks int, grade GradePoint) (Course, error) {
	point, ok := Canonical(grade)
	if !ok {
		return Course{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown grade point %v", float64(grade)))
	}
	letter, _ := LetterFor(point)
	return Course{
		ID:          NewID(),
		Name:        strings.TrimSpace(name),
		SKS:         sks,
		Grade:       point,
		GradeLetter: letter,
	}, nil
}

// QualityPoints is grade × SKS.
func (c Course) QualityPoints() float64 {
	return float64(c.Grade) * float64(c.SKS)
}
