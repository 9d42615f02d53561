package models

import (
	"encoding/json"
	"fmt"
	"strings"

	appErrors "github.com/noah-isme/ipk-calculator/pkg/errors"
)

// Transcript is the chronological list of semesters. It owns its semesters
// exclusively; semester numbers are always 1..N.
type Transcript struct {
	Semesters []*Semester
}

// NewTranscript returns an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{}
}

// AddSemester appends an empty semester numbered after the last one.
func (t *Transcript) AddSemester() *Semester {
	s := &Semester{
		ID:      NewID(),
		Number:  len(t.Semesters) + 1,
		Courses: []Course{},
	}
	t.Semesters = append(t.Semesters, s)
	return s
}

// RemoveSemester deletes a semester and renumbers the rest.
func (t *Transcript) RemoveSemester(id ID) error {
	idx := t.semesterIndex(id)
	if idx < 0 {
		return semesterNotFound(id)
	}
	t.Semesters = append(t.Semesters[:idx], t.Semesters[idx+1:]...)
	t.renumber()
	return nil
}

// Semester looks a semester up by identity.
func (t *Transcript) Semester(id ID) (*Semester, error) {
	idx := t.semesterIndex(id)
	if idx < 0 {
		return nil, semesterNotFound(id)
	}
	return t.Semesters[idx], nil
}

// SemesterByNumber resolves a 1-based display number.
func (t *Transcript) SemesterByNumber(n int) (*Semester, error) {
	if n < 1 || n > len(t.Semesters) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("semester %d not found", n))
	}
	return t.Semesters[n-1], nil
}

// Position returns the zero-based index of a semester, or -1.
func (t *Transcript) Position(id ID) int {
	return t.semesterIndex(id)
}

// Reset drops every semester.
func (t *Transcript) Reset() {
	t.Semesters = nil
}

// IsEmpty reports whether there are no semesters.
func (t *Transcript) IsEmpty() bool {
	return t == nil || len(t.Semesters) == 0
}

// Courses flattens every course in semester order.
func (t *Transcript) Courses() []Course {
	if t == nil {
		return nil
	}
	total := 0
	for _, s := range t.Semesters {
		total += len(s.Courses)
	}
	out := make([]Course, 0, total)
	for _, s := range t.Semesters {
		out = append(out, s.Courses...)
	}
	return out
}

// NonEmptySemesters returns semesters that have at least one course.
func (t *Transcript) NonEmptySemesters() []*Semester {
	if t == nil {
		return nil
	}
	out := make([]*Semester, 0, len(t.Semesters))
	for _, s := range t.Semesters {
		if !s.IsEmpty() {
			out = append(out, s)
		}
	}
	return out
}

// Cumulative is shorthand for RecomputeTranscript.
func (t *Transcript) Cumulative() Summary {
	return RecomputeTranscript(t)
}

// Normalize restores every derived field after decoding a snapshot: numbers,
// letters, IP and total SKS are recomputed and missing identities are filled.
func (t *Transcript) Normalize() error {
	kept := t.Semesters[:0]
	for _, s := range t.Semesters {
		if s == nil {
			continue
		}
		if s.ID == "" {
			s.ID = NewID()
		}
		if s.Courses == nil {
			s.Courses = []Course{}
		}
		for i := range s.Courses {
			c := &s.Courses[i]
			if c.ID == "" {
				c.ID = NewID()
			}
			if err := normalizeCourse(c); err != nil {
				return err
			}
		}
		s.Tags = normalizeTags(s.Tags)
		RecomputeSemester(s)
		kept = append(kept, s)
	}
	t.Semesters = kept
	t.renumber()
	return nil
}

// MarshalJSON encodes the transcript as a bare array of semesters.
func (t *Transcript) MarshalJSON() ([]byte, error) {
	if t == nil || t.Semesters == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(t.Semesters)
}

// UnmarshalJSON decodes a semester array and normalises it.
func (t *Transcript) UnmarshalJSON(data []byte) error {
	var semesters []*Semester
	if err := json.Unmarshal(data, &semesters); err != nil {
		return err
	}
	t.Semesters = semesters
	return t.Normalize()
}

func (t *Transcript) renumber() {
	for i, s := range t.Semesters {
		s.Number = i + 1
	}
}

func (t *Transcript) semesterIndex(id ID) int {
	if t == nil {
		return -1
	}
	for i, s := range t.Semesters {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// normalizeCourse applies the input rules to a decoded course so a stored
// record cannot bypass them.
func normalizeCourse(c *Course) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("course %s has no name", c.ID))
	}
	if c.SKS < MinCourseSKS || c.SKS > MaxCourseSKS {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("course %q has sks %d outside %d..%d", c.Name, c.SKS, MinCourseSKS, MaxCourseSKS))
	}
	point, ok := Canonical(c.Grade)
	if !ok {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("course %q has unknown grade point %v", c.Name, float64(c.Grade)))
	}
	c.Grade = point
	c.GradeLetter, _ = LetterFor(point)
	return nil
}

func semesterNotFound(id ID) error {
	return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("semester %s not found", id))
}
