package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	appErrors "github.com/noah-isme/ipk-calculator/pkg/errors"
)

// Average is a two-decimal grade average. Snapshots have carried it both as a
// JSON number and as a preformatted string, so both are accepted on read.
type Average float64

// MarshalJSON writes the value as a number with exactly two decimals.
func (a Average) MarshalJSON() ([]byte, error) {
	return []byte(FormatGPA(float64(a))), nil
}

// UnmarshalJSON accepts 3.5, "3.50" and null.
func (a *Average) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = 0
		return nil
	}
	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		*a = 0
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("decode average %q: %w", raw, err)
	}
	*a = Average(f)
	return nil
}

// Float returns the plain value.
func (a Average) Float() float64 {
	return float64(a)
}

func (a Average) String() string {
	return FormatGPA(float64(a))
}

// Semester is one term: an ordered course list plus derived statistics that
// are recomputed after every course mutation.
type Semester struct {
	ID       ID       `json:"id"`
	Number   int      `json:"number"`
	Courses  []Course `json:"courses"`
	IP       Average  `json:"ip"`
	TotalSKS int      `json:"totalSKS"`
	Note     string   `json:"note,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Lesson   string   `json:"lesson,omitempty"`
}

// IsEmpty reports whether the semester has no courses.
func (s *Semester) IsEmpty() bool {
	return len(s.Courses) == 0
}

// Course returns a copy of the course with the given id.
func (s *Semester) Course(id ID) (Course, error) {
	idx := s.courseIndex(id)
	if idx < 0 {
		return Course{}, courseNotFound(id)
	}
	return s.Courses[idx], nil
}

// AddCourse appends a course and recomputes the semester.
func (s *Semester) AddCourse(c Course) {
	s.Courses = append(s.Courses, c)
	RecomputeSemester(s)
}

// UpdateCourse replaces name, SKS and grade while keeping the identity.
func (s *Semester) UpdateCourse(id ID, name string, sks int, grade GradePoint) (Course, error) {
	idx := s.courseIndex(id)
	if idx < 0 {
		return Course{}, courseNotFound(id)
	}
	updated, err := NewCourse(name, sks, grade)
	if err != nil {
		return Course{}, err
	}
	updated.ID = id
	s.Courses[idx] = updated
	RecomputeSemester(s)
	return updated, nil
}

// RemoveCourse deletes a course and recomputes the semester.
func (s *Semester) RemoveCourse(id ID) error {
	idx := s.courseIndex(id)
	if idx < 0 {
		return courseNotFound(id)
	}
	s.Courses = append(s.Courses[:idx], s.Courses[idx+1:]...)
	RecomputeSemester(s)
	return nil
}

// Annotate replaces the free-text note, tag set and lesson learned.
// Tags are trimmed and deduplicated, keeping first occurrence order.
func (s *Semester) Annotate(note string, tags []string, lesson string) {
	s.Note = strings.TrimSpace(note)
	s.Lesson = strings.TrimSpace(lesson)
	s.Tags = normalizeTags(tags)
}

func (s *Semester) courseIndex(id ID) int {
	for i := range s.Courses {
		if s.Courses[i].ID == id {
			return i
		}
	}
	return -1
}

func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func courseNotFound(id ID) error {
	return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("course %s not found", id))
}
