package models

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/ipk-calculator/pkg/errors"
)

func mustCourse(t *testing.T, name string, sks int, grade GradePoint) Course {
	t.Helper()
	c, err := NewCourse(name, sks, grade)
	require.NoError(t, err)
	return c
}

func TestSingleCourseSemesterAverageEqualsGrade(t *testing.T) {
	for _, g := range CanonicalGradePoints() {
		for sks := MinCourseSKS; sks <= MaxCourseSKS; sks++ {
			sem := &Semester{}
			sem.AddCourse(mustCourse(t, "x", sks, g))
			assert.InDelta(t, float64(g), sem.IP.Float(), 1e-9)
			assert.Equal(t, sks, sem.TotalSKS)
		}
	}
}

func TestRecomputeSemesterScenario(t *testing.T) {
	sem := &Semester{}
	sem.AddCourse(mustCourse(t, "Kalkulus", 3, GradeA))
	sem.AddCourse(mustCourse(t, "Fisika", 3, GradeB))

	assert.Equal(t, Average(3.5), sem.IP)
	assert.Equal(t, 6, sem.TotalSKS)

	RecomputeSemester(sem)
	first := *sem
	RecomputeSemester(sem)
	assert.Equal(t, first.IP, sem.IP)
	assert.Equal(t, first.TotalSKS, sem.TotalSKS)
}

func TestRecomputeSemesterEmpty(t *testing.T) {
	sem := &Semester{IP: 3.2, TotalSKS: 9}
	RecomputeSemester(sem)
	assert.Equal(t, Average(0), sem.IP)
	assert.Equal(t, 0, sem.TotalSKS)
}

func TestRecomputeTranscriptEmpty(t *testing.T) {
	summary := RecomputeTranscript(NewTranscript())
	assert.Equal(t, Summary{Predicate: PredicateUndefined}, summary)
	assert.Equal(t, Summary{Predicate: PredicateUndefined}, RecomputeTranscript(nil))
}

func TestRecomputeTranscriptIsOrderIndependent(t *testing.T) {
	courses := []Course{
		mustCourse(t, "a", 3, GradeA),
		mustCourse(t, "b", 2, GradeBMinus),
		mustCourse(t, "c", 4, GradeCPlus),
		mustCourse(t, "d", 1, GradeE),
		mustCourse(t, "e", 3, GradeAMinus),
	}

	forward := NewTranscript()
	s1 := forward.AddSemester()
	s2 := forward.AddSemester()
	for i, c := range courses {
		if i%2 == 0 {
			s1.AddCourse(c)
		} else {
			s2.AddCourse(c)
		}
	}

	backward := NewTranscript()
	only := backward.AddSemester()
	for i := len(courses) - 1; i >= 0; i-- {
		only.AddCourse(courses[i])
	}

	var points float64
	var sks int
	for _, c := range courses {
		points += float64(c.Grade) * float64(c.SKS)
		sks += c.SKS
	}

	a := RecomputeTranscript(forward)
	b := RecomputeTranscript(backward)
	assert.Equal(t, RoundGPA(points/float64(sks)), a.IPK)
	assert.Equal(t, a.IPK, b.IPK)
	assert.Equal(t, sks, a.TotalSKS)
	assert.Equal(t, len(courses), a.TotalCourses)
	assert.Equal(t, 2, a.Semesters)
	assert.Equal(t, HonorsFor(a.IPK), a.Predicate)
}

func TestCumulativeDoesNotRoundSubtotals(t *testing.T) {
	transcript := NewTranscript()
	// 3.33.. and 3.66.. as semester IPs; cumulative must come from raw sums.
	first := transcript.AddSemester()
	first.AddCourse(mustCourse(t, "a", 2, GradeA))
	first.AddCourse(mustCourse(t, "b", 1, GradeC))
	second := transcript.AddSemester()
	second.AddCourse(mustCourse(t, "c", 1, GradeB))
	second.AddCourse(mustCourse(t, "d", 2, GradeA))

	assert.Equal(t, Average(3.33), first.IP)
	assert.Equal(t, Average(3.67), second.IP)
	assert.Equal(t, 3.5, transcript.Cumulative().IPK)
}

func TestRemoveSemesterRenumbers(t *testing.T) {
	transcript := NewTranscript()
	var ids []ID
	for i := 0; i < 5; i++ {
		ids = append(ids, transcript.AddSemester().ID)
	}

	require.NoError(t, transcript.RemoveSemester(ids[1]))
	require.NoError(t, transcript.RemoveSemester(ids[3]))

	require.Len(t, transcript.Semesters, 3)
	expected := []ID{ids[0], ids[2], ids[4]}
	for i, s := range transcript.Semesters {
		assert.Equal(t, i+1, s.Number)
		assert.Equal(t, expected[i], s.ID)
	}

	next := transcript.AddSemester()
	assert.Equal(t, 4, next.Number)
}

func TestMissingReferencesAreNotFound(t *testing.T) {
	transcript := NewTranscript()
	sem := transcript.AddSemester()

	err := transcript.RemoveSemester("nope")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = transcript.SemesterByNumber(2)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	assert.ErrorIs(t, sem.RemoveCourse("nope"), appErrors.ErrNotFound)
	_, err = sem.UpdateCourse("nope", "x", 3, GradeA)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestUpdateCourseKeepsIdentity(t *testing.T) {
	sem := &Semester{}
	c := mustCourse(t, "Kalkulus", 3, GradeC)
	sem.AddCourse(c)

	updated, err := sem.UpdateCourse(c.ID, " Kalkulus II ", 4, GradeAMinus)
	require.NoError(t, err)
	assert.Equal(t, c.ID, updated.ID)
	assert.Equal(t, "Kalkulus II", updated.Name)
	assert.Equal(t, "A-", updated.GradeLetter)
	assert.Equal(t, Average(3.7), sem.IP)
	assert.Equal(t, 4, sem.TotalSKS)
}

func TestNewCourseRejectsUnknownGrade(t *testing.T) {
	_, err := NewCourse("x", 3, 3.5)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestAnnotateNormalisesTags(t *testing.T) {
	sem := &Semester{}
	sem.Annotate("  busy  ", []string{" lab ", "", "lab", "exam"}, " sleep more ")
	assert.Equal(t, "busy", sem.Note)
	assert.Equal(t, "sleep more", sem.Lesson)
	assert.Equal(t, []string{"lab", "exam"}, sem.Tags)

	sem.Annotate("", nil, "")
	assert.Nil(t, sem.Tags)
}

func TestTranscriptJSONShape(t *testing.T) {
	restore := NewID
	defer func() { NewID = restore }()
	seq := 0
	NewID = func() ID {
		seq++
		return ID(fmt.Sprintf("id-%d", seq))
	}

	transcript := NewTranscript()
	sem := transcript.AddSemester()
	sem.AddCourse(mustCourse(t, "Kalkulus", 3, GradeA))
	transcript.AddSemester()

	raw, err := json.Marshal(transcript)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"id":"id-1","number":1,"courses":[{"id":"id-2","name":"Kalkulus","sks":3,"grade":4,"gradeLetter":"A"}],"ip":4.00,"totalSKS":3},
		{"id":"id-3","number":2,"courses":[],"ip":0,"totalSKS":0}
	]`, string(raw))

	empty, err := json.Marshal(NewTranscript())
	require.NoError(t, err)
	assert.Equal(t, "[]", string(empty))
}

func TestTranscriptUnmarshalNormalises(t *testing.T) {
	raw := `[{"id":1,"number":9,"courses":[{"id":2,"name":"A","sks":2,"grade":3.7,"gradeLetter":""}],"ip":"1.00","totalSKS":0,"tags":["x","x"]},
		{"number":3,"courses":null,"ip":null}]`

	var transcript Transcript
	require.NoError(t, json.Unmarshal([]byte(raw), &transcript))
	require.Len(t, transcript.Semesters, 2)

	first := transcript.Semesters[0]
	assert.Equal(t, ID("1"), first.ID)
	assert.Equal(t, 1, first.Number)
	assert.Equal(t, "A-", first.Courses[0].GradeLetter)
	assert.Equal(t, Average(3.7), first.IP)
	assert.Equal(t, 2, first.TotalSKS)
	assert.Equal(t, []string{"x"}, first.Tags)

	second := transcript.Semesters[1]
	assert.NotEmpty(t, second.ID)
	assert.Equal(t, 2, second.Number)
	assert.NotNil(t, second.Courses)
}

func TestTranscriptUnmarshalRejectsUnknownGrade(t *testing.T) {
	var transcript Transcript
	err := json.Unmarshal([]byte(`[{"id":"s","courses":[{"id":"c","name":"x","sks":2,"grade":3.5}]}]`), &transcript)
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestTranscriptUnmarshalRejectsInvalidCourses(t *testing.T) {
	cases := []struct {
		name   string
		course string
	}{
		{name: "zero sks", course: `{"id":"c","name":"x","sks":0,"grade":4}`},
		{name: "sks above limit", course: `{"id":"c","name":"x","sks":40,"grade":4}`},
		{name: "negative sks", course: `{"id":"c","name":"x","sks":-3,"grade":4}`},
		{name: "blank name", course: `{"id":"c","name":"   ","sks":3,"grade":4}`},
		{name: "missing name", course: `{"id":"c","sks":3,"grade":4}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var transcript Transcript
			payload := fmt.Sprintf(`[{"id":"s","courses":[%s]}]`, tc.course)
			err := json.Unmarshal([]byte(payload), &transcript)
			require.Error(t, err)
			assert.ErrorIs(t, err, appErrors.ErrValidation)
		})
	}
}

func TestTranscriptUnmarshalSnapsGradeNoise(t *testing.T) {
	var transcript Transcript
	err := json.Unmarshal([]byte(`[{"id":"s","courses":[{"id":"c","name":" Calculus ","sks":3,"grade":3.7000001}]}]`), &transcript)
	require.NoError(t, err)

	course := transcript.Semesters[0].Courses[0]
	assert.Equal(t, GradeAMinus, course.Grade)
	assert.Equal(t, "A-", course.GradeLetter)
	assert.Equal(t, "Calculus", course.Name)
	assert.Equal(t, "3.70", transcript.Semesters[0].IP.String())
}
