package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ipk-calculator/internal/models"
)

type courseFixture struct {
	sks   int
	grade models.GradePoint
}

// buildTranscript creates one semester per entry; a nil entry is an empty
// semester.
func buildTranscript(t *testing.T, semesters ...[]courseFixture) *models.Transcript {
	t.Helper()
	transcript := models.NewTranscript()
	for _, courses := range semesters {
		sem := transcript.AddSemester()
		for i, fx := range courses {
			c, err := models.NewCourse("course "+string(rune('A'+i)), fx.sks, fx.grade)
			require.NoError(t, err)
			sem.AddCourse(c)
		}
	}
	return transcript
}

// transcriptWithIPs forces semester IPs directly; each semester carries one
// placeholder course so it counts as non-empty.
func transcriptWithIPs(t *testing.T, ips ...float64) *models.Transcript {
	t.Helper()
	transcript := models.NewTranscript()
	for _, ip := range ips {
		sem := transcript.AddSemester()
		c, err := models.NewCourse("placeholder", 3, models.GradeB)
		require.NoError(t, err)
		sem.Courses = append(sem.Courses, c)
		sem.IP = models.Average(ip)
		sem.TotalSKS = 3
	}
	return transcript
}
