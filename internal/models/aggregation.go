package models

// Summary holds the cumulative statistics of a transcript. It is derived on
// demand and never stored.
type Summary struct {
	IPK          float64   `json:"ipk"`
	TotalSKS     int       `json:"totalSKS"`
	TotalCourses int       `json:"totalCourses"`
	Semesters    int       `json:"semesters"`
	Predicate    Predicate `json:"predicate"`
}

// WeightedAverage returns round(Σ(grade·sks)/Σsks, 2) and Σsks. No courses
// yields (0, 0).
func WeightedAverage(courses []Course) (float64, int) {
	var points float64
	var sks int
	for _, c := range courses {
		points += c.QualityPoints()
		sks += c.SKS
	}
	if sks == 0 {
		return 0, 0
	}
	return RoundGPA(points / float64(sks)), sks
}

// RecomputeSemester refreshes IP and TotalSKS from the course list.
func RecomputeSemester(s *Semester) {
	if len(s.Courses) == 0 {
		s.IP = 0
		s.TotalSKS = 0
		return
	}
	avg, sks := WeightedAverage(s.Courses)
	s.IP = Average(avg)
	s.TotalSKS = sks
}

// RecomputeTranscript computes the cumulative average over every course in
// every semester. Subtotals are not rounded.
func RecomputeTranscript(t *Transcript) Summary {
	if t == nil || len(t.Semesters) == 0 {
		return Summary{Predicate: PredicateUndefined}
	}
	courses := t.Courses()
	ipk, sks := WeightedAverage(courses)
	return Summary{
		IPK:          ipk,
		TotalSKS:     sks,
		TotalCourses: len(courses),
		Semesters:    len(t.Semesters),
		Predicate:    HonorsFor(ipk),
	}
}
