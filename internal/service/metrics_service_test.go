package service

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ipk-calculator/internal/models"
)

func TestMetricsServiceRecords(t *testing.T) {
	m := NewMetricsService()
	m.RecordMutation(opAddCourse)
	m.RecordMutation(opAddCourse)
	m.ObserveStore("save", 5*time.Millisecond, nil)
	m.ObserveStore("save", time.Millisecond, errors.New("boom"))
	m.SetSummary(models.Summary{IPK: 3.42, TotalSKS: 40, Semesters: 2})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.mutations.WithLabelValues(opAddCourse)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.storeErrors.WithLabelValues("save")))
	assert.Equal(t, 3.42, testutil.ToFloat64(m.cumulativeGPA))
	assert.Equal(t, 40.0, testutil.ToFloat64(m.totalSKS))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.semesters))
	assert.Equal(t, 1, testutil.CollectAndCount(m.storeDuration))
}

func TestMetricsServiceWriteTextfile(t *testing.T) {
	m := NewMetricsService()
	m.SetSummary(models.Summary{IPK: 3.5, TotalSKS: 6, Semesters: 1})
	path := filepath.Join(t.TempDir(), "ipk.prom")

	require.NoError(t, m.WriteTextfile(path))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "ipk_cumulative_gpa 3.5")
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	assert.NotPanics(t, func() {
		m.RecordMutation("x")
		m.ObserveStore("x", time.Second, nil)
		m.SetSummary(models.Summary{})
	})
	assert.NoError(t, m.WriteTextfile("ignored"))
	assert.Nil(t, m.Registry())
}
