package service

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/noah-isme/ipk-calculator/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation. The CLI is short
// lived, so the registry is dumped to a textfile instead of being scraped.
type MetricsService struct {
	registry      *prometheus.Registry
	mutations     *prometheus.CounterVec
	storeDuration *prometheus.HistogramVec
	storeErrors   *prometheus.CounterVec
	cumulativeGPA prometheus.Gauge
	totalSKS      prometheus.Gauge
	semesters     prometheus.Gauge
}

// NewMetricsService registers the collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ipk_mutations_total",
		Help: "Transcript mutations applied",
	}, []string{"operation"})

	storeDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ipk_store_duration_seconds",
		Help:    "Duration of key-value store operations",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	storeErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ipk_store_errors_total",
		Help: "Failed key-value store operations",
	}, []string{"operation"})

	cumulativeGPA := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ipk_cumulative_gpa",
		Help: "Cumulative weighted grade point average",
	})

	totalSKS := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ipk_total_sks",
		Help: "Total credit weight across all semesters",
	})

	semesters := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ipk_semesters",
		Help: "Number of semesters on the transcript",
	})

	registry.MustRegister(mutations, storeDuration, storeErrors, cumulativeGPA, totalSKS, semesters)

	return &MetricsService{
		registry:      registry,
		mutations:     mutations,
		storeDuration: storeDuration,
		storeErrors:   storeErrors,
		cumulativeGPA: cumulativeGPA,
		totalSKS:      totalSKS,
		semesters:     semesters,
	}
}

// Registry exposes the underlying registry as a gatherer.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordMutation counts an applied transcript mutation.
func (m *MetricsService) RecordMutation(operation string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(operation).Inc()
}

// ObserveStore records the duration and outcome of a store call.
func (m *MetricsService) ObserveStore(operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.storeDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		m.storeErrors.WithLabelValues(operation).Inc()
	}
}

// SetSummary publishes the current cumulative statistics.
func (m *MetricsService) SetSummary(summary models.Summary) {
	if m == nil {
		return
	}
	m.cumulativeGPA.Set(summary.IPK)
	m.totalSKS.Set(float64(summary.TotalSKS))
	m.semesters.Set(float64(summary.Semesters))
}

// WriteTextfile dumps the registry in the Prometheus text format.
func (m *MetricsService) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
