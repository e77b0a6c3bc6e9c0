package server

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"qcinsights/internal/domain/training"
)

var (
	globalMetrics *TrainingMetrics
	metricsOnce   sync.Once
)

// TrainingMetrics метрики импорта и майнинга паттернов.
// Реализует training.Metrics.
//
// Метрики:
//   - qc_import_runs_total
//   - qc_import_rows_total{result} - successful / failed
//   - qc_import_sheets_total{result} - processed / skipped
//   - qc_import_records_total{source_format}
//   - qc_import_duration_seconds
//   - qc_mining_runs_total{result} - ok / error
//   - qc_mining_records_total
//   - qc_mining_patterns_total{change} - created / updated
//   - qc_mining_duration_seconds
//   - qc_http_requests_total{method,route,status}
type TrainingMetrics struct {
	ImportRunsTotal    prometheus.Counter
	ImportRowsTotal    *prometheus.CounterVec
	ImportSheetsTotal  *prometheus.CounterVec
	ImportRecordsTotal *prometheus.CounterVec
	ImportDuration     prometheus.Histogram

	MiningRunsTotal     *prometheus.CounterVec
	MiningRecordsTotal  prometheus.Counter
	MiningPatternsTotal *prometheus.CounterVec
	MiningDuration      prometheus.Histogram

	HTTPRequestsTotal *prometheus.CounterVec
}

// NewTrainingMetrics регистрирует метрики один раз на процесс
func NewTrainingMetrics() *TrainingMetrics {
	metricsOnce.Do(func() {
		globalMetrics = &TrainingMetrics{
			ImportRunsTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "qc_import_runs_total",
				Help: "Total number of workbook imports",
			}),
			ImportRowsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "qc_import_rows_total",
				Help: "Rows sent to storage during imports",
			}, []string{"result"}),
			ImportSheetsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "qc_import_sheets_total",
				Help: "Sheets seen during imports",
			}, []string{"result"}),
			ImportRecordsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "qc_import_records_total",
				Help: "Stored training records by source format",
			}, []string{"source_format"}),
			ImportDuration: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "qc_import_duration_seconds",
				Help:    "Duration of workbook imports including mining",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
			}),
			MiningRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "qc_mining_runs_total",
				Help: "Total number of pattern mining passes",
			}, []string{"result"}),
			MiningRecordsTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "qc_mining_records_total",
				Help: "Records merged into patterns",
			}),
			MiningPatternsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "qc_mining_patterns_total",
				Help: "Patterns created or updated by mining",
			}, []string{"change"}),
			MiningDuration: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "qc_mining_duration_seconds",
				Help:    "Duration of pattern mining passes",
				Buckets: prometheus.DefBuckets,
			}),
			HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "qc_http_requests_total",
				Help: "HTTP requests by route and status",
			}, []string{"method", "route", "status"}),
		}
	})
	return globalMetrics
}

// ObserveImport учитывает итог импорта
func (m *TrainingMetrics) ObserveImport(s *training.ImportSummary) {
	if s == nil {
		return
	}
	m.ImportRunsTotal.Inc()
	m.ImportRowsTotal.WithLabelValues("successful").Add(float64(s.Successful))
	m.ImportRowsTotal.WithLabelValues("failed").Add(float64(s.Failed))
	m.ImportSheetsTotal.WithLabelValues("processed").Add(float64(s.SheetsProcessed))
	m.ImportSheetsTotal.WithLabelValues("skipped").Add(float64(s.SheetsSkipped))
	for format, n := range s.Breakdown {
		m.ImportRecordsTotal.WithLabelValues(string(format)).Add(float64(n))
	}
	m.ImportDuration.Observe(s.Duration.Seconds())
}

// ObserveMining учитывает проход майнинга
func (m *TrainingMetrics) ObserveMining(r *training.MiningResult, duration time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.MiningRunsTotal.WithLabelValues(result).Inc()
	m.MiningDuration.Observe(duration.Seconds())
	if r == nil {
		return
	}
	m.MiningRecordsTotal.Add(float64(r.RecordsProcessed))
	m.MiningPatternsTotal.WithLabelValues("created").Add(float64(r.NewPatterns))
	m.MiningPatternsTotal.WithLabelValues("updated").Add(float64(r.UpdatedPatterns))
}

// ObserveRequest учитывает HTTP запрос
func (m *TrainingMetrics) ObserveRequest(method, route string, status int) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}
