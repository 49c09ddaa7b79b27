package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Created           prometheus.Counter
	CreateFailures    *prometheus.CounterVec
	StatusChanges     *prometheus.CounterVec
	DetailLatency     prometheus.Histogram
	RequirementsTotal prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Created: factory.NewCounter(prometheus.CounterOpts{
			Name: "digipraman_verifications_created_total",
			Help: "Verification requests created",
		}),
		CreateFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "digipraman_verification_create_failures_total",
			Help: "Failed verification creations by error code",
		}, []string{"code"}),
		StatusChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "digipraman_verification_status_changes_total",
			Help: "Verification status transitions by target status",
		}, []string{"status"}),
		DetailLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "digipraman_verification_detail_duration_seconds",
			Help:    "Time to assemble a verification detail view",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		RequirementsTotal: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "digipraman_verification_requirements_per_request",
			Help:    "Checklist size of created verification requests",
			Buckets: []float64{0, 1, 2, 4, 8, 16, 32},
		}),
	}
}

func (m *Metrics) IncrementCreated(requirements int) {
	if m == nil {
		return
	}
	m.Created.Inc()
	m.RequirementsTotal.Observe(float64(requirements))
}

func (m *Metrics) IncrementCreateFailure(code string) {
	if m != nil {
		m.CreateFailures.WithLabelValues(code).Inc()
	}
}

func (m *Metrics) IncrementStatusChange(status string) {
	if m != nil {
		m.StatusChanges.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) ObserveDetail(d time.Duration) {
	if m != nil {
		m.DetailLatency.Observe(d.Seconds())
	}
}
