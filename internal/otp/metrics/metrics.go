package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for OTP verification attempts.
const (
	OutcomeVerified           = "verified"
	OutcomeInvalidCode        = "invalid_code"
	OutcomeExpired            = "expired"
	OutcomeUnknownTransaction = "unknown_transaction"
	OutcomeError              = "error"
)

type Metrics struct {
	CodesIssued   prometheus.Counter
	Verifications *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CodesIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "digipraman_otp_codes_issued_total",
			Help: "Number of one-time passcodes issued",
		}),
		Verifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "digipraman_otp_verifications_total",
			Help: "OTP verification attempts by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) IncrementIssued() {
	if m != nil {
		m.CodesIssued.Inc()
	}
}

func (m *Metrics) IncrementVerification(outcome string) {
	if m != nil {
		m.Verifications.WithLabelValues(outcome).Inc()
	}
}
