package metrics

import (
	"errors"
	"time"

	"github.com/lifeline/bloodbank-backend/internal/apperror"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks account operations and authentication outcomes.
type Metrics struct {
	AccountOperations *prometheus.CounterVec
	AccountDuration   *prometheus.HistogramVec
	AuthAttempts      *prometheus.CounterVec
}

// New registers all metrics on reg. Pass prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AccountOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bloodbank_account_operations_total",
			Help: "Account and role operations by outcome",
		}, []string{"operation", "outcome"}),
		AccountDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bloodbank_account_operation_duration_seconds",
			Help:    "Duration of account and role operations including the storage round-trip",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
		AuthAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bloodbank_auth_attempts_total",
			Help: "Register, login and refresh attempts by outcome",
		}, []string{"kind", "outcome"}),
	}
}

// ObserveAccount records the outcome and duration of an account operation.
// Call with time.Now() taken at the start of the operation.
func (m *Metrics) ObserveAccount(operation string, start time.Time, err error) {
	m.AccountOperations.WithLabelValues(operation, Outcome(err)).Inc()
	m.AccountDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (m *Metrics) ObserveAuth(kind string, err error) {
	m.AuthAttempts.WithLabelValues(kind, Outcome(err)).Inc()
}

// Outcome maps an error to a low-cardinality label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, apperror.ErrNotFound):
		return "not_found"
	case errors.Is(err, apperror.ErrConflict):
		return "conflict"
	case errors.Is(err, apperror.ErrForbidden):
		return "forbidden"
	case errors.Is(err, apperror.ErrInvalid):
		return "invalid"
	case errors.Is(err, apperror.ErrUnauthorized):
		return "unauthorized"
	default:
		return "error"
	}
}
