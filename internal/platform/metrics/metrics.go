package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the application.
type Metrics struct {
	LoginAttempts    *prometheus.CounterVec
	LockoutsSet      prometheus.Counter
	UsersCreated     prometheus.Counter
	UsersUpdated     prometheus.Counter
	VerifyDurationMs prometheus.Histogram
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		LoginAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "userdir_login_attempts_total",
			Help: "Login attempts by outcome (success, invalid_credentials, locked, error)",
		}, []string{"outcome"}),
		LockoutsSet: promauto.NewCounter(prometheus.CounterOpts{
			Name: "userdir_lockouts_total",
			Help: "Total number of temporary lockouts triggered",
		}),
		UsersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "userdir_users_created_total",
			Help: "Total number of users created",
		}),
		UsersUpdated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "userdir_users_updated_total",
			Help: "Total number of user edits applied",
		}),
		VerifyDurationMs: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "userdir_credential_verify_duration_ms",
			Help:    "Latency of password hash comparison in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
	}
}

// Login outcome label values.
const (
	OutcomeSuccess            = "success"
	OutcomeInvalidCredentials = "invalid_credentials"
	OutcomeLocked             = "locked"
	OutcomeError              = "error"
)

// ObserveLogin records one login attempt with its outcome.
func (m *Metrics) ObserveLogin(outcome string) {
	if m == nil {
		return
	}
	m.LoginAttempts.WithLabelValues(outcome).Inc()
}

// IncrementLockouts counts a newly triggered lockout.
func (m *Metrics) IncrementLockouts() {
	if m == nil {
		return
	}
	m.LockoutsSet.Inc()
}

// IncrementUsersCreated counts one created user.
func (m *Metrics) IncrementUsersCreated() {
	if m == nil {
		return
	}
	m.UsersCreated.Inc()
}

// IncrementUsersUpdated counts one applied user edit.
func (m *Metrics) IncrementUsersUpdated() {
	if m == nil {
		return
	}
	m.UsersUpdated.Inc()
}

// ObserveVerifyDuration records the password comparison latency.
func (m *Metrics) ObserveVerifyDuration(ms float64) {
	if m == nil {
		return
	}
	m.VerifyDurationMs.Observe(ms)
}
