package metrics

import "github.com/prometheus/client_golang/prometheus"

// ClientMetrics exposes counters for outbound backend calls and auth state.
type ClientMetrics struct {
	requestsTotal     *prometheus.CounterVec
	authFailuresTotal prometheus.Counter
	redirectsTotal    *prometheus.CounterVec
}

func NewClientMetrics(reg prometheus.Registerer) *ClientMetrics {
	m := &ClientMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "patient_portal",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total outbound requests to the scheduling backend",
		}, []string{"route", "outcome"}),
		authFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "patient_portal",
			Subsystem: "session",
			Name:      "auth_failures_total",
			Help:      "Total unauthorized responses that invalidated the session",
		}),
		redirectsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "patient_portal",
			Subsystem: "portal",
			Name:      "role_redirects_total",
			Help:      "Total cross-portal redirects issued for non-patient roles",
		}, []string{"role"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.authFailuresTotal, m.redirectsTotal)
	return m
}

func (m *ClientMetrics) ObserveRequest(route, outcome string) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(route, outcome).Inc()
}

func (m *ClientMetrics) ObserveAuthFailure() {
	if m == nil {
		return
	}
	m.authFailuresTotal.Inc()
}

func (m *ClientMetrics) ObserveRoleRedirect(role string) {
	if m == nil {
		return
	}
	m.redirectsTotal.WithLabelValues(role).Inc()
}
