package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcomes recorded for each enforced check.
const (
	OutcomeAllowed         = "allowed"
	OutcomeDenied          = "denied"
	OutcomeUnauthenticated = "unauthenticated"
	OutcomeError           = "error"
)

// DecisionRecorder counts authorization decisions made at the HTTP boundary.
type DecisionRecorder struct {
	decisions      *prometheus.CounterVec
	impersonations *prometheus.CounterVec
}

// NewDecisionRecorder registers its counters on reg.
func NewDecisionRecorder(reg prometheus.Registerer) (*DecisionRecorder, error) {
	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rolegate_authz_decisions_total",
		Help: "Authorization checks made by the request enforcer, by checked permission or platform and outcome.",
	}, []string{"check", "outcome"})
	impersonations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rolegate_impersonation_checks_total",
		Help: "Impersonation checks, by outcome (allowed, pending_grant, denied).",
	}, []string{"outcome"})
	for _, c := range []prometheus.Collector{decisions, impersonations} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return &DecisionRecorder{decisions: decisions, impersonations: impersonations}, nil
}

// RecordDecision counts one check. check is the permission or "platform:<name>".
func (r *DecisionRecorder) RecordDecision(check, outcome string) {
	if r == nil {
		return
	}
	r.decisions.WithLabelValues(check, outcome).Inc()
}

func (r *DecisionRecorder) RecordImpersonation(outcome string) {
	if r == nil {
		return
	}
	r.impersonations.WithLabelValues(outcome).Inc()
}

// Handler returns an http.Handler that serves the default Prometheus registry (GET /metrics).
func Handler() http.Handler {
	return promhttp.Handler()
}

// HandlerForRegistry returns an http.Handler that serves the given registry. Use in tests so each test server has its own registry.
func HandlerForRegistry(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
