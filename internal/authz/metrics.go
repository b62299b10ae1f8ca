package authz

import (
	"pet-clinic-api/internal/ports/auth"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authz_decisions_total",
			Help: "Total number of access decisions",
		},
		[]string{"role", "resource", "action", "decision"},
	)

	// DanglingReferencesTotal cuenta dependientes cuyo pet ya no existe.
	// Cualquier valor distinto de cero indica una cascada rota en otro lado.
	DanglingReferencesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authz_dangling_references_total",
			Help: "Ownership lookups that hit a missing parent resource",
		},
		[]string{"resource"},
	)

	CascadeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authz_cascade_total",
			Help: "Cascade deletions by root resource and outcome",
		},
		[]string{"root", "outcome"},
	)
)

func recordDecision(role auth.Role, res ResourceType, action Action, allowed bool) {
	r := string(role)
	if !role.Valid() {
		r = "unknown"
	}
	d := "deny"
	if allowed {
		d = "allow"
	}
	DecisionsTotal.WithLabelValues(r, string(res), string(action), d).Inc()
}
