package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProjectionBuilds = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "medrec",
		Subsystem: "projection",
		Name:      "builds_total",
		Help:      "Projection builds started, by viewer role",
	}, []string{"role"})

	ProjectionLookupFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "medrec",
		Subsystem: "projection",
		Name:      "lookup_failures_total",
		Help:      "Point lookups that failed and dropped a record view",
	})

	EventsDeduplicated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "medrec",
		Subsystem: "projection",
		Name:      "events_deduplicated_total",
		Help:      "Raw events dropped as duplicates before folding",
	})

	GuardDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "medrec",
		Subsystem: "workflow",
		Name:      "guard_denials_total",
		Help:      "Transitions denied by the workflow guard, by reason",
	}, []string{"reason"})

	IntentSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "medrec",
		Subsystem: "ledger",
		Name:      "intent_submissions_total",
		Help:      "Write intents submitted to the ledger, by kind and outcome",
	}, []string{"kind", "outcome"})
)
