// Package metrics provides Prometheus instrumentation for the matching
// pipeline: decision throughput, match creation, and explanation
// generation outcomes.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// DecisionsTotal counts recorded decisions, labeled by action
	// ("skip" or "connect").
	DecisionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roomlink_decisions_total",
		Help: "Total number of decisions recorded",
	}, []string{"action"})

	// MatchesCreatedTotal counts mutual matches materialized.
	MatchesCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "roomlink_matches_created_total",
		Help: "Total number of mutual matches created",
	})

	// ContactSharesTotal counts contact shares, labeled by outcome
	// ("first", "mutual", "noop").
	ContactSharesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roomlink_contact_shares_total",
		Help: "Total number of contact share submissions",
	}, []string{"outcome"})

	// ExplanationsTotal counts explanation generations, labeled by
	// source ("ai" or "fallback").
	ExplanationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roomlink_explanations_total",
		Help: "Total number of match explanations produced",
	}, []string{"source"})

	// QueueExhaustedTotal counts next-candidate calls that found the
	// queue empty.
	QueueExhaustedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "roomlink_queue_exhausted_total",
		Help: "Total number of next-candidate calls returning no candidate",
	})
)

func init() {
	prometheus.MustRegister(
		DecisionsTotal,
		MatchesCreatedTotal,
		ContactSharesTotal,
		ExplanationsTotal,
		QueueExhaustedTotal,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
