// Package services – Prometheus instrumentation for the autopilot engine.
//
// Label cardinality is kept deliberately small: platform is a two-value
// set, skip reasons come from the classifier's fixed reason codes, and tick
// results are ok/contended/error.
package services

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ticksTotal counts scheduler ticks by outcome.
	ticksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autopilot_ticks_total",
			Help: "Total number of scheduler ticks by result.",
		},
		[]string{"result"},
	)

	// postsTotal counts committed posts per platform.
	postsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autopilot_posts_total",
			Help: "Total number of candidates posted.",
		},
		[]string{"platform"},
	)

	// skipsTotal counts duplicate skips per platform and reason.
	skipsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autopilot_skips_total",
			Help: "Total number of candidates skipped as near duplicates.",
		},
		[]string{"platform", "reason"},
	)
)

func init() {
	prometheus.MustRegister(ticksTotal, postsTotal, skipsTotal)
}
