// Package metrics holds the prometheus collectors of the exam service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Attempts started, by mode (full/section)
	AttemptsStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mocktest_attempts_started_total",
			Help: "Total number of exam attempts started",
		},
		[]string{"mode"},
	)

	// Terminal outcomes: manual_finish, manual_finish_at_end, time_expired, abandoned
	AttemptsEnded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mocktest_attempts_ended_total",
			Help: "Total number of exam attempts that reached a terminal outcome",
		},
		[]string{"outcome"},
	)

	AnswersSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mocktest_answers_submitted_total",
			Help: "Total number of answers recorded",
		},
		[]string{"correct"},
	)

	ScaledScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mocktest_scaled_score",
			Help:    "Scaled score of completed attempts",
			Buckets: prometheus.LinearBuckets(0, 0.25, 9),
		},
	)

	PersistFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mocktest_result_persist_failures_total",
			Help: "Completed attempts whose result could not be stored",
		},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mocktest_active_sessions_current",
			Help: "Current number of live exam sessions",
		},
	)
)

// Handler serves the default registry.
func Handler() http.Handler { return promhttp.Handler() }
