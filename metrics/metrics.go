// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks ballot casting, verification, and resets.
type Metrics struct {
	BallotsCast    *prometheus.CounterVec
	CastRejected   *prometheus.CounterVec
	CastDuration   prometheus.Histogram
	Verifications  *prometheus.CounterVec
	VotingComplete prometheus.Counter
	Resets         *prometheus.CounterVec
	HTTPRequests   *prometheus.CounterVec
	HTTPDuration   *prometheus.HistogramVec
}

// New registers every metric with reg. Pass prometheus.DefaultRegisterer in
// the server and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		BallotsCast: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "quickly_elect_ballots_cast_total",
			Help: "Ballots accepted, by voting type",
		}, []string{"voting_type"}),
		CastRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "quickly_elect_cast_rejected_total",
			Help: "Ballots rejected, by error kind",
		}, []string{"kind"}),
		CastDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "quickly_elect_cast_duration_seconds",
			Help:    "Duration of cast operations including validation",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		Verifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "quickly_elect_verifications_total",
			Help: "Voter code verifications, by outcome",
		}, []string{"outcome"}),
		VotingComplete: factory.NewCounter(prometheus.CounterOpts{
			Name: "quickly_elect_voting_completed_total",
			Help: "Voters who completed their ballot",
		}),
		Resets: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "quickly_elect_resets_total",
			Help: "Tally resets, by scope",
		}, []string{"scope"}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "quickly_elect_http_requests_total",
			Help: "HTTP requests, by method and status",
		}, []string{"method", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "quickly_elect_http_request_duration_seconds",
			Help:    "HTTP request latency, by method",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
	}
}

// IncrementBallotCast records an accepted ballot
func (m *Metrics) IncrementBallotCast(votingType string) {
	m.BallotsCast.WithLabelValues(votingType).Inc()
}

// IncrementCastRejected records a rejected ballot by error kind
func (m *Metrics) IncrementCastRejected(kind string) {
	m.CastRejected.WithLabelValues(kind).Inc()
}

// ObserveCast records the duration of a cast.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveCast(start time.Time) {
	m.CastDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementVerification(outcome string) {
	m.Verifications.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementVotingComplete() {
	m.VotingComplete.Inc()
}

func (m *Metrics) IncrementReset(scope string) {
	m.Resets.WithLabelValues(scope).Inc()
}

// ObserveHTTP records one served request
func (m *Metrics) ObserveHTTP(method string, status int, start time.Time) {
	m.HTTPRequests.WithLabelValues(method, statusClass(status)).Inc()
	m.HTTPDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
