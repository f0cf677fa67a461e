// Package metrics exposes the prometheus collectors of the service and a small
// side server for /metrics and /healthz.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Submission outcomes used as the "outcome" label.
const (
	OutcomeRecorded = "recorded"
	OutcomeInvalid  = "invalid"
	OutcomeNotFound = "not_found"
	OutcomeConflict = "conflict"
	OutcomeStorage  = "storage_error"
)

var (
	MatchSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "elo",
		Name:      "match_submissions_total",
		Help:      "Match submissions by outcome.",
	}, []string{"outcome"})

	MatchSubmitDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "elo",
		Name:      "match_submit_duration_seconds",
		Help:      "Latency of the match ingestion transaction.",
		Buckets:   prometheus.DefBuckets,
	})

	RatingDelta = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "elo",
		Name:      "rating_delta_points",
		Help:      "Absolute rating change applied to the winning side.",
		Buckets:   prometheus.LinearBuckets(0, 4, 9),
	})

	RevokedTokens = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "elo",
		Name:      "revoked_tokens_total",
		Help:      "Access tokens revoked by logout.",
	})

	LiveClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "elo",
		Name:      "live_clients",
		Help:      "Connected websocket clients.",
	})
)

// ObserveSubmission records the outcome and latency of one match submission.
func ObserveSubmission(outcome string, started time.Time) {
	MatchSubmissions.WithLabelValues(outcome).Inc()
	MatchSubmitDuration.Observe(time.Since(started).Seconds())
}

type HealthFunc func(ctx context.Context) error

// NewServer builds the /metrics and /healthz server. The caller starts and stops it.
func NewServer(port int, healthFn HealthFunc) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()

		if err := healthFn(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(fmt.Sprintf("unhealthy: %v", err)))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
