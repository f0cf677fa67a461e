package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestHealthz(t *testing.T) {
	healthy := NewServer(0, func(context.Context) error { return nil })
	rec := httptest.NewRecorder()
	healthy.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	down := NewServer(0, func(context.Context) error { return errors.New("db down") })
	rec = httptest.NewRecorder()
	down.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "db down")
}

func TestObserveSubmission(t *testing.T) {
	before := testutil.ToFloat64(MatchSubmissions.WithLabelValues(OutcomeConflict))
	ObserveSubmission(OutcomeConflict, time.Now())
	assert.Equal(t, before+1, testutil.ToFloat64(MatchSubmissions.WithLabelValues(OutcomeConflict)))
}

func TestMetricsEndpoint(t *testing.T) {
	ObserveSubmission(OutcomeRecorded, time.Now())
	srv := NewServer(0, func(context.Context) error { return nil })
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "elo_match_submissions_total")
}
