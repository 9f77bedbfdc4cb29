package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	r := New()

	r.SourceCollected("GitHub", 3)
	r.SourceCollected("GitHub", 2)
	r.SourceFailed("Twitter")
	r.CandidateProcessed(OutcomeNew)
	r.CandidateProcessed(OutcomeNew)
	r.CandidateProcessed(OutcomeDuplicate)
	r.CandidateScored("High", false)
	r.CandidateScored("Medium", true)
	r.RunFinished(90*time.Second, time.Unix(1700000000, 0))

	assert.Equal(t, 5.0, testutil.ToFloat64(r.collected.WithLabelValues("GitHub")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.sourceFailures.WithLabelValues("Twitter")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.processed.WithLabelValues(OutcomeNew)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.processed.WithLabelValues(OutcomeDuplicate)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.scoringFallbacks))
	assert.Equal(t, 90.0, testutil.ToFloat64(r.lastDuration))
	assert.Equal(t, 1700000000.0, testutil.ToFloat64(r.lastRun))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var r *Metrics
	assert.NotPanics(t, func() {
		r.SourceCollected("GitHub", 1)
		r.SourceFailed("GitHub")
		r.CandidateProcessed(OutcomeNew)
		r.CandidateScored("Low", true)
		r.RunFinished(time.Second, time.Now())
	})
	assert.NoError(t, r.Push(context.Background(), "http://unused", "job"))
	assert.NotNil(t, r.Handler())
}

func TestMetrics_Handler(t *testing.T) {
	r := New()
	r.SourceCollected("Hacker News", 4)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `sourcer_candidates_collected_total{source="Hacker News"} 4`)
}

func TestMetrics_Push(t *testing.T) {
	var gotPath, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		gotPath = req.URL.Path
		b, _ := io.ReadAll(req.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r := New()
	r.CandidateProcessed(OutcomeStoreFailure)
	require.NoError(t, r.Push(context.Background(), srv.URL, "founder_sourcer"))

	assert.Equal(t, "/metrics/job/founder_sourcer", gotPath)
	assert.NotEmpty(t, gotBody)
}

func TestMetrics_PushError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := New().Push(context.Background(), srv.URL, "founder_sourcer")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), srv.URL))
}
