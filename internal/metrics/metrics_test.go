package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.AssessmentCompleted("HIGH")
	m.AssessmentCompleted("LOW")
	m.AssessmentCompleted("LOW")
	m.AssessmentFailed("predict")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.assessments.WithLabelValues("HIGH")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.assessments.WithLabelValues("LOW")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("predict")))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.AssessmentCompleted("HIGH")
	m.PredictionObserved(3 * time.Millisecond)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	m.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `strokeguard_assessments_total{category="HIGH"} 1`)
	assert.Contains(t, body, "strokeguard_prediction_duration_seconds_count 1")
}
