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

func TestTrackForm(t *testing.T) {
	before := testutil.ToFloat64(formSubmissions.WithLabelValues("contact", ResultCreated))
	TrackForm("contact", ResultCreated)
	TrackForm("contact", ResultCreated)
	assert.Equal(t, before+2, testutil.ToFloat64(formSubmissions.WithLabelValues("contact", ResultCreated)))
}

func TestTrackProof(t *testing.T) {
	before := testutil.ToFloat64(proofUploads.WithLabelValues("vip", "false"))
	TrackProof("vip", false)
	assert.Equal(t, before+1, testutil.ToFloat64(proofUploads.WithLabelValues("vip", "false")))

	TrackProofSoftFailure("vip", "audit")
	assert.GreaterOrEqual(t, testutil.ToFloat64(proofSoftFailures.WithLabelValues("vip", "audit")), 1.0)
}

func TestHandlerExposesCollectors(t *testing.T) {
	ObserveRequest("GET", "/api/contacts", "200", 15*time.Millisecond)
	TrackForm("vip", ResultRejected)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "ranch_http_request_duration_seconds")
	assert.Contains(t, body, `ranch_form_submissions_total{form="vip",result="rejected"}`)
}
