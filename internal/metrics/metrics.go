// Package metrics registers the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	formSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranch_form_submissions_total",
			Help: "Form submissions by form and result",
		},
		[]string{"form", "result"},
	)

	proofUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranch_proof_uploads_total",
			Help: "Proof uploads by category and whether a purchase was linked",
		},
		[]string{"category", "linked"},
	)

	proofSoftFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranch_proof_soft_failures_total",
			Help: "Best-effort proof steps that failed after the file was stored",
		},
		[]string{"category", "step"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ranch_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// Form results.
const (
	ResultCreated  = "created"
	ResultRejected = "rejected"
	ResultError    = "error"
)

func TrackForm(form, result string) {
	formSubmissions.WithLabelValues(form, result).Inc()
}

func TrackProof(category string, linked bool) {
	l := "false"
	if linked {
		l = "true"
	}
	proofUploads.WithLabelValues(category, l).Inc()
}

func TrackProofSoftFailure(category, step string) {
	proofSoftFailures.WithLabelValues(category, step).Inc()
}

// ObserveRequest records one served request.
func ObserveRequest(method, route, status string, d time.Duration) {
	httpDuration.WithLabelValues(method, route, status).Observe(d.Seconds())
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
