// internal/pkg/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts storefront requests by route and status
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "http_requests_total",
		Help:      "Storefront HTTP requests by route and status code.",
	}, []string{"method", "route", "status"})

	// HTTPDuration observes storefront request latency
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "storefront",
		Name:      "http_request_duration_seconds",
		Help:      "Storefront HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	// BackendRequests counts calls to the backend API by outcome
	BackendRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "backend_requests_total",
		Help:      "Calls made to the backend API by method, path and status code.",
	}, []string{"method", "path", "status"})

	// BackendDuration observes backend call latency, retries included
	BackendDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "storefront",
		Name:      "backend_request_duration_seconds",
		Help:      "Backend API call latency including retries.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})

	// SignIns counts Google sign-in outcomes
	SignIns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "google_signins_total",
		Help:      "Google sign-in attempts by outcome.",
	}, []string{"outcome"})
)
