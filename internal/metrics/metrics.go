// Package metrics holds the gateway's Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "campusai"

// Outcome labels for Gateway.Requests.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

type Gateway struct {
	Requests        *prometheus.CounterVec
	Retries         prometheus.Counter
	UpstreamLatency *prometheus.HistogramVec
	Uploads         *prometheus.CounterVec
	UploadBytes     prometheus.Counter
}

// NewGateway creates the collectors and registers them with reg.
func NewGateway(reg prometheus.Registerer) *Gateway {
	m := &Gateway{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_requests_total",
			Help:      "Chat requests handled, by outcome.",
		}, []string{"outcome"}),
		Retries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_retries_total",
			Help:      "Upstream calls retried after a rate limit.",
		}),
		UpstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_call_seconds",
			Help:      "Latency of single model provider calls.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 80},
		}, []string{"provider"}),
		Uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Uploaded files, by how they were forwarded.",
		}, []string{"kind"}),
		UploadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upload_bytes_total",
			Help:      "Bytes received in uploaded files.",
		}),
	}
	reg.MustRegister(m.Requests, m.Retries, m.UpstreamLatency, m.Uploads, m.UploadBytes)
	return m
}

// Handler serves the collectors registered in gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
