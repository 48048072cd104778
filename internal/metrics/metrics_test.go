package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerExposesGatewayCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewGateway(reg)
	m.Requests.WithLabelValues(OutcomeOK).Inc()
	m.Retries.Inc()
	m.Uploads.WithLabelValues("image").Add(2)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `campusai_chat_requests_total{outcome="ok"} 1`)
	assert.Contains(t, string(body), `campusai_upstream_retries_total 1`)
	assert.Contains(t, string(body), `campusai_uploads_total{kind="image"} 2`)
}
