package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func TestClassifyStatus(t *testing.T) {
	cases := map[int]string{200: "2xx", 204: "2xx", 302: "3xx", 404: "4xx", 409: "4xx", 500: "5xx", 99: "unknown", 600: "unknown"}
	for code, want := range cases {
		require.Equal(t, want, classifyStatus(code), "code %d", code)
	}
}

func TestRecordRequest(t *testing.T) {
	var before dto.Metric
	require.NoError(t, httpRequestsTotal.WithLabelValues("GET", "/items/{id}", "4xx").Write(&before))

	RecordRequest("GET", "/items/{id}", http.StatusNotFound, 15*time.Millisecond)

	var after dto.Metric
	require.NoError(t, httpRequestsTotal.WithLabelValues("GET", "/items/{id}", "4xx").Write(&after))
	require.Equal(t, before.GetCounter().GetValue()+1, after.GetCounter().GetValue())
}

func TestRecordEvents(t *testing.T) {
	var m dto.Metric
	RecordPublish("item", nil)
	RecordPublish("item", errors.New("nats down"))
	require.NoError(t, eventsPublishedTotal.WithLabelValues("item", ResultError).Write(&m))
	require.GreaterOrEqual(t, m.GetCounter().GetValue(), 1.0)

	RecordStored(3, nil)
	require.NoError(t, eventsStoredTotal.WithLabelValues(ResultOK).Write(&m))
	require.GreaterOrEqual(t, m.GetCounter().GetValue(), 3.0)
}

func TestMetricsHandler(t *testing.T) {
	RecordRequest("PATCH", "/items/", http.StatusNoContent, time.Millisecond)

	rec := httptest.NewRecorder()
	MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.True(t, strings.Contains(body, "http_requests_total"))
	require.True(t, strings.Contains(body, `endpoint="/items/"`))
}
