package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Результаты публикации и записи событий аудита
const (
	ResultOK    = "ok"
	ResultError = "error"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "endpoint", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations.",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint", "status"},
	)
	eventsPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_events_published_total",
			Help: "Total number of audit events published to NATS.",
		},
		[]string{"kind", "result"},
	)
	eventsStoredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_events_stored_total",
			Help: "Total number of audit events written to ClickHouse.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal, httpRequestDuration, eventsPublishedTotal, eventsStoredTotal)
}

// RecordRequest записывает метрики для HTTP-запроса.
// endpoint — шаблон маршрута, а не фактический путь, чтобы id не раздували число серий
func RecordRequest(method, endpoint string, statusCode int, duration time.Duration) {
	status := classifyStatus(statusCode)
	httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint, status).Observe(duration.Seconds())
}

// RecordPublish учитывает попытку публикации события аудита
func RecordPublish(kind string, err error) {
	eventsPublishedTotal.WithLabelValues(kind, result(err)).Inc()
}

// RecordStored учитывает пакет событий, записанный (или не записанный) в ClickHouse
func RecordStored(count int, err error) {
	eventsStoredTotal.WithLabelValues(result(err)).Add(float64(count))
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}

// classifyStatus классифицирует HTTP-статус код в строку.
func classifyStatus(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return "2xx"
	case statusCode >= 300 && statusCode < 400:
		return "3xx"
	case statusCode >= 400 && statusCode < 500:
		return "4xx"
	case statusCode >= 500 && statusCode < 600:
		return "5xx"
	}
	return "unknown"
}

// MetricsHandler возвращает HTTP-обработчик для экспорта метрик Prometheus.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
