package http

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"CatalogService/pkg/metrics"
)

// responseRecorder запоминает статус и размер ответа для логов и метрик
type responseRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func newResponseRecorder(w http.ResponseWriter) *responseRecorder {
	return &responseRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (w *responseRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseRecorder) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// LoggingMiddleware пишет строку лога на каждый запрос: метод, путь, шаблон маршрута mux,
// статус, размер ответа и длительность. Паника логируется и пробрасывается дальше
func LoggingMiddleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := newResponseRecorder(w)
			route := routeTemplate(r)
			defer func() {
				if p := recover(); p != nil {
					log.Printf("PANIC %s %s route=%s 500 %dms: %v",
						r.Method, r.URL.Path, route, time.Since(start).Milliseconds(), p)
					panic(p)
				}
			}()
			next.ServeHTTP(rec, r)
			log.Printf("%s %s route=%s %d %dB %dms",
				r.Method, r.URL.Path, route, rec.status, rec.bytes, time.Since(start).Milliseconds())
		})
	}
}

// MetricsMiddleware записывает счётчик и длительность запроса по шаблону маршрута mux
func MetricsMiddleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := newResponseRecorder(w)
			next.ServeHTTP(rec, r)
			metrics.RecordRequest(r.Method, routeTemplate(r), rec.status, time.Since(start))
		})
	}
}

// routeTemplate возвращает шаблон маршрута (/items/{id}), а без маршрута — фактический путь
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return r.URL.Path
}
