package http

import (
	"bytes"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
)

// TestLoggingMiddleware_Success проверяет, что middleware логирует запрос без паники
func TestLoggingMiddleware_Success(t *testing.T) {
	// Перенаправляем вывод логов в буфер
	var buf bytes.Buffer
	orig := log.Writer()
	log.SetOutput(&buf)
	defer log.SetOutput(orig)

	// Простая цель-обработчик, возвращает 201 и тело
	handler := LoggingMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("ok"))
	}))

	req := httptest.NewRequest(http.MethodPut, "/test-path?x=1", nil)
	rw := httptest.NewRecorder()
	handler.ServeHTTP(rw, req)

	// Проверяем код ответа и тело
	if rw.Code != http.StatusCreated {
		t.Fatalf("ожидался статус %d, получили %d", http.StatusCreated, rw.Code)
	}
	if got := rw.Body.String(); got != "ok" {
		t.Fatalf("ожидалось тело 'ok', получили '%s'", got)
	}

	// Проверяем, что в логах есть метод, путь и статус
	out := buf.String()
	if !strings.Contains(out, "PUT /test-path") {
		t.Errorf("ожидалось упоминание метода и пути, получили: %s", out)
	}
	if !strings.Contains(out, "201") {
		t.Errorf("ожидалось упоминание статуса 201, получили: %s", out)
	}
}

// TestLoggingMiddleware_Panic проверяет, что middleware логирует панику и пробрасывает её дальше
func TestLoggingMiddleware_Panic(t *testing.T) {
	var buf bytes.Buffer
	orig := log.Writer()
	log.SetOutput(&buf)
	defer log.SetOutput(orig)

	h := LoggingMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom error")
	}))

	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	rw := httptest.NewRecorder()

	// Ожидаем панику, чтобы middleware её повторно пробросил
	defer func() {
		if rec := recover(); rec == nil {
			t.Fatalf("ожидалась паника, но её не было")
		}
		out := buf.String()
		// Должна быть строка с "PANIC" и путь
		if !strings.Contains(out, "PANIC GET /panic") {
			t.Errorf("ожидалось логирование паники, получили: %s", out)
		}
	}()

	h.ServeHTTP(rw, req)
}

// TestLoggingMiddleware_RouteTemplate проверяет, что лог содержит тот же шаблон маршрута, что и метрики
func TestLoggingMiddleware_RouteTemplate(t *testing.T) {
	var buf bytes.Buffer
	orig := log.Writer()
	log.SetOutput(&buf)
	defer log.SetOutput(orig)

	r := mux.NewRouter()
	r.Use(LoggingMiddleware())
	r.HandleFunc("/news/{id}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("hello"))
	}).Methods("GET")

	rw := httptest.NewRecorder()
	r.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/news/42", nil))

	out := buf.String()
	if !strings.Contains(out, "GET /news/42 route=/news/{id} 200 5B") {
		t.Errorf("ожидались путь, шаблон, статус и размер ответа, получили: %s", out)
	}
}

// TestMetricsMiddleware_RouteTemplate проверяет, что метрики пишутся по шаблону маршрута
func TestMetricsMiddleware_RouteTemplate(t *testing.T) {
	r := mux.NewRouter()
	r.Use(MetricsMiddleware())
	var tpl string
	r.HandleFunc("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		tpl = routeTemplate(r)
		w.WriteHeader(http.StatusNotFound)
	}).Methods("GET")

	rw := httptest.NewRecorder()
	r.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/items/8a1d2c5e-0000-4000-8000-000000000001", nil))

	if rw.Code != http.StatusNotFound {
		t.Fatalf("ожидался статус %d, получили %d", http.StatusNotFound, rw.Code)
	}
	if tpl != "/items/{id}" {
		t.Errorf("ожидался шаблон /items/{id}, получили %s", tpl)
	}
}

// TestRouteTemplate_NoRoute проверяет запасной вариант без маршрута mux
func TestRouteTemplate_NoRoute(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/unknown", nil)
	if got := routeTemplate(req); got != "/unknown" {
		t.Errorf("ожидался путь /unknown, получили %s", got)
	}
}
