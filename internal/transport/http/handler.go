package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"CatalogService/internal/model"
	"CatalogService/internal/repository"
	"CatalogService/internal/service"
	"CatalogService/pkg/metrics"
)

// CatalogService задаёт интерфейс бизнес-логики для HTTP-слоя, используемый хендлером
type CatalogService interface {
	ListEntities(ctx context.Context, kind string, f model.PageFilter) (*model.Page[model.Entity], error)
	UpsertEntity(ctx context.Context, kind string, in model.EntityUpsert) (uuid.UUID, error)
	DeleteEntity(ctx context.Context, kind string, id uuid.UUID) error

	ListItems(ctx context.Context, f model.ItemFilter) (*model.Page[model.Item], error)
	GetItem(ctx context.Context, id uuid.UUID) (*model.Item, error)
	UpsertItem(ctx context.Context, in model.ItemUpsert) (uuid.UUID, error)
	DeleteItem(ctx context.Context, id uuid.UUID) error
	AddItemReview(ctx context.Context, itemID uuid.UUID, in model.ReviewCreate) (uuid.UUID, error)

	ListNews(ctx context.Context, f model.PageFilter) (*model.Page[model.News], error)
	GetNews(ctx context.Context, id uuid.UUID) (*model.News, error)
	UpsertNews(ctx context.Context, in model.NewsUpsert) (uuid.UUID, error)
	DeleteNews(ctx context.Context, id uuid.UUID) error
	AddNewsReview(ctx context.Context, newsID uuid.UUID, in model.ReviewCreate) (uuid.UUID, error)
}

// Pinger проверяет доступность хранилища для /readyz (*sql.DB)
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handler содержит зависимости и реализует HTTP-эндпоинты каталога
type Handler struct {
	srv CatalogService
	db  Pinger
}

// NewHandler создаёт новый HTTP Handler; db может быть nil, тогда /readyz всегда отвечает ready
func NewHandler(srv CatalogService, db Pinger) *Handler {
	return &Handler{srv: srv, db: db}
}

// kindPattern ограничивает {kind} видами core-сущностей
const kindPattern = "{kind:category|characteristic}"

// RegisterRoutes регистрирует маршруты API
func (h *Handler) RegisterRoutes(r *mux.Router) {
	// Эндпоинты для проверки здоровья и готовности сервиса
	r.HandleFunc("/healthz", h.Healthz).Methods("GET")
	r.HandleFunc("/readyz", h.Readyz).Methods("GET")
	r.Handle("/metrics", metrics.MetricsHandler()).Methods("GET")

	r.HandleFunc("/core/"+kindPattern+"/list", h.ListEntities).Methods("GET")
	r.HandleFunc("/core/"+kindPattern+"/", h.UpsertEntity).Methods("PATCH")
	r.HandleFunc("/core/"+kindPattern+"/{id}", h.DeleteEntity).Methods("DELETE")

	r.HandleFunc("/items/filter", h.ListItems).Methods("POST")
	r.HandleFunc("/items/", h.UpsertItem).Methods("PATCH")
	r.HandleFunc("/items/{id}", h.GetItem).Methods("GET")
	r.HandleFunc("/items/{id}", h.DeleteItem).Methods("DELETE")
	r.HandleFunc("/items/{id}/review", h.AddItemReview).Methods("POST")

	r.HandleFunc("/news/", h.ListNews).Methods("GET")
	r.HandleFunc("/news/", h.UpsertNews).Methods("PATCH")
	r.HandleFunc("/news/{id}", h.GetNews).Methods("GET")
	r.HandleFunc("/news/{id}", h.DeleteNews).Methods("DELETE")
	r.HandleFunc("/news/{id}/review", h.AddNewsReview).Methods("POST")
}

// ErrorResponse модель ошибки API
type ErrorResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details"`
}

// коды ошибок в теле ответа
const (
	codeBadRequest = 1
	codeConflict   = 2
	codeNotFound   = 3
	codeInternal   = 4
)

func writeError(w http.ResponseWriter, status int, resp ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrorResponse{codeBadRequest, message, map[string]interface{}{}})
}

// writeServiceError переводит ошибку сервиса в HTTP-статус и тело ErrorResponse
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, ErrorResponse{codeBadRequest, verr.Error(),
			map[string]interface{}{"field": verr.Field, "reason": verr.Reason}})
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, ErrorResponse{codeNotFound, "errors.common.notFound", map[string]interface{}{}})
	case errors.Is(err, repository.ErrCategoryNotFound):
		writeError(w, http.StatusNotFound, ErrorResponse{codeNotFound, "errors.category.notFound", map[string]interface{}{}})
	case errors.Is(err, repository.ErrCharacteristicNotFound):
		writeError(w, http.StatusNotFound, ErrorResponse{codeNotFound, "errors.characteristic.notFound", map[string]interface{}{}})
	case errors.Is(err, repository.ErrConflict):
		writeError(w, http.StatusConflict, ErrorResponse{codeConflict, "errors.common.alreadyExists", map[string]interface{}{}})
	case errors.Is(err, repository.ErrReferenced):
		writeError(w, http.StatusConflict, ErrorResponse{codeConflict, "errors.common.referenced", map[string]interface{}{}})
	default:
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
		writeError(w, http.StatusInternalServerError, ErrorResponse{codeInternal, err.Error(), map[string]interface{}{}})
	}
}

// pathID извлекает uuid из переменной маршрута {id}
func pathID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	return id, err == nil
}

// pageQuery читает page, limit и keywords из query; отсутствующие значения остаются нулевыми
func pageQuery(r *http.Request) (model.PageFilter, bool) {
	q := r.URL.Query()
	f := model.PageFilter{Keyword: q.Get("keywords")}
	for name, dst := range map[string]*int{"page": &f.Page, "limit": &f.Limit} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, false
		}
		*dst = n
	}
	return f, true
}

// noContent отвечает 204 с адресом созданного или обновлённого ресурса
func noContent(w http.ResponseWriter, location string) {
	if location != "" {
		w.Header().Set("Location", location)
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListEntities обрабатывает GET /core/{kind}/list
func (h *Handler) ListEntities(w http.ResponseWriter, r *http.Request) {
	f, ok := pageQuery(r)
	if !ok {
		badRequest(w, "invalid page or limit")
		return
	}
	page, err := h.srv.ListEntities(r.Context(), mux.Vars(r)["kind"], f)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, page)
}

// UpsertEntity обрабатывает PATCH /core/{kind}/
func (h *Handler) UpsertEntity(w http.ResponseWriter, r *http.Request) {
	var req model.EntityUpsert
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	kind := mux.Vars(r)["kind"]
	id, err := h.srv.UpsertEntity(r.Context(), kind, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	noContent(w, "/core/"+kind+"/"+id.String())
}

// DeleteEntity обрабатывает DELETE /core/{kind}/{id}
func (h *Handler) DeleteEntity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	if err := h.srv.DeleteEntity(r.Context(), mux.Vars(r)["kind"], id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	noContent(w, "")
}

// ListItems обрабатывает POST /items/filter; пустое тело означает фильтр по умолчанию
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	var f model.ItemFilter
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		badRequest(w, "invalid request body")
		return
	}
	page, err := h.srv.ListItems(r.Context(), f)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, page)
}

// GetItem обрабатывает GET /items/{id}
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	item, err := h.srv.GetItem(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, item)
}

// UpsertItem обрабатывает PATCH /items/
func (h *Handler) UpsertItem(w http.ResponseWriter, r *http.Request) {
	var req model.ItemUpsert
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	id, err := h.srv.UpsertItem(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	noContent(w, "/items/"+id.String())
}

// DeleteItem обрабатывает DELETE /items/{id}
func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	if err := h.srv.DeleteItem(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	noContent(w, "")
}

// AddItemReview обрабатывает POST /items/{id}/review
func (h *Handler) AddItemReview(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	var req model.ReviewCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if _, err := h.srv.AddItemReview(r.Context(), id, req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	noContent(w, "")
}

// ListNews обрабатывает GET /news/
func (h *Handler) ListNews(w http.ResponseWriter, r *http.Request) {
	f, ok := pageQuery(r)
	if !ok {
		badRequest(w, "invalid page or limit")
		return
	}
	page, err := h.srv.ListNews(r.Context(), f)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, page)
}

// GetNews обрабатывает GET /news/{id}
func (h *Handler) GetNews(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	news, err := h.srv.GetNews(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, news)
}

// UpsertNews обрабатывает PATCH /news/
func (h *Handler) UpsertNews(w http.ResponseWriter, r *http.Request) {
	var req model.NewsUpsert
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	id, err := h.srv.UpsertNews(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	noContent(w, "/news/"+id.String())
}

// DeleteNews обрабатывает DELETE /news/{id}
func (h *Handler) DeleteNews(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	if err := h.srv.DeleteNews(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	noContent(w, "")
}

// AddNewsReview обрабатывает POST /news/{id}/review
func (h *Handler) AddNewsReview(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	var req model.ReviewCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if _, err := h.srv.AddNewsReview(r.Context(), id, req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	noContent(w, "")
}

// Healthz возвращает статус работы сервиса
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// Readyz возвращает готовность сервиса: доступность Postgres
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if h.db != nil {
		if err := h.db.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ready"}`))
}
