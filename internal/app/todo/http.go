package todo

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/todo-api/service/internal/platform/metrics"
)

var (
	httpRequestsTotal = metrics.NewCounterVec(metrics.Opts{
		Name: "http_requests_total",
		Help: "HTTP requests served, by route, method and status code.",
	}, []string{"route", "method", "code"})
	httpInFlight = metrics.NewGauge(metrics.Opts{
		Name: "http_in_flight_requests",
		Help: "HTTP requests currently being served.",
	})
)

func init() {
	metrics.Default.MustRegister(httpRequestsTotal, httpInFlight)
}

// Handler serves the REST surface. Version feeds the root endpoint
// directory; Debug enables per-request logging.
type Handler struct {
	Service       *Service
	Version       string
	AllowedOrigin string
	Debug         bool
}

func NewHandler(service *Service, version, allowedOrigin string, debug bool) *Handler {
	return &Handler{
		Service:       service,
		Version:       version,
		AllowedOrigin: allowedOrigin,
		Debug:         debug,
	}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(h.corsMiddleware)
	r.Use(h.observeMiddleware)
	r.Options("/*", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	r.Get("/", h.handleRoot)
	r.Get("/health", h.handleHealth)

	// The digit constraint makes a non-integer id fall through to the
	// router's 404 rather than surfacing as a validation error.
	r.Get("/api/todos", h.handleList)
	r.Post("/api/todos", h.handleCreate)
	r.Get("/api/todos/{id:[0-9]+}", h.handleGet)
	r.Put("/api/todos/{id:[0-9]+}", h.handleUpdate)
	r.Delete("/api/todos/{id:[0-9]+}", h.handleDelete)

	return r
}

func (h *Handler) handleRoot(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"message": "Todo List API",
		"version": h.Version,
		"endpoints": map[string]string{
			"GET /health":           "Health check",
			"GET /api/todos":        "Get all todos",
			"GET /api/todos/:id":    "Get a specific todo",
			"POST /api/todos":       "Create a new todo",
			"PUT /api/todos/:id":    "Update a todo",
			"DELETE /api/todos/:id": "Delete a todo",
		},
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Ping(r.Context()); err != nil {
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{
		"status":   "healthy",
		"database": "connected",
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	todos, err := h.Service.List(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, toResponseList(todos))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	t, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toResponse(t))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeFields(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	created, err := h.Service.Create(r.Context(), fields)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toResponse(created))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	fields, err := decodeFields(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	updated, err := h.Service.Update(r.Context(), id, fields)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toResponse(updated))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{
		"message": "Todo deleted successfully",
	})
}

// decodeFields reads the body as a JSON object keyed by raw field values,
// preserving key presence for the partial-update rules. A JSON null body
// yields a nil map, which the service treats the same as an absent field
// set.
func decodeFields(r *http.Request) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func idParam(r *http.Request) int64 {
	// The route pattern guarantees digits.
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrTitleRequired), errors.Is(err, ErrNoData), errors.Is(err, ErrNoValidFields):
		h.writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *Handler) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := strings.TrimSpace(h.AllowedOrigin)
		if origin == "" {
			origin = "*"
		}
		w.Header().Set("Vary", "Origin, Access-Control-Request-Headers")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")

		requestHeaders := strings.TrimSpace(r.Header.Get("Access-Control-Request-Headers"))
		if requestHeaders != "" {
			w.Header().Set("Access-Control-Allow-Headers", requestHeaders)
		} else {
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) observeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(recorder, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(recorder.status)).Inc()
		if h.Debug {
			log.Printf("%s %s -> %d (%s)", r.Method, r.URL.Path, recorder.status, time.Since(start))
		}
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
