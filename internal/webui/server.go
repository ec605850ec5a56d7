package webui

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/rickgao/chamber-panel/internal/connection"
	"github.com/rickgao/chamber-panel/internal/dashboard"
	"github.com/rickgao/chamber-panel/internal/panel"
	"github.com/rickgao/chamber-panel/internal/router"
)

// Panel is the subset of the panel event loop the web UI drives.
type Panel interface {
	RenderPage(ctx context.Context) (string, error)
	RenderFragment(ctx context.Context) (string, error)
	Click(ctx context.Context, key string) error
	Change(ctx context.Context, key, text string) error
	RouterStats() router.Stats
}

// StatusSource reports the controller connection status.
type StatusSource interface {
	Status() connection.Status
}

// Handler serves the panel over HTTP.
type Handler struct {
	panel  Panel
	status StatusSource
	logger *slog.Logger

	requestTimeout time.Duration
	metricsPath    string
	metrics        http.Handler
	components     map[string]func() any

	mux *http.ServeMux
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the handler logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithMetricsHandler mounts a metrics exposition handler at path.
func WithMetricsHandler(path string, handler http.Handler) Option {
	return func(h *Handler) {
		h.metricsPath = path
		h.metrics = handler
	}
}

// WithComponent adds a named entry to the health report.
func WithComponent(name string, fn func() any) Option {
	return func(h *Handler) {
		h.components[name] = fn
	}
}

// WithRequestTimeout bounds how long a request waits on the panel loop.
func WithRequestTimeout(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.requestTimeout = d
		}
	}
}

// NewHandler creates the HTTP handler.
func NewHandler(p Panel, status StatusSource, opts ...Option) *Handler {
	h := &Handler{
		panel:          p,
		status:         status,
		logger:         slog.Default(),
		requestTimeout: 5 * time.Second,
		components:     make(map[string]func() any),
		mux:            http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(h)
	}

	h.mux.HandleFunc("GET /{$}", h.handlePage)
	h.mux.HandleFunc("GET "+dashboard.FragmentPath, h.handleFragment)
	h.mux.HandleFunc("POST "+dashboard.ClickPath, h.handleClick)
	h.mux.HandleFunc("POST "+dashboard.ChangePath, h.handleChange)
	h.mux.HandleFunc("GET /health", h.handleHealth)
	if h.metrics != nil && h.metricsPath != "" {
		h.mux.Handle("GET "+h.metricsPath, h.metrics)
	}

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) handlePage(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	page, err := h.panel.RenderPage(ctx)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeHTML(w, page)
}

func (h *Handler) handleFragment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	body, err := h.panel.RenderFragment(ctx)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeHTML(w, body)
}

func (h *Handler) handleClick(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		http.Error(w, "missing key", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	if err := h.panel.Click(ctx, key); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleChange(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		http.Error(w, "missing key", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	if err := h.panel.Change(ctx, key, r.PostForm.Get("value")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := h.status.Status()

	health := struct {
		Status     string         `json:"status"`
		Connection any            `json:"connection"`
		Router     router.Stats   `json:"router"`
		Components map[string]any `json:"components,omitempty"`
	}{
		Status:     "healthy",
		Connection: status,
		Router:     h.panel.RouterStats(),
	}

	switch status.State {
	case connection.StateConnecting:
		health.Status = "degraded"
	case connection.StateClosed, connection.StateFailed:
		health.Status = "unhealthy"
	}

	if len(h.components) > 0 {
		health.Components = make(map[string]any, len(h.components))
		for name, fn := range h.components {
			health.Components[name] = fn()
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if health.Status == "unhealthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(health); err != nil {
		h.logger.Error("failed to encode health", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, dashboard.ErrNoElement):
		code = http.StatusNotFound
	case errors.Is(err, dashboard.ErrDisabled), errors.Is(err, dashboard.ErrReadOnly):
		code = http.StatusConflict
	case errors.Is(err, panel.ErrStopped):
		code = http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		code = http.StatusServiceUnavailable
	}

	if code >= http.StatusInternalServerError {
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		h.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	http.Error(w, err.Error(), code)
}

func writeHTML(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(body))
}
