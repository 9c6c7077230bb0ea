package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/abgdnv/meiasjamais/pkg/web"
	"github.com/go-chi/chi/v5"
)

// CollectionLister is satisfied by *store.Catalog.
type CollectionLister interface {
	CollectionNames(ctx context.Context) ([]string, error)
}

// SystemHandler serves the liveness and greeting endpoints.
type SystemHandler struct {
	catalog CollectionLister
	logger  *slog.Logger
}

// NewSystemHandler creates a handler that lists collections through catalog.
func NewSystemHandler(catalog CollectionLister, logger *slog.Logger) *SystemHandler {
	return &SystemHandler{
		catalog: catalog,
		logger:  logger.With("component", "rest"),
	}
}

// HelloResponse greets the caller with the collections present in the database.
type HelloResponse struct {
	Message     string   `json:"message"`
	Collections []string `json:"collections"`
}

// RegisterRoutes registers /healthz and /hello.
func (h *SystemHandler) RegisterRoutes(r *chi.Mux) {
	r.Get("/healthz", h.HealthCheck)
	r.Get("/hello", h.Hello)
}

// HealthCheck is a simple health check endpoint.
func (h *SystemHandler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// Hello answers a greeting with the sorted collection names. Listing failures are answered with a bare 500.
func (h *SystemHandler) Hello(w http.ResponseWriter, r *http.Request) {
	names, err := h.catalog.CollectionNames(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Error listing collections", "error", err)
		web.RespondEmpty(w, http.StatusInternalServerError)
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, HelloResponse{Message: "Hello World!", Collections: names})
}
