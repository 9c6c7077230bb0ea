// Package rest provides the HTTP handlers for the feed documents.
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	perrors "github.com/abgdnv/meiasjamais/internal/errors"
	"github.com/abgdnv/meiasjamais/internal/store"
	"github.com/abgdnv/meiasjamais/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Repository is the document store a Handler serves. *store.Collection satisfies it.
type Repository[T any] interface {
	Name() string
	Index(ctx context.Context) ([]T, error)
	Count(ctx context.Context, filter store.Filter) (int64, error)
	FindByID(ctx context.Context, id bson.ObjectID) (T, error)
	Create(ctx context.Context, entity T) (bson.ObjectID, error)
	DeleteByID(ctx context.Context, id bson.ObjectID) (int64, error)
}

// Handler serves one document type under /<resource>.
type Handler[T any] struct {
	resource string
	repo     Repository[T]
	validate *validator.Validate
	required []string
	logger   *slog.Logger
	created  metric.Int64Counter
	deleted  metric.Int64Counter
}

// NewHandler creates a handler that mounts repo under /resource.
func NewHandler[T any](resource string, repo Repository[T], logger *slog.Logger) *Handler[T] {
	meter := otel.Meter("feed-service")
	created, err := meter.Int64Counter("documents_created", metric.WithDescription("Total number of created documents"))
	if err != nil {
		panic(fmt.Sprintf("failed to create documents_created counter: %v", err))
	}
	deleted, err := meter.Int64Counter("documents_deleted", metric.WithDescription("Total number of deleted documents"))
	if err != nil {
		panic(fmt.Sprintf("failed to create documents_deleted counter: %v", err))
	}
	return &Handler[T]{
		resource: resource,
		repo:     repo,
		validate: validator.New(),
		required: store.RequiredFields(reflect.TypeFor[T](), "json"),
		logger:   logger.With("component", "rest", "resource", resource),
		created:  created,
		deleted:  deleted,
	}
}

// RegisterRoutes registers the HTTP routes for the resource.
func (h *Handler[T]) RegisterRoutes(r *chi.Mux) {
	r.Route("/"+h.resource, func(r chi.Router) {
		r.Get("/", h.Index)
		r.Post("/", h.Create)
		r.Get("/count/", h.Count)
		r.Get("/count", h.Count)
		r.Get("/{id}", h.FindByID)
		r.Delete("/{id}", h.DeleteByID)
	})
}

// Index lists every document of the resource.
func (h *Handler[T]) Index(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.Index(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Error retrieving documents", "error", err)
		web.RespondEmpty(w, http.StatusInternalServerError)
		return
	}
	h.logger.DebugContext(r.Context(), "Successfully retrieved documents", "count", len(list))
	web.RespondJSON(w, h.logger, http.StatusOK, list)
}

// Count answers the number of documents. A failed count is logged and answered with 0.
func (h *Handler[T]) Count(w http.ResponseWriter, r *http.Request) {
	count, err := h.repo.Count(r.Context(), nil)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Error counting documents, answering 0", "error", err)
		count = 0
	}
	web.RespondJSON(w, h.logger, http.StatusOK, count)
}

// FindByID retrieves a document by its ID.
func (h *Handler[T]) FindByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	h.logger.DebugContext(r.Context(), "Received request to find document by ID", "ID", id.Hex())
	found, err := h.repo.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, perrors.ErrNotFound) {
			h.logger.WarnContext(r.Context(), "Document not found", "ID", id.Hex())
			web.RespondEmpty(w, http.StatusNotFound)
			return
		} else if errors.Is(err, perrors.ErrDecode) {
			h.logger.ErrorContext(r.Context(), "Stored document cannot be decoded", "ID", id.Hex(), "error", err)
			web.RespondEmpty(w, http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(r.Context(), "Error retrieving document", "ID", id.Hex(), "error", err)
		web.RespondEmpty(w, http.StatusInternalServerError)
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, found)
}

// Create stores the document in the request body and answers its new ID.
func (h *Handler[T]) Create(w http.ResponseWriter, r *http.Request) {
	var entity T
	if err := h.decodeBody(r.Body, &entity); err != nil {
		h.logger.WarnContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	id, err := h.repo.Create(r.Context(), entity)
	if err != nil {
		if errors.Is(err, perrors.ErrInvalidID) {
			h.logger.WarnContext(r.Context(), "Rejected document with preset ID", "error", err)
			web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
			return
		}
		h.logger.ErrorContext(r.Context(), "Error creating document", "error", err)
		web.RespondEmpty(w, http.StatusInternalServerError)
		return
	}
	h.created.Add(r.Context(), 1, metric.WithAttributes(attribute.String("collection", h.repo.Name())))
	h.logger.InfoContext(r.Context(), "Document created successfully", slog.String("ID", id.Hex()))
	web.RespondJSON(w, h.logger, http.StatusOK, id.Hex())
}

// DeleteByID removes a document and answers how many were removed.
// Any store failure is answered with 404.
func (h *Handler[T]) DeleteByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	deleted, err := h.repo.DeleteByID(r.Context(), id)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Error deleting document", "ID", id.Hex(), "error", err)
		web.RespondEmpty(w, http.StatusNotFound)
		return
	}
	if deleted > 0 {
		h.deleted.Add(r.Context(), deleted, metric.WithAttributes(attribute.String("collection", h.repo.Name())))
	}
	h.logger.InfoContext(r.Context(), "Delete completed", "ID", id.Hex(), "deleted", deleted)
	web.RespondJSON(w, h.logger, http.StatusOK, deleted)
}

// decodeBody reads a JSON object into entity. Every non-optional field must be present and not null.
func (h *Handler[T]) decodeBody(body io.Reader, entity *T) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return errors.New("body is not a JSON object")
	}
	for _, path := range h.required {
		if err := lookupJSON(fields, path); err != nil {
			return err
		}
	}
	return json.Unmarshal(data, entity)
}

func lookupJSON(fields map[string]any, path string) error {
	var current any = fields
	for _, key := range strings.Split(path, ".") {
		object, ok := current.(map[string]any)
		if !ok {
			return fmt.Errorf("field %q is not an object", path)
		}
		if current, ok = object[key]; !ok {
			return fmt.Errorf("missing field %q", path)
		}
		if current == nil {
			return fmt.Errorf("field %q is null", path)
		}
	}
	return nil
}

// parseID validates the {id} path parameter. Returns the ID and a boolean indicating success.
func (h *Handler[T]) parseID(w http.ResponseWriter, r *http.Request) (bson.ObjectID, bool) {
	raw := r.PathValue("id")
	if err := h.validate.Var(raw, "required,mongodb"); err != nil {
		web.RespondError(w, h.logger, http.StatusBadRequest, fmt.Sprintf("Invalid ID: %s", raw))
		return bson.NilObjectID, false
	}
	id, err := store.ParseID(raw)
	if err != nil {
		web.RespondError(w, h.logger, http.StatusBadRequest, fmt.Sprintf("Invalid ID: %s", raw))
		return bson.NilObjectID, false
	}
	return id, true
}
