package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/recipebox/recipebox/internal/auth"
	"github.com/recipebox/recipebox/internal/handler/dto"
	"github.com/recipebox/recipebox/internal/model"
)

// TagManager defines the tag operations the tag handler needs.
// Satisfied by *service.RecipeService.
type TagManager interface {
	CreateTag(ctx context.Context, userID, name string) (*model.Tag, error)
	ListTags(ctx context.Context, userID string, assignedOnly bool) ([]*model.Tag, error)
	UpdateTag(ctx context.Context, userID, id, name string) (*model.Tag, error)
	DeleteTag(ctx context.Context, userID, id string) error
}

// TagHandler serves tag endpoints under /api/v1/recipe/tags.
type TagHandler struct {
	tags   TagManager
	logger *slog.Logger
}

// NewTagHandler creates a new TagHandler.
func NewTagHandler(tags TagManager, logger *slog.Logger) *TagHandler {
	return &TagHandler{
		tags:   tags,
		logger: logger,
	}
}

// Create handles POST /api/v1/recipe/tags
func (h *TagHandler) Create(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())

	var req dto.NameRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}

	tag, err := h.tags.CreateTag(r.Context(), authCtx.UserID, req.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.logger.Info("tag created",
		slog.String("tag_id", tag.ID),
		slog.String("user_id", authCtx.UserID),
	)

	writeJSON(w, http.StatusCreated, dto.NewTagResponse(tag))
}

// List handles GET /api/v1/recipe/tags?assigned_only=1
func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())

	tags, err := h.tags.ListTags(r.Context(), authCtx.UserID, parseAssignedOnly(r))
	if err != nil {
		h.logger.Error("failed to list tags",
			slog.String("error", err.Error()),
			slog.String("user_id", authCtx.UserID),
		)
		writeErrorJSON(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}

	response := dto.TagListResponse{
		Tags:  make([]dto.TagResponse, 0, len(tags)),
		Total: len(tags),
	}
	for _, tag := range tags {
		response.Tags = append(response.Tags, dto.NewTagResponse(tag))
	}

	writeJSON(w, http.StatusOK, response)
}

// Update handles PATCH /api/v1/recipe/tags/{id}
func (h *TagHandler) Update(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var req dto.NameRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}

	tag, err := h.tags.UpdateTag(r.Context(), authCtx.UserID, id, req.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewTagResponse(tag))
}

// Delete handles DELETE /api/v1/recipe/tags/{id}
func (h *TagHandler) Delete(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.tags.DeleteTag(r.Context(), authCtx.UserID, id); err != nil {
		writeServiceError(w, err)
		return
	}

	h.logger.Info("tag deleted",
		slog.String("tag_id", id),
		slog.String("user_id", authCtx.UserID),
	)

	w.WriteHeader(http.StatusNoContent)
}

// parseAssignedOnly reads the assigned_only query flag.
// Accepts "1" and "true"; anything else means false.
func parseAssignedOnly(r *http.Request) bool {
	v := r.URL.Query().Get("assigned_only")
	return v == "1" || v == "true"
}
