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

// IngredientManager defines the ingredient operations the handler needs.
// Satisfied by *service.RecipeService.
type IngredientManager interface {
	CreateIngredient(ctx context.Context, userID, name string) (*model.Ingredient, error)
	ListIngredients(ctx context.Context, userID string, assignedOnly bool) ([]*model.Ingredient, error)
	UpdateIngredient(ctx context.Context, userID, id, name string) (*model.Ingredient, error)
	DeleteIngredient(ctx context.Context, userID, id string) error
}

// IngredientHandler serves ingredient endpoints under /api/v1/recipe/ingredients.
type IngredientHandler struct {
	ingredients IngredientManager
	logger      *slog.Logger
}

// NewIngredientHandler creates a new IngredientHandler.
func NewIngredientHandler(ingredients IngredientManager, logger *slog.Logger) *IngredientHandler {
	return &IngredientHandler{
		ingredients: ingredients,
		logger:      logger,
	}
}

// Create handles POST /api/v1/recipe/ingredients
func (h *IngredientHandler) Create(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())

	var req dto.NameRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}

	ingredient, err := h.ingredients.CreateIngredient(r.Context(), authCtx.UserID, req.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.logger.Info("ingredient created",
		slog.String("ingredient_id", ingredient.ID),
		slog.String("user_id", authCtx.UserID),
	)

	writeJSON(w, http.StatusCreated, dto.NewIngredientResponse(ingredient))
}

// List handles GET /api/v1/recipe/ingredients?assigned_only=1
func (h *IngredientHandler) List(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())

	ingredients, err := h.ingredients.ListIngredients(r.Context(), authCtx.UserID, parseAssignedOnly(r))
	if err != nil {
		h.logger.Error("failed to list ingredients",
			slog.String("error", err.Error()),
			slog.String("user_id", authCtx.UserID),
		)
		writeErrorJSON(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}

	response := dto.IngredientListResponse{
		Ingredients: make([]dto.IngredientResponse, 0, len(ingredients)),
		Total:       len(ingredients),
	}
	for _, ingredient := range ingredients {
		response.Ingredients = append(response.Ingredients, dto.NewIngredientResponse(ingredient))
	}

	writeJSON(w, http.StatusOK, response)
}

// Update handles PATCH /api/v1/recipe/ingredients/{id}
func (h *IngredientHandler) Update(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var req dto.NameRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}

	ingredient, err := h.ingredients.UpdateIngredient(r.Context(), authCtx.UserID, id, req.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewIngredientResponse(ingredient))
}

// Delete handles DELETE /api/v1/recipe/ingredients/{id}
func (h *IngredientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.ingredients.DeleteIngredient(r.Context(), authCtx.UserID, id); err != nil {
		writeServiceError(w, err)
		return
	}

	h.logger.Info("ingredient deleted",
		slog.String("ingredient_id", id),
		slog.String("user_id", authCtx.UserID),
	)

	w.WriteHeader(http.StatusNoContent)
}
