package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/recipebox/recipebox/internal/auth"
	"github.com/recipebox/recipebox/internal/handler/dto"
	"github.com/recipebox/recipebox/internal/model"
	"github.com/recipebox/recipebox/internal/service"
)

// RecipeManager defines the recipe operations the recipe handler needs.
// Satisfied by *service.RecipeService.
type RecipeManager interface {
	CreateRecipe(ctx context.Context, userID string, input service.CreateRecipeInput) (*model.Recipe, error)
	GetRecipe(ctx context.Context, userID, id string) (*model.Recipe, error)
	ListRecipes(ctx context.Context, userID string, input service.ListRecipesInput) ([]*model.Recipe, error)
	UpdateRecipe(ctx context.Context, userID, id string, input service.UpdateRecipeInput) (*model.Recipe, error)
	DeleteRecipe(ctx context.Context, userID, id string) error
}

// RecipeHandler serves recipe endpoints under /api/v1/recipe/recipes.
type RecipeHandler struct {
	recipes RecipeManager
	logger  *slog.Logger
}

// NewRecipeHandler creates a new RecipeHandler.
func NewRecipeHandler(recipes RecipeManager, logger *slog.Logger) *RecipeHandler {
	return &RecipeHandler{
		recipes: recipes,
		logger:  logger,
	}
}

// Create handles POST /api/v1/recipe/recipes
func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())

	var req dto.CreateRecipeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}

	recipe, err := h.recipes.CreateRecipe(r.Context(), authCtx.UserID, service.CreateRecipeInput{
		Title:         req.Title,
		TimeMinutes:   req.TimeMinutes,
		Price:         req.Price,
		TagIDs:        req.TagIDs,
		IngredientIDs: req.IngredientIDs,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.logger.Info("recipe created",
		slog.String("recipe_id", recipe.ID),
		slog.String("user_id", authCtx.UserID),
	)

	writeJSON(w, http.StatusCreated, dto.NewRecipeResponse(recipe))
}

// List handles GET /api/v1/recipe/recipes?tags=id1,id2&ingredients=id3
// The tags and ingredients parameters restrict the listing to recipes
// referencing any of the given IDs.
func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())

	recipes, err := h.recipes.ListRecipes(r.Context(), authCtx.UserID, service.ListRecipesInput{
		TagIDs:        splitIDList(r.URL.Query().Get("tags")),
		IngredientIDs: splitIDList(r.URL.Query().Get("ingredients")),
	})
	if err != nil {
		h.logger.Error("failed to list recipes",
			slog.String("error", err.Error()),
			slog.String("user_id", authCtx.UserID),
		)
		writeErrorJSON(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}

	response := dto.RecipeListResponse{
		Recipes: make([]dto.RecipeResponse, 0, len(recipes)),
		Total:   len(recipes),
	}
	for _, recipe := range recipes {
		response.Recipes = append(response.Recipes, dto.NewRecipeResponse(recipe))
	}

	writeJSON(w, http.StatusOK, response)
}

// Get handles GET /api/v1/recipe/recipes/{id}
func (h *RecipeHandler) Get(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())
	id := chi.URLParam(r, "id")

	recipe, err := h.recipes.GetRecipe(r.Context(), authCtx.UserID, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewRecipeResponse(recipe))
}

// Update handles PATCH /api/v1/recipe/recipes/{id}
func (h *RecipeHandler) Update(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var req dto.UpdateRecipeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}

	recipe, err := h.recipes.UpdateRecipe(r.Context(), authCtx.UserID, id, service.UpdateRecipeInput{
		Title:         req.Title,
		TimeMinutes:   req.TimeMinutes,
		Price:         req.Price,
		TagIDs:        req.TagIDs,
		IngredientIDs: req.IngredientIDs,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.logger.Info("recipe updated",
		slog.String("recipe_id", recipe.ID),
		slog.String("user_id", authCtx.UserID),
	)

	writeJSON(w, http.StatusOK, dto.NewRecipeResponse(recipe))
}

// Delete handles DELETE /api/v1/recipe/recipes/{id}
func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.recipes.DeleteRecipe(r.Context(), authCtx.UserID, id); err != nil {
		writeServiceError(w, err)
		return
	}

	h.logger.Info("recipe deleted",
		slog.String("recipe_id", id),
		slog.String("user_id", authCtx.UserID),
	)

	w.WriteHeader(http.StatusNoContent)
}

// splitIDList parses a comma separated ID list query parameter.
func splitIDList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
