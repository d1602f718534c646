package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/recipebox/recipebox/internal/metrics"
	"github.com/recipebox/recipebox/internal/model"
	"github.com/recipebox/recipebox/internal/repository"
)

// Recipe service errors.
var (
	ErrNameRequired       = errors.New("name is required")
	ErrNameTooLong        = errors.New("name exceeds maximum length")
	ErrNameTaken          = errors.New("name already exists")
	ErrTitleRequired      = errors.New("title is required")
	ErrTitleTooLong       = errors.New("title exceeds maximum length")
	ErrInvalidTimeMinutes = errors.New("time_minutes must be positive")
	ErrInvalidPrice       = errors.New("price must not be negative")
	ErrTagNotFound        = errors.New("tag not found")
	ErrIngredientNotFound = errors.New("ingredient not found")
	ErrRecipeNotFound     = errors.New("recipe not found")
	ErrUnknownAssociation = errors.New("referenced tag or ingredient not found")
)

// RecipeService handles tag, ingredient and recipe business logic.
// Every operation is scoped to the owning user.
type RecipeService struct {
	repo    *repository.Repository
	metrics metrics.Recorder
}

// NewRecipeService creates a new RecipeService.
func NewRecipeService(repo *repository.Repository, recorder metrics.Recorder) *RecipeService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &RecipeService{
		repo:    repo,
		metrics: recorder,
	}
}

// ---- Tags ----

// CreateTag creates a tag owned by the given user.
func (s *RecipeService) CreateTag(ctx context.Context, userID, name string) (*model.Tag, error) {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return nil, err
	}

	tag := &model.Tag{
		ID:        ulid.Make().String(),
		Name:      name,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.CreateTag(ctx, tag); err != nil {
		if errors.Is(err, repository.ErrTagNameExists) {
			return nil, ErrNameTaken
		}
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}

	s.metrics.IncTagCreated()

	return tag, nil
}

// ListTags lists the user's tags, name-descending. With assignedOnly set,
// only tags referenced by at least one of the user's recipes are returned,
// deduplicated.
func (s *RecipeService) ListTags(ctx context.Context, userID string, assignedOnly bool) ([]*model.Tag, error) {
	return s.repo.ListTags(ctx, repository.TagFilter{
		UserID:       userID,
		AssignedOnly: assignedOnly,
	})
}

// UpdateTag renames one of the user's tags.
func (s *RecipeService) UpdateTag(ctx context.Context, userID, id, name string) (*model.Tag, error) {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return nil, err
	}

	tag, err := s.repo.GetTagByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrTagNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, err
	}

	tag.Name = name
	if err := s.repo.UpdateTag(ctx, tag); err != nil {
		switch {
		case errors.Is(err, repository.ErrTagNameExists):
			return nil, ErrNameTaken
		case errors.Is(err, repository.ErrTagNotFound):
			return nil, ErrTagNotFound
		}
		return nil, fmt.Errorf("failed to update tag: %w", err)
	}

	return tag, nil
}

// DeleteTag removes one of the user's tags.
func (s *RecipeService) DeleteTag(ctx context.Context, userID, id string) error {
	if err := s.repo.DeleteTag(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrTagNotFound) {
			return ErrTagNotFound
		}
		return fmt.Errorf("failed to delete tag: %w", err)
	}
	return nil
}

// ---- Ingredients ----

// CreateIngredient creates an ingredient owned by the given user.
func (s *RecipeService) CreateIngredient(ctx context.Context, userID, name string) (*model.Ingredient, error) {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return nil, err
	}

	ingredient := &model.Ingredient{
		ID:        ulid.Make().String(),
		Name:      name,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.CreateIngredient(ctx, ingredient); err != nil {
		if errors.Is(err, repository.ErrIngredientNameExists) {
			return nil, ErrNameTaken
		}
		return nil, fmt.Errorf("failed to create ingredient: %w", err)
	}

	s.metrics.IncIngredientCreated()

	return ingredient, nil
}

// ListIngredients lists the user's ingredients, name-descending, with the
// same assignedOnly contract as ListTags.
func (s *RecipeService) ListIngredients(ctx context.Context, userID string, assignedOnly bool) ([]*model.Ingredient, error) {
	return s.repo.ListIngredients(ctx, repository.IngredientFilter{
		UserID:       userID,
		AssignedOnly: assignedOnly,
	})
}

// UpdateIngredient renames one of the user's ingredients.
func (s *RecipeService) UpdateIngredient(ctx context.Context, userID, id, name string) (*model.Ingredient, error) {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return nil, err
	}

	ingredient, err := s.repo.GetIngredientByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrIngredientNotFound) {
			return nil, ErrIngredientNotFound
		}
		return nil, err
	}

	ingredient.Name = name
	if err := s.repo.UpdateIngredient(ctx, ingredient); err != nil {
		switch {
		case errors.Is(err, repository.ErrIngredientNameExists):
			return nil, ErrNameTaken
		case errors.Is(err, repository.ErrIngredientNotFound):
			return nil, ErrIngredientNotFound
		}
		return nil, fmt.Errorf("failed to update ingredient: %w", err)
	}

	return ingredient, nil
}

// DeleteIngredient removes one of the user's ingredients.
func (s *RecipeService) DeleteIngredient(ctx context.Context, userID, id string) error {
	if err := s.repo.DeleteIngredient(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrIngredientNotFound) {
			return ErrIngredientNotFound
		}
		return fmt.Errorf("failed to delete ingredient: %w", err)
	}
	return nil
}

// ---- Recipes ----

// CreateRecipeInput defines input for creating a recipe.
type CreateRecipeInput struct {
	Title         string
	TimeMinutes   int
	Price         float64
	TagIDs        []string
	IngredientIDs []string
}

// CreateRecipe creates a recipe owned by the given user. Referenced tags and
// ingredients must already exist and belong to the same user.
func (s *RecipeService) CreateRecipe(ctx context.Context, userID string, input CreateRecipeInput) (*model.Recipe, error) {
	title := strings.TrimSpace(input.Title)
	if err := validateRecipeFields(title, input.TimeMinutes, input.Price); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	recipe := &model.Recipe{
		ID:            ulid.Make().String(),
		Title:         title,
		TimeMinutes:   input.TimeMinutes,
		Price:         roundPrice(input.Price),
		UserID:        userID,
		TagIDs:        dedupe(input.TagIDs),
		IngredientIDs: dedupe(input.IngredientIDs),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.CreateRecipe(ctx, recipe); err != nil {
		if errors.Is(err, repository.ErrTagNotFound) || errors.Is(err, repository.ErrIngredientNotFound) {
			return nil, ErrUnknownAssociation
		}
		return nil, fmt.Errorf("failed to create recipe: %w", err)
	}

	s.metrics.IncRecipeCreated()

	return recipe, nil
}

// GetRecipe retrieves one of the user's recipes.
func (s *RecipeService) GetRecipe(ctx context.Context, userID, id string) (*model.Recipe, error) {
	recipe, err := s.repo.GetRecipeByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	return recipe, nil
}

// ListRecipesInput defines input for listing recipes.
type ListRecipesInput struct {
	TagIDs        []string
	IngredientIDs []string
}

// ListRecipes lists the user's recipes, newest first, optionally restricted
// to recipes referencing any of the given tag or ingredient IDs.
func (s *RecipeService) ListRecipes(ctx context.Context, userID string, input ListRecipesInput) ([]*model.Recipe, error) {
	return s.repo.ListRecipes(ctx, repository.RecipeFilter{
		UserID:        userID,
		TagIDs:        input.TagIDs,
		IngredientIDs: input.IngredientIDs,
	})
}

// UpdateRecipeInput defines partial-update input for a recipe.
// Nil fields are left unchanged; non-nil ID slices replace the associations.
type UpdateRecipeInput struct {
	Title         *string
	TimeMinutes   *int
	Price         *float64
	TagIDs        *[]string
	IngredientIDs *[]string
}

// UpdateRecipe applies a partial update to one of the user's recipes.
func (s *RecipeService) UpdateRecipe(ctx context.Context, userID, id string, input UpdateRecipeInput) (*model.Recipe, error) {
	recipe, err := s.GetRecipe(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		recipe.Title = strings.TrimSpace(*input.Title)
	}
	if input.TimeMinutes != nil {
		recipe.TimeMinutes = *input.TimeMinutes
	}
	if input.Price != nil {
		recipe.Price = roundPrice(*input.Price)
	}
	if input.TagIDs != nil {
		recipe.TagIDs = dedupe(*input.TagIDs)
	}
	if input.IngredientIDs != nil {
		recipe.IngredientIDs = dedupe(*input.IngredientIDs)
	}

	if err := validateRecipeFields(recipe.Title, recipe.TimeMinutes, recipe.Price); err != nil {
		return nil, err
	}

	recipe.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateRecipe(ctx, recipe); err != nil {
		switch {
		case errors.Is(err, repository.ErrRecipeNotFound):
			return nil, ErrRecipeNotFound
		case errors.Is(err, repository.ErrTagNotFound), errors.Is(err, repository.ErrIngredientNotFound):
			return nil, ErrUnknownAssociation
		}
		return nil, fmt.Errorf("failed to update recipe: %w", err)
	}

	s.metrics.IncRecipeUpdated()

	return recipe, nil
}

// DeleteRecipe removes one of the user's recipes.
func (s *RecipeService) DeleteRecipe(ctx context.Context, userID, id string) error {
	if err := s.repo.DeleteRecipe(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrRecipeNotFound) {
			return ErrRecipeNotFound
		}
		return fmt.Errorf("failed to delete recipe: %w", err)
	}

	s.metrics.IncRecipeDeleted()

	return nil
}

func validateRecipeFields(title string, timeMinutes int, price float64) error {
	if title == "" {
		return ErrTitleRequired
	}
	if len(title) > maxTitleLength {
		return ErrTitleTooLong
	}
	if timeMinutes <= 0 {
		return ErrInvalidTimeMinutes
	}
	if price < 0 {
		return ErrInvalidPrice
	}
	return nil
}

// roundPrice normalizes a money value to two decimal places.
func roundPrice(p float64) float64 {
	return math.Round(p*100) / 100
}

// dedupe removes duplicate IDs while preserving order.
func dedupe(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
