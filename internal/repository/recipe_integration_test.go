//go:build integration

package repository

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/recipebox/recipebox/internal/model"
	"github.com/recipebox/recipebox/internal/testutil"
)

func newRecipeTestEnv(t *testing.T) (context.Context, *Repository, *model.User) {
	t.Helper()

	ctx, repo := newUserTestEnv(t)

	user := testutil.NewTestUser(t, testutil.UniqueEmail("recipes"))
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	return ctx, repo, user
}

func sameIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

func TestIntegrationRecipeRepository_CreateWithAssociations(t *testing.T) {
	ctx, repo, user := newRecipeTestEnv(t)

	tag := testutil.NewTestTag(t, user.ID, "Comfort Food")
	if err := repo.CreateTag(ctx, tag); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	first := testutil.NewTestIngredient(t, user.ID, "Cheese")
	second := testutil.NewTestIngredient(t, user.ID, "Macaroni")
	for _, ingredient := range []*model.Ingredient{first, second} {
		if err := repo.CreateIngredient(ctx, ingredient); err != nil {
			t.Fatalf("CreateIngredient %q: %v", ingredient.Name, err)
		}
	}

	recipe := testutil.NewTestRecipe(t, user.ID, "Mac and Cheese")
	recipe.TagIDs = []string{tag.ID}
	recipe.IngredientIDs = []string{first.ID, second.ID}
	if err := repo.CreateRecipe(ctx, recipe); err != nil {
		t.Fatalf("CreateRecipe: %v", err)
	}

	got, err := repo.GetRecipeByID(ctx, user.ID, recipe.ID)
	if err != nil {
		t.Fatalf("GetRecipeByID: %v", err)
	}
	if got.Title != recipe.Title || got.TimeMinutes != recipe.TimeMinutes {
		t.Errorf("got %q/%d, want %q/%d", got.Title, got.TimeMinutes, recipe.Title, recipe.TimeMinutes)
	}
	if got.Price != recipe.Price {
		t.Errorf("price = %v, want %v", got.Price, recipe.Price)
	}
	if !sameIDs(got.TagIDs, recipe.TagIDs) {
		t.Errorf("tag IDs = %v, want %v", got.TagIDs, recipe.TagIDs)
	}
	if !sameIDs(got.IngredientIDs, recipe.IngredientIDs) {
		t.Errorf("ingredient IDs = %v, want %v", got.IngredientIDs, recipe.IngredientIDs)
	}
}

func TestIntegrationRecipeRepository_ForeignAssociationRejected(t *testing.T) {
	ctx, repo, user := newRecipeTestEnv(t)

	other := testutil.NewTestUser(t, testutil.UniqueEmail("other"))
	if err := repo.CreateUser(ctx, other); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	foreignTag := testutil.NewTestTag(t, other.ID, "Foreign")
	if err := repo.CreateTag(ctx, foreignTag); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}

	recipe := testutil.NewTestRecipe(t, user.ID, "Borrowed")
	recipe.TagIDs = []string{foreignTag.ID}
	if err := repo.CreateRecipe(ctx, recipe); !errors.Is(err, ErrTagNotFound) {
		t.Fatalf("CreateRecipe foreign tag = %v, want ErrTagNotFound", err)
	}

	// The whole transaction rolls back: no half-created recipe.
	if _, err := repo.GetRecipeByID(ctx, user.ID, recipe.ID); !errors.Is(err, ErrRecipeNotFound) {
		t.Errorf("GetRecipeByID after failed create = %v, want ErrRecipeNotFound", err)
	}

	recipe.TagIDs = nil
	recipe.IngredientIDs = []string{"ing-missing"}
	if err := repo.CreateRecipe(ctx, recipe); !errors.Is(err, ErrIngredientNotFound) {
		t.Errorf("CreateRecipe unknown ingredient = %v, want ErrIngredientNotFound", err)
	}
}

func TestIntegrationRecipeRepository_OwnerScoping(t *testing.T) {
	ctx, repo, user := newRecipeTestEnv(t)

	other := testutil.NewTestUser(t, testutil.UniqueEmail("other"))
	if err := repo.CreateUser(ctx, other); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	foreign := testutil.NewTestRecipe(t, other.ID, "Secret Sauce")
	if err := repo.CreateRecipe(ctx, foreign); err != nil {
		t.Fatalf("CreateRecipe: %v", err)
	}

	if _, err := repo.GetRecipeByID(ctx, user.ID, foreign.ID); !errors.Is(err, ErrRecipeNotFound) {
		t.Errorf("GetRecipeByID foreign = %v, want ErrRecipeNotFound", err)
	}
	if err := repo.DeleteRecipe(ctx, user.ID, foreign.ID); !errors.Is(err, ErrRecipeNotFound) {
		t.Errorf("DeleteRecipe foreign = %v, want ErrRecipeNotFound", err)
	}

	recipes, err := repo.ListRecipes(ctx, RecipeFilter{UserID: user.ID})
	if err != nil {
		t.Fatalf("ListRecipes: %v", err)
	}
	if len(recipes) != 0 {
		t.Errorf("foreign recipe leaked into listing: %d rows", len(recipes))
	}
}

func TestIntegrationRecipeRepository_UpdateReplacesAssociations(t *testing.T) {
	ctx, repo, user := newRecipeTestEnv(t)

	oldTag := testutil.NewTestTag(t, user.ID, "Old")
	newTag := testutil.NewTestTag(t, user.ID, "New")
	for _, tag := range []*model.Tag{oldTag, newTag} {
		if err := repo.CreateTag(ctx, tag); err != nil {
			t.Fatalf("CreateTag %q: %v", tag.Name, err)
		}
	}

	recipe := testutil.NewTestRecipe(t, user.ID, "Stew")
	recipe.TagIDs = []string{oldTag.ID}
	if err := repo.CreateRecipe(ctx, recipe); err != nil {
		t.Fatalf("CreateRecipe: %v", err)
	}

	recipe.Title = "Beef Stew"
	recipe.TimeMinutes = 90
	recipe.Price = 12.50
	recipe.TagIDs = []string{newTag.ID}
	recipe.UpdatedAt = time.Now().UTC()
	if err := repo.UpdateRecipe(ctx, recipe); err != nil {
		t.Fatalf("UpdateRecipe: %v", err)
	}

	got, err := repo.GetRecipeByID(ctx, user.ID, recipe.ID)
	if err != nil {
		t.Fatalf("GetRecipeByID: %v", err)
	}
	if got.Title != "Beef Stew" || got.TimeMinutes != 90 || got.Price != 12.50 {
		t.Errorf("got %q/%d/%v after update", got.Title, got.TimeMinutes, got.Price)
	}
	if !sameIDs(got.TagIDs, []string{newTag.ID}) {
		t.Errorf("tag IDs = %v, want only the new tag", got.TagIDs)
	}

	missing := testutil.NewTestRecipe(t, user.ID, "Ghost")
	if err := repo.UpdateRecipe(ctx, missing); !errors.Is(err, ErrRecipeNotFound) {
		t.Errorf("UpdateRecipe unknown = %v, want ErrRecipeNotFound", err)
	}
}

func TestIntegrationRecipeRepository_ListFilters(t *testing.T) {
	ctx, repo, user := newRecipeTestEnv(t)

	tag := testutil.NewTestTag(t, user.ID, "Spicy")
	if err := repo.CreateTag(ctx, tag); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	ingredient := testutil.NewTestIngredient(t, user.ID, "Chili")
	if err := repo.CreateIngredient(ctx, ingredient); err != nil {
		t.Fatalf("CreateIngredient: %v", err)
	}

	tagged := testutil.NewTestRecipe(t, user.ID, "Curry")
	tagged.TagIDs = []string{tag.ID}
	tagged.IngredientIDs = []string{ingredient.ID}
	if err := repo.CreateRecipe(ctx, tagged); err != nil {
		t.Fatalf("CreateRecipe tagged: %v", err)
	}
	plain := testutil.NewTestRecipe(t, user.ID, "Porridge")
	if err := repo.CreateRecipe(ctx, plain); err != nil {
		t.Fatalf("CreateRecipe plain: %v", err)
	}

	byTag, err := repo.ListRecipes(ctx, RecipeFilter{UserID: user.ID, TagIDs: []string{tag.ID}})
	if err != nil {
		t.Fatalf("ListRecipes by tag: %v", err)
	}
	if len(byTag) != 1 || byTag[0].ID != tagged.ID {
		t.Fatalf("tag filter returned %d recipes, want only the tagged one", len(byTag))
	}

	byIngredient, err := repo.ListRecipes(ctx, RecipeFilter{UserID: user.ID, IngredientIDs: []string{ingredient.ID}})
	if err != nil {
		t.Fatalf("ListRecipes by ingredient: %v", err)
	}
	if len(byIngredient) != 1 || byIngredient[0].ID != tagged.ID {
		t.Fatalf("ingredient filter returned %d recipes, want only the tagged one", len(byIngredient))
	}

	all, err := repo.ListRecipes(ctx, RecipeFilter{UserID: user.ID})
	if err != nil {
		t.Fatalf("ListRecipes: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("got %d recipes without filters, want 2", len(all))
	}
}

func TestIntegrationRecipeRepository_DeleteCleansJoins(t *testing.T) {
	ctx, repo, user := newRecipeTestEnv(t)

	tag := testutil.NewTestTag(t, user.ID, "Doomed")
	if err := repo.CreateTag(ctx, tag); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}

	recipe := testutil.NewTestRecipe(t, user.ID, "Ephemeral")
	recipe.TagIDs = []string{tag.ID}
	if err := repo.CreateRecipe(ctx, recipe); err != nil {
		t.Fatalf("CreateRecipe: %v", err)
	}

	if err := repo.DeleteRecipe(ctx, user.ID, recipe.ID); err != nil {
		t.Fatalf("DeleteRecipe: %v", err)
	}
	if _, err := repo.GetRecipeByID(ctx, user.ID, recipe.ID); !errors.Is(err, ErrRecipeNotFound) {
		t.Errorf("GetRecipeByID after delete = %v, want ErrRecipeNotFound", err)
	}

	// The tag itself survives; only its assignment is gone.
	if _, err := repo.GetTagByID(ctx, user.ID, tag.ID); err != nil {
		t.Errorf("GetTagByID after recipe delete: %v", err)
	}
	tags, err := repo.ListTags(ctx, TagFilter{UserID: user.ID, AssignedOnly: true})
	if err != nil {
		t.Fatalf("ListTags: %v", err)
	}
	if len(tags) != 0 {
		t.Errorf("assigned-only listing still returns %d tags after recipe delete", len(tags))
	}
}
