package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/larder/backend/internal/model"
	"github.com/pageza/larder/backend/internal/service"
	"github.com/pageza/larder/backend/internal/store"
	"github.com/pageza/larder/backend/internal/types"
)

func strPtr(s string) *string { return &s }

func TestCreateRecipeSourceRules(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	manual, err := f.recipes.Create(ctx, "u1", types.CreateRecipeRequest{
		Name:   "Stew",
		Source: strPtr("ignored"),
	})
	require.NoError(t, err)
	assert.Equal(t, model.SourceManual, manual.SourceType)
	assert.Nil(t, manual.Source)

	link, err := f.recipes.Create(ctx, "u1", types.CreateRecipeRequest{
		Name:       "Curry",
		SourceType: model.SourceURL,
		Source:     strPtr(" https://example.com/curry "),
		Steps:      []string{" Chop ", "Cook"},
	})
	require.NoError(t, err)
	require.NotNil(t, link.Source)
	assert.Equal(t, "https://example.com/curry", *link.Source)
	assert.Equal(t, model.Steps{"Chop", "Cook"}, link.Steps)

	stored, err := f.recipes.Get(ctx, "u1", link.ID)
	require.NoError(t, err)
	assert.Equal(t, link.Source, stored.Source)
}

func TestCreateRecipeValidation(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	tests := []struct {
		name  string
		req   types.CreateRecipeRequest
		field string
	}{
		{"empty name", types.CreateRecipeRequest{Name: " "}, "name"},
		{"unknown source type", types.CreateRecipeRequest{Name: "x", SourceType: "fax"}, "source_type"},
		{"url without source", types.CreateRecipeRequest{Name: "x", SourceType: model.SourceURL}, "source"},
		{"image with blank source", types.CreateRecipeRequest{Name: "x", SourceType: model.SourceImage, Source: strPtr(" ")}, "source"},
		{"bad ingredient amount", types.CreateRecipeRequest{Name: "x", Ingredients: []types.IngredientInput{ing("Salt", "lots", "")}}, "ingredients[0].amount"},
		{"empty step", types.CreateRecipeRequest{Name: "x", Steps: []string{"Stir", ""}}, "steps[1]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.recipes.Create(ctx, "u1", tt.req)
			var verr *service.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	all, err := f.recipes.List(ctx, "u1", "")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestAddIngredientAppendsWithFreshID(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	r := f.recipe(t, "u1", "Cookies", ing("Flour", "2", "cup"), ing("Butter", "1", "cup"))

	sugar, err := f.recipes.AddIngredient(ctx, "u1", r.ID, ing("Sugar", "1", "cup"))
	require.NoError(t, err)

	got, err := f.recipes.Get(ctx, "u1", r.ID)
	require.NoError(t, err)
	require.Len(t, got.Ingredients, 3)
	assert.Equal(t, r.Ingredients[0], got.Ingredients[0])
	assert.Equal(t, r.Ingredients[1], got.Ingredients[1])
	assert.Equal(t, model.Ingredient{ID: sugar.ID, Name: "Sugar", Amount: 1, Unit: "cup"}, got.Ingredients[2])
	assert.NotEqual(t, r.Ingredients[0].ID, sugar.ID)
	assert.NotEqual(t, r.Ingredients[1].ID, sugar.ID)

	_, err = f.recipes.AddIngredient(ctx, "u1", r.ID, ing("Salt", "", ""))
	assert.True(t, service.IsValidation(err))
}

func TestDeleteIngredient(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	r := f.recipe(t, "u1", "Cookies", ing("Flour", "2", "cup"), ing("Butter", "1", "cup"))

	require.NoError(t, f.recipes.DeleteIngredient(ctx, "u1", r.ID, "nope"))
	require.NoError(t, f.recipes.DeleteIngredient(ctx, "u1", r.ID, r.Ingredients[0].ID))

	got, err := f.recipes.Get(ctx, "u1", r.ID)
	require.NoError(t, err)
	assert.Equal(t, model.Ingredients{r.Ingredients[1]}, got.Ingredients)
}

func TestSteps(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	r := f.recipe(t, "u1", "Bread")

	for _, step := range []string{"Mix", " Knead ", "Proof", "Bake"} {
		require.NoError(t, f.recipes.AddStep(ctx, "u1", r.ID, step))
	}
	assert.True(t, service.IsValidation(f.recipes.AddStep(ctx, "u1", r.ID, "   ")))

	require.NoError(t, f.recipes.DeleteStep(ctx, "u1", r.ID, 1))
	require.NoError(t, f.recipes.DeleteStep(ctx, "u1", r.ID, 7))
	require.NoError(t, f.recipes.DeleteStep(ctx, "u1", r.ID, -1))

	got, err := f.recipes.Get(ctx, "u1", r.ID)
	require.NoError(t, err)
	assert.Equal(t, model.Steps{"Mix", "Proof", "Bake"}, got.Steps)

	assert.ErrorIs(t, f.recipes.AddStep(ctx, "u1", "missing", "Stir"), store.ErrNotFound)
}

func TestRenameAndDeleteRecipe(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	r := f.recipe(t, "u1", "Bread")

	require.NoError(t, f.recipes.Rename(ctx, "u1", r.ID, " Sourdough "))
	got, err := f.recipes.Get(ctx, "u1", r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sourdough", got.Name)

	assert.ErrorIs(t, f.recipes.Delete(ctx, "u2", r.ID), store.ErrNotFound)
	require.NoError(t, f.recipes.Delete(ctx, "u1", r.ID))
	_, err = f.recipes.Get(ctx, "u1", r.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListRecipesSearch(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	f.recipe(t, "u1", "Banana Bread", ing("Flour", "2", "cup"), ing("Banana", "3", ""))
	f.recipe(t, "u1", "Tomato Soup", ing("Tomato", "4", ""), ing("Basil", "1", "bunch"))
	f.recipe(t, "u1", "Pesto", ing("basil", "2", "cup"), ing("Pine nuts", "30", "g"))
	f.recipe(t, "u2", "Basil Lemonade", ing("Lemon", "2", ""))

	names := func(search string) []string {
		t.Helper()
		recipes, err := f.recipes.List(ctx, "u1", search)
		require.NoError(t, err)
		out := make([]string, 0, len(recipes))
		for _, r := range recipes {
			out = append(out, r.Name)
		}
		return out
	}

	assert.ElementsMatch(t, []string{"Banana Bread"}, names("bread"), "name hit")
	assert.ElementsMatch(t, []string{"Tomato Soup", "Pesto"}, names("BASIL"), "ingredient hit, any case")
	assert.Empty(t, names("walnut"))
	assert.ElementsMatch(t, []string{"Pesto"}, names("Pine"), "ingredient only")
	assert.ElementsMatch(t, []string{"Banana Bread", "Tomato Soup", "Pesto"}, names("bA"), "name or ingredient")
	assert.Empty(t, names("lemon"), "other users' recipes never match")
	assert.Len(t, names(""), 3)
}
