package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/larder/backend/internal/metrics"
	"github.com/pageza/larder/backend/internal/model"
	"github.com/pageza/larder/backend/internal/realtime"
	"github.com/pageza/larder/backend/internal/service"
	"github.com/pageza/larder/backend/internal/store"
	"github.com/pageza/larder/backend/internal/testhelpers"
	"github.com/pageza/larder/backend/internal/types"
)

type fixture struct {
	store   *store.SQLStore
	recipes *service.RecipeService
	lists   *service.GroceryListService
	metrics *metrics.Metrics
}

func setup(t *testing.T) *fixture {
	t.Helper()
	s := store.NewSQLStore(testhelpers.SetupTestDB(t), realtime.NewHub(), zap.NewNop())
	m := metrics.New()
	return &fixture{
		store:   s,
		recipes: service.NewRecipeService(s, zap.NewNop(), m),
		lists:   service.NewGroceryListService(s, zap.NewNop(), m),
		metrics: m,
	}
}

func (f *fixture) recipe(t *testing.T, uid, name string, ingredients ...types.IngredientInput) *model.Recipe {
	t.Helper()
	r, err := f.recipes.Create(context.Background(), uid, types.CreateRecipeRequest{
		Name:        name,
		Ingredients: ingredients,
	})
	require.NoError(t, err)
	return r
}

func ing(name, amount, unit string) types.IngredientInput {
	return types.IngredientInput{Name: name, Amount: types.Amount(amount), Unit: unit}
}
