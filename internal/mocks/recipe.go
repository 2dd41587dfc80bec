package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/larder/backend/internal/model"
	"github.com/pageza/larder/backend/internal/service"
	"github.com/pageza/larder/backend/internal/store"
	"github.com/pageza/larder/backend/internal/types"
)

// MockRecipeService is a mock implementation of the recipe service
type MockRecipeService struct {
	mock.Mock
}

var _ service.IRecipeService = (*MockRecipeService)(nil)

func (m *MockRecipeService) Collection(uid string) (store.Collection[model.Recipe], error) {
	args := m.Called(uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(store.Collection[model.Recipe]), args.Error(1)
}

func (m *MockRecipeService) Create(ctx context.Context, uid string, req types.CreateRecipeRequest) (*model.Recipe, error) {
	args := m.Called(ctx, uid, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipe), args.Error(1)
}

func (m *MockRecipeService) Get(ctx context.Context, uid, recipeID string) (*model.Recipe, error) {
	args := m.Called(ctx, uid, recipeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipe), args.Error(1)
}

func (m *MockRecipeService) List(ctx context.Context, uid, search string) ([]model.Recipe, error) {
	args := m.Called(ctx, uid, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Recipe), args.Error(1)
}

func (m *MockRecipeService) AddIngredient(ctx context.Context, uid, recipeID string, in types.IngredientInput) (*model.Ingredient, error) {
	args := m.Called(ctx, uid, recipeID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Ingredient), args.Error(1)
}

func (m *MockRecipeService) DeleteIngredient(ctx context.Context, uid, recipeID, ingredientID string) error {
	return m.Called(ctx, uid, recipeID, ingredientID).Error(0)
}

func (m *MockRecipeService) AddStep(ctx context.Context, uid, recipeID, step string) error {
	return m.Called(ctx, uid, recipeID, step).Error(0)
}

func (m *MockRecipeService) DeleteStep(ctx context.Context, uid, recipeID string, index int) error {
	return m.Called(ctx, uid, recipeID, index).Error(0)
}

func (m *MockRecipeService) Rename(ctx context.Context, uid, recipeID, name string) error {
	return m.Called(ctx, uid, recipeID, name).Error(0)
}

func (m *MockRecipeService) Delete(ctx context.Context, uid, recipeID string) error {
	return m.Called(ctx, uid, recipeID).Error(0)
}
