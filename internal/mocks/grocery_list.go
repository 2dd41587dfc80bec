package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/larder/backend/internal/model"
	"github.com/pageza/larder/backend/internal/service"
	"github.com/pageza/larder/backend/internal/store"
	"github.com/pageza/larder/backend/internal/types"
)

// MockGroceryListService is a mock implementation of the grocery list service
type MockGroceryListService struct {
	mock.Mock
}

var _ service.IGroceryListService = (*MockGroceryListService)(nil)

func (m *MockGroceryListService) Collection(uid string) (store.Collection[model.GroceryList], error) {
	args := m.Called(uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(store.Collection[model.GroceryList]), args.Error(1)
}

func (m *MockGroceryListService) Aggregate(ctx context.Context, uid string, recipeIDs []string) ([]model.Ingredient, error) {
	args := m.Called(ctx, uid, recipeIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Ingredient), args.Error(1)
}

func (m *MockGroceryListService) CreateFromRecipes(ctx context.Context, uid, name string, recipeIDs []string) (*model.GroceryList, error) {
	args := m.Called(ctx, uid, name, recipeIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.GroceryList), args.Error(1)
}

func (m *MockGroceryListService) Create(ctx context.Context, uid, name string, ingredients []model.Ingredient) (*model.GroceryList, error) {
	args := m.Called(ctx, uid, name, ingredients)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.GroceryList), args.Error(1)
}

func (m *MockGroceryListService) Get(ctx context.Context, uid, listID string) (*model.GroceryList, error) {
	args := m.Called(ctx, uid, listID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.GroceryList), args.Error(1)
}

func (m *MockGroceryListService) List(ctx context.Context, uid string) ([]model.GroceryList, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.GroceryList), args.Error(1)
}

func (m *MockGroceryListService) ToggleItem(ctx context.Context, uid, listID, itemID string) error {
	return m.Called(ctx, uid, listID, itemID).Error(0)
}

func (m *MockGroceryListService) AddItem(ctx context.Context, uid, listID string, in types.IngredientInput) (*model.GroceryItem, error) {
	args := m.Called(ctx, uid, listID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.GroceryItem), args.Error(1)
}

func (m *MockGroceryListService) DeleteItem(ctx context.Context, uid, listID, itemID string) error {
	return m.Called(ctx, uid, listID, itemID).Error(0)
}

func (m *MockGroceryListService) Rename(ctx context.Context, uid, listID, name string) error {
	return m.Called(ctx, uid, listID, name).Error(0)
}

func (m *MockGroceryListService) Delete(ctx context.Context, uid, listID string) error {
	return m.Called(ctx, uid, listID).Error(0)
}
