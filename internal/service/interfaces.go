package service

import (
	"context"
	"io"

	"github.com/pageza/larder/backend/internal/model"
	"github.com/pageza/larder/backend/internal/store"
	"github.com/pageza/larder/backend/internal/types"
)

// TokenValidator turns a bearer token into the caller's identity.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*types.Identity, error)
}

// IAuthService defines the interface for account operations
type IAuthService interface {
	TokenValidator
	Register(ctx context.Context, email, password string) (*model.User, string, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
}

// IGroceryListService defines the interface for grocery list operations
type IGroceryListService interface {
	Collection(uid string) (store.Collection[model.GroceryList], error)
	Aggregate(ctx context.Context, uid string, recipeIDs []string) ([]model.Ingredient, error)
	CreateFromRecipes(ctx context.Context, uid, name string, recipeIDs []string) (*model.GroceryList, error)
	Create(ctx context.Context, uid, name string, ingredients []model.Ingredient) (*model.GroceryList, error)
	Get(ctx context.Context, uid, listID string) (*model.GroceryList, error)
	List(ctx context.Context, uid string) ([]model.GroceryList, error)
	ToggleItem(ctx context.Context, uid, listID, itemID string) error
	AddItem(ctx context.Context, uid, listID string, in types.IngredientInput) (*model.GroceryItem, error)
	DeleteItem(ctx context.Context, uid, listID, itemID string) error
	Rename(ctx context.Context, uid, listID, name string) error
	Delete(ctx context.Context, uid, listID string) error
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	Collection(uid string) (store.Collection[model.Recipe], error)
	Create(ctx context.Context, uid string, req types.CreateRecipeRequest) (*model.Recipe, error)
	Get(ctx context.Context, uid, recipeID string) (*model.Recipe, error)
	List(ctx context.Context, uid, search string) ([]model.Recipe, error)
	AddIngredient(ctx context.Context, uid, recipeID string, in types.IngredientInput) (*model.Ingredient, error)
	DeleteIngredient(ctx context.Context, uid, recipeID, ingredientID string) error
	AddStep(ctx context.Context, uid, recipeID, step string) error
	DeleteStep(ctx context.Context, uid, recipeID string, index int) error
	Rename(ctx context.Context, uid, recipeID, name string) error
	Delete(ctx context.Context, uid, recipeID string) error
}

// IImageService defines the interface for source image storage
type IImageService interface {
	UploadSourceImage(ctx context.Context, uid, contentType string, body io.Reader) (string, error)
	SourceImageURL(ctx context.Context, uid, key string) (string, error)
}

var (
	_ IAuthService        = (*AuthService)(nil)
	_ TokenValidator      = (*FirebaseAuth)(nil)
	_ IGroceryListService = (*GroceryListService)(nil)
	_ IRecipeService      = (*RecipeService)(nil)
	_ IImageService       = (*ImageService)(nil)
)
