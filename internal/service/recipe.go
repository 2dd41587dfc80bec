package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pageza/larder/backend/internal/metrics"
	"github.com/pageza/larder/backend/internal/model"
	"github.com/pageza/larder/backend/internal/store"
	"github.com/pageza/larder/backend/internal/types"
)

// RecipeService applies the recipe mutation rules on top of the document store.
type RecipeService struct {
	store   store.Store
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewRecipeService(s store.Store, logger *zap.Logger, m *metrics.Metrics) *RecipeService {
	return &RecipeService{store: s, logger: logger, metrics: m}
}

func (s *RecipeService) recipes(uid string) (store.Collection[model.Recipe], error) {
	if uid == "" {
		return nil, ErrUnauthenticated
	}
	return s.store.Recipes(uid)
}

// Collection returns the caller's recipe collection, for subscriptions.
func (s *RecipeService) Collection(uid string) (store.Collection[model.Recipe], error) {
	return s.recipes(uid)
}

// NewRecipe validates a creation request and builds the recipe to persist.
// Source is kept only for url and image recipes, where it is required.
func NewRecipe(req types.CreateRecipeRequest) (*model.Recipe, error) {
	name, err := requireName("name", req.Name)
	if err != nil {
		return nil, err
	}

	sourceType := req.SourceType
	if sourceType == "" {
		sourceType = model.SourceManual
	}
	if !sourceType.Valid() {
		return nil, invalid("source_type", "must be one of url, image, manual")
	}
	var source *string
	if sourceType.RequiresSource() {
		if req.Source == nil || strings.TrimSpace(*req.Source) == "" {
			return nil, invalid("source", "is required for %s recipes", sourceType)
		}
		src := strings.TrimSpace(*req.Source)
		source = &src
	}

	ingredients, err := parseIngredients(req.Ingredients)
	if err != nil {
		return nil, err
	}
	steps := make(model.Steps, 0, len(req.Steps))
	for i, step := range req.Steps {
		step = strings.TrimSpace(step)
		if step == "" {
			return nil, invalid(fmt.Sprintf("steps[%d]", i), "must not be empty")
		}
		steps = append(steps, step)
	}

	return &model.Recipe{
		Name:        name,
		SourceType:  sourceType,
		Source:      source,
		Ingredients: ingredients,
		Steps:       steps,
	}, nil
}

func (s *RecipeService) Create(ctx context.Context, uid string, req types.CreateRecipeRequest) (*model.Recipe, error) {
	recipes, err := s.recipes(uid)
	if err != nil {
		return nil, err
	}
	recipe, err := NewRecipe(req)
	if err != nil {
		return nil, err
	}
	_, err = recipes.Create(ctx, recipe)
	s.metrics.Mutation("recipes", "create", err)
	if err != nil {
		return nil, err
	}
	s.logger.Info("recipe created",
		zap.String("uid", uid), zap.String("recipe_id", recipe.ID), zap.String("source_type", string(recipe.SourceType)))
	return recipe, nil
}

func (s *RecipeService) Get(ctx context.Context, uid, recipeID string) (*model.Recipe, error) {
	recipes, err := s.recipes(uid)
	if err != nil {
		return nil, err
	}
	return recipes.Get(ctx, recipeID)
}

// List returns the caller's recipes, newest first. A non-empty search keeps
// only recipes whose name or ingredient names contain it, ignoring case.
func (s *RecipeService) List(ctx context.Context, uid, search string) ([]model.Recipe, error) {
	recipes, err := s.recipes(uid)
	if err != nil {
		return nil, err
	}
	all, err := recipes.List(ctx)
	if err != nil || search == "" {
		return all, err
	}
	matched := make([]model.Recipe, 0, len(all))
	for i := range all {
		if all[i].Matches(search) {
			matched = append(matched, all[i])
		}
	}
	return matched, nil
}

func (s *RecipeService) mutate(ctx context.Context, op, uid, recipeID string, fn func(r *model.Recipe) store.Fields) error {
	recipes, err := s.recipes(uid)
	if err != nil {
		return err
	}
	err = recipes.Mutate(ctx, recipeID, func(r *model.Recipe) (store.Fields, error) {
		return fn(r), nil
	})
	s.metrics.Mutation("recipes", op, err)
	return err
}

// AddIngredient appends a new ingredient. The amount must parse as a number.
func (s *RecipeService) AddIngredient(ctx context.Context, uid, recipeID string, in types.IngredientInput) (*model.Ingredient, error) {
	ing, err := ParseIngredient("ingredient", in)
	if err != nil {
		return nil, err
	}
	err = s.mutate(ctx, "add_ingredient", uid, recipeID, func(r *model.Recipe) store.Fields {
		return store.Fields{"ingredients": r.Ingredients.Append(ing)}
	})
	if err != nil {
		return nil, err
	}
	return &ing, nil
}

// DeleteIngredient removes one ingredient. Deleting an unknown one changes nothing.
func (s *RecipeService) DeleteIngredient(ctx context.Context, uid, recipeID, ingredientID string) error {
	return s.mutate(ctx, "delete_ingredient", uid, recipeID, func(r *model.Recipe) store.Fields {
		next := r.Ingredients.Remove(ingredientID)
		if len(next) == len(r.Ingredients) {
			return nil
		}
		return store.Fields{"ingredients": next}
	})
}

// AddStep appends a trimmed, non-empty step.
func (s *RecipeService) AddStep(ctx context.Context, uid, recipeID, step string) error {
	step = strings.TrimSpace(step)
	if step == "" {
		return invalid("step", "must not be empty")
	}
	return s.mutate(ctx, "add_step", uid, recipeID, func(r *model.Recipe) store.Fields {
		return store.Fields{"steps": r.Steps.Append(step)}
	})
}

// DeleteStep removes the step at index and shifts later steps left. An index
// outside the steps changes nothing.
func (s *RecipeService) DeleteStep(ctx context.Context, uid, recipeID string, index int) error {
	return s.mutate(ctx, "delete_step", uid, recipeID, func(r *model.Recipe) store.Fields {
		if index < 0 || index >= len(r.Steps) {
			return nil
		}
		return store.Fields{"steps": r.Steps.RemoveAt(index)}
	})
}

func (s *RecipeService) Rename(ctx context.Context, uid, recipeID, name string) error {
	recipes, err := s.recipes(uid)
	if err != nil {
		return err
	}
	name, err = requireName("name", name)
	if err != nil {
		return err
	}
	err = recipes.Update(ctx, recipeID, store.Fields{"name": name})
	s.metrics.Mutation("recipes", "rename", err)
	return err
}

func (s *RecipeService) Delete(ctx context.Context, uid, recipeID string) error {
	recipes, err := s.recipes(uid)
	if err != nil {
		return err
	}
	err = recipes.Delete(ctx, recipeID)
	s.metrics.Mutation("recipes", "delete", err)
	return err
}
