package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/pageza/larder/backend/internal/metrics"
	"github.com/pageza/larder/backend/internal/model"
	"github.com/pageza/larder/backend/internal/store"
	"github.com/pageza/larder/backend/internal/types"
)

// GroceryListService applies the grocery list mutation rules on top of the
// document store. Every item change rewrites the whole items field inside a
// store transaction.
type GroceryListService struct {
	store   store.Store
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewGroceryListService(s store.Store, logger *zap.Logger, m *metrics.Metrics) *GroceryListService {
	return &GroceryListService{store: s, logger: logger, metrics: m}
}

func (s *GroceryListService) lists(uid string) (store.Collection[model.GroceryList], error) {
	if uid == "" {
		return nil, ErrUnauthenticated
	}
	return s.store.GroceryLists(uid)
}

// Collection returns the caller's grocery list collection, for subscriptions.
func (s *GroceryListService) Collection(uid string) (store.Collection[model.GroceryList], error) {
	return s.lists(uid)
}

// Aggregate loads the given recipes in order and combines their ingredients.
// Repeated ids count once. An empty selection is rejected.
func (s *GroceryListService) Aggregate(ctx context.Context, uid string, recipeIDs []string) ([]model.Ingredient, error) {
	if uid == "" {
		return nil, ErrUnauthenticated
	}
	ids := dedupe(recipeIDs)
	if len(ids) == 0 {
		return nil, invalid("recipe_ids", "select at least one recipe")
	}
	recipes, err := s.store.Recipes(uid)
	if err != nil {
		return nil, err
	}
	selected := make([]model.Recipe, 0, len(ids))
	for _, id := range ids {
		r, err := recipes.Get(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return nil, invalid("recipe_ids", "recipe %s not found", id)
		}
		if err != nil {
			return nil, fmt.Errorf("load recipe %s: %w", id, err)
		}
		selected = append(selected, *r)
	}
	return model.AggregateIngredients(selected), nil
}

// CreateFromRecipes creates a list seeded with the aggregated ingredients of
// the selected recipes.
func (s *GroceryListService) CreateFromRecipes(ctx context.Context, uid, name string, recipeIDs []string) (*model.GroceryList, error) {
	if uid == "" {
		return nil, ErrUnauthenticated
	}
	if _, err := requireName("name", name); err != nil {
		return nil, err
	}
	ingredients, err := s.Aggregate(ctx, uid, recipeIDs)
	if err != nil {
		return nil, err
	}
	return s.Create(ctx, uid, name, ingredients)
}

// Create persists a new list whose items are the given ingredients, unchecked.
func (s *GroceryListService) Create(ctx context.Context, uid, name string, ingredients []model.Ingredient) (*model.GroceryList, error) {
	lists, err := s.lists(uid)
	if err != nil {
		return nil, err
	}
	name, err = requireName("name", name)
	if err != nil {
		return nil, err
	}
	list := &model.GroceryList{Name: name, Items: model.NewGroceryItems(ingredients)}
	_, err = lists.Create(ctx, list)
	s.metrics.Mutation("groceryLists", "create", err)
	if err != nil {
		return nil, err
	}
	s.logger.Info("grocery list created",
		zap.String("uid", uid), zap.String("list_id", list.ID), zap.Int("items", len(list.Items)))
	return list, nil
}

func (s *GroceryListService) Get(ctx context.Context, uid, listID string) (*model.GroceryList, error) {
	lists, err := s.lists(uid)
	if err != nil {
		return nil, err
	}
	return lists.Get(ctx, listID)
}

// List returns the caller's lists, newest first.
func (s *GroceryListService) List(ctx context.Context, uid string) ([]model.GroceryList, error) {
	lists, err := s.lists(uid)
	if err != nil {
		return nil, err
	}
	return lists.List(ctx)
}

func (s *GroceryListService) mutateItems(ctx context.Context, op, uid, listID string, fn func(items model.GroceryItems) (model.GroceryItems, bool, error)) error {
	lists, err := s.lists(uid)
	if err != nil {
		return err
	}
	err = lists.Mutate(ctx, listID, func(l *model.GroceryList) (store.Fields, error) {
		items, changed, err := fn(l.Items)
		if err != nil || !changed {
			return nil, err
		}
		return store.Fields{"items": items}, nil
	})
	s.metrics.Mutation("groceryLists", op, err)
	return err
}

// ToggleItem flips the checked state of one item.
func (s *GroceryListService) ToggleItem(ctx context.Context, uid, listID, itemID string) error {
	return s.mutateItems(ctx, "toggle_item", uid, listID, func(items model.GroceryItems) (model.GroceryItems, bool, error) {
		if _, ok := items.Find(itemID); !ok {
			return nil, false, ErrItemNotFound
		}
		return items.Toggle(itemID), true, nil
	})
}

// AddItem appends a new unchecked item. The amount must parse as a number.
func (s *GroceryListService) AddItem(ctx context.Context, uid, listID string, in types.IngredientInput) (*model.GroceryItem, error) {
	ing, err := ParseIngredient("item", in)
	if err != nil {
		return nil, err
	}
	item := model.GroceryItem{ID: ing.ID, Name: ing.Name, Amount: ing.Amount, Unit: ing.Unit}
	err = s.mutateItems(ctx, "add_item", uid, listID, func(items model.GroceryItems) (model.GroceryItems, bool, error) {
		return items.Append(item), true, nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteItem removes one item. Deleting an unknown item changes nothing.
func (s *GroceryListService) DeleteItem(ctx context.Context, uid, listID, itemID string) error {
	return s.mutateItems(ctx, "delete_item", uid, listID, func(items model.GroceryItems) (model.GroceryItems, bool, error) {
		if _, ok := items.Find(itemID); !ok {
			return nil, false, nil
		}
		return items.Remove(itemID), true, nil
	})
}

func (s *GroceryListService) Rename(ctx context.Context, uid, listID, name string) error {
	lists, err := s.lists(uid)
	if err != nil {
		return err
	}
	name, err = requireName("name", name)
	if err != nil {
		return err
	}
	err = lists.Update(ctx, listID, store.Fields{"name": name})
	s.metrics.Mutation("groceryLists", "rename", err)
	return err
}

func (s *GroceryListService) Delete(ctx context.Context, uid, listID string) error {
	lists, err := s.lists(uid)
	if err != nil {
		return err
	}
	err = lists.Delete(ctx, listID)
	s.metrics.Mutation("groceryLists", "delete", err)
	return err
}
