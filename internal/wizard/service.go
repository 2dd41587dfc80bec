package wizard

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pageza/larder/backend/internal/model"
	"github.com/pageza/larder/backend/internal/types"
)

// Draft kinds, as used in draft keys.
const (
	KindGroceryList = "grocery-list"
	KindRecipe      = "recipe"
)

// GroceryListCreator aggregates selected recipes and creates the final list.
type GroceryListCreator interface {
	Aggregate(ctx context.Context, uid string, recipeIDs []string) ([]model.Ingredient, error)
	Create(ctx context.Context, uid, name string, ingredients []model.Ingredient) (*model.GroceryList, error)
}

type RecipeCreator interface {
	Create(ctx context.Context, uid string, req types.CreateRecipeRequest) (*model.Recipe, error)
}

// Service drives both wizards over persisted drafts.
type Service struct {
	drafts  DraftStore
	lists   GroceryListCreator
	recipes RecipeCreator
	logger  *zap.Logger
	now     func() time.Time
}

func NewService(drafts DraftStore, lists GroceryListCreator, recipes RecipeCreator, logger *zap.Logger) *Service {
	return &Service{drafts: drafts, lists: lists, recipes: recipes, logger: logger, now: time.Now}
}

func (s *Service) StartGroceryList(ctx context.Context, uid string) (*GroceryListDraft, error) {
	d := NewGroceryListDraft()
	d.UpdatedAt = s.now()
	if err := s.drafts.Save(ctx, KindGroceryList, uid, d.ID, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) GroceryList(ctx context.Context, uid, id string) (*GroceryListDraft, error) {
	d := &GroceryListDraft{}
	if err := s.drafts.Load(ctx, KindGroceryList, uid, id, d); err != nil {
		return nil, err
	}
	return d, nil
}

// EditGroceryList loads the draft, applies fn and saves the result. A failed
// fn leaves the stored draft unchanged.
func (s *Service) EditGroceryList(ctx context.Context, uid, id string, fn func(d *GroceryListDraft) error) (*GroceryListDraft, error) {
	d, err := s.GroceryList(ctx, uid, id)
	if err != nil {
		return nil, err
	}
	if err := fn(d); err != nil {
		return d, err
	}
	d.UpdatedAt = s.now()
	if err := s.drafts.Save(ctx, KindGroceryList, uid, id, d); err != nil {
		return nil, err
	}
	return d, nil
}

// NextGroceryList advances the draft, aggregating on the way into review.
func (s *Service) NextGroceryList(ctx context.Context, uid, id string) (*GroceryListDraft, error) {
	return s.EditGroceryList(ctx, uid, id, func(d *GroceryListDraft) error {
		return d.Next(ctx, func(ctx context.Context, recipeIDs []string) ([]model.Ingredient, error) {
			return s.lists.Aggregate(ctx, uid, recipeIDs)
		})
	})
}

// FinishGroceryList creates the list from the reviewed ingredients and
// discards the draft.
func (s *Service) FinishGroceryList(ctx context.Context, uid, id string) (*model.GroceryList, error) {
	d, err := s.GroceryList(ctx, uid, id)
	if err != nil {
		return nil, err
	}
	if err := d.ready(); err != nil {
		return nil, err
	}
	list, err := s.lists.Create(ctx, uid, d.Name, d.Review)
	if err != nil {
		return nil, err
	}
	s.discard(ctx, KindGroceryList, uid, id)
	return list, nil
}

func (s *Service) StartRecipe(ctx context.Context, uid string) (*RecipeDraft, error) {
	d := NewRecipeDraft()
	d.UpdatedAt = s.now()
	if err := s.drafts.Save(ctx, KindRecipe, uid, d.ID, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) Recipe(ctx context.Context, uid, id string) (*RecipeDraft, error) {
	d := &RecipeDraft{}
	if err := s.drafts.Load(ctx, KindRecipe, uid, id, d); err != nil {
		return nil, err
	}
	return d, nil
}

// EditRecipe loads the draft, applies fn and saves the result. A failed fn
// leaves the stored draft unchanged.
func (s *Service) EditRecipe(ctx context.Context, uid, id string, fn func(d *RecipeDraft) error) (*RecipeDraft, error) {
	d, err := s.Recipe(ctx, uid, id)
	if err != nil {
		return nil, err
	}
	if err := fn(d); err != nil {
		return d, err
	}
	d.UpdatedAt = s.now()
	if err := s.drafts.Save(ctx, KindRecipe, uid, id, d); err != nil {
		return nil, err
	}
	return d, nil
}

// FinishRecipe creates the recipe and discards the draft.
func (s *Service) FinishRecipe(ctx context.Context, uid, id string) (*model.Recipe, error) {
	d, err := s.Recipe(ctx, uid, id)
	if err != nil {
		return nil, err
	}
	if err := d.ready(); err != nil {
		return nil, err
	}
	recipe, err := s.recipes.Create(ctx, uid, d.Request())
	if err != nil {
		return nil, err
	}
	s.discard(ctx, KindRecipe, uid, id)
	return recipe, nil
}

// discard removes a finished draft. The document already exists, so a
// failure is only logged.
func (s *Service) discard(ctx context.Context, kind, uid, id string) {
	if err := s.drafts.Delete(ctx, kind, uid, id); err != nil {
		s.logger.Warn("failed to delete finished draft", zap.String("key", draftKey(kind, uid, id)), zap.Error(err))
	}
}

// Cancel throws a draft away.
func (s *Service) Cancel(ctx context.Context, kind, uid, id string) error {
	switch kind {
	case KindGroceryList, KindRecipe:
	default:
		return fmt.Errorf("wizard: unknown kind %q", kind)
	}
	return s.drafts.Delete(ctx, kind, uid, id)
}
