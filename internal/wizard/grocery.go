package wizard

import (
	"context"
	"strings"
	"time"

	"github.com/pageza/larder/backend/internal/model"
)

const (
	GroceryStepName   = 1
	GroceryStepSelect = 2
	GroceryStepReview = 3
)

// GroceryListDraft is the state of the grocery list wizard: name, recipe
// selection, then a review of the aggregated ingredients.
type GroceryListDraft struct {
	ID string `json:"id"`
	Nav
	Name      string             `json:"name"`
	RecipeIDs []string           `json:"recipe_ids"`
	Review    []model.Ingredient `json:"review"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func NewGroceryListDraft() *GroceryListDraft {
	return &GroceryListDraft{ID: model.NewID(), Nav: newNav(GroceryStepReview), RecipeIDs: []string{}}
}

func (d *GroceryListDraft) SetName(name string) error {
	if err := d.require(GroceryStepName); err != nil {
		return err
	}
	d.Name = name
	return nil
}

// ToggleRecipe selects the recipe, or deselects it if already selected.
// Selection order is kept.
func (d *GroceryListDraft) ToggleRecipe(recipeID string) error {
	if err := d.require(GroceryStepSelect); err != nil {
		return err
	}
	for i, id := range d.RecipeIDs {
		if id == recipeID {
			d.RecipeIDs = append(d.RecipeIDs[:i:i], d.RecipeIDs[i+1:]...)
			return nil
		}
	}
	d.RecipeIDs = append(d.RecipeIDs, recipeID)
	return nil
}

// AggregateFunc combines the ingredients of the given recipes in order.
type AggregateFunc func(ctx context.Context, recipeIDs []string) ([]model.Ingredient, error)

// Next moves forward if the current step is complete. Leaving the selection
// step aggregates the selected recipes once and freezes the result for review.
func (d *GroceryListDraft) Next(ctx context.Context, aggregate AggregateFunc) error {
	switch d.Step {
	case GroceryStepName:
		if strings.TrimSpace(d.Name) == "" {
			return incomplete("list name is required")
		}
	case GroceryStepSelect:
		if len(d.RecipeIDs) == 0 {
			return incomplete("select at least one recipe")
		}
		review, err := aggregate(ctx, d.RecipeIDs)
		if err != nil {
			return err
		}
		d.Review = review
	}
	d.forward()
	return nil
}

// Back returns to the previous step. Returning to the selection step drops
// the frozen review.
func (d *GroceryListDraft) Back() {
	d.Nav.Back()
	if d.Step < GroceryStepReview {
		d.Review = nil
	}
}

// SetAmount edits one reviewed ingredient before the list is created.
func (d *GroceryListDraft) SetAmount(itemID, raw string) error {
	if err := d.require(GroceryStepReview); err != nil {
		return err
	}
	amount, err := model.ParseAmount(raw)
	if err != nil {
		return incomplete(err.Error())
	}
	next, ok := model.Ingredients(d.Review).SetAmount(itemID, amount)
	if !ok {
		return ErrItemNotFound
	}
	d.Review = next
	return nil
}

// RemoveItem drops one reviewed ingredient. Unknown ids change nothing.
func (d *GroceryListDraft) RemoveItem(itemID string) error {
	if err := d.require(GroceryStepReview); err != nil {
		return err
	}
	d.Review = model.Ingredients(d.Review).Remove(itemID)
	return nil
}

func (d *GroceryListDraft) ready() error {
	if !d.Final() {
		return ErrNotFinalStep
	}
	if strings.TrimSpace(d.Name) == "" {
		return incomplete("list name is required")
	}
	if len(d.RecipeIDs) == 0 {
		return incomplete("select at least one recipe")
	}
	return nil
}
