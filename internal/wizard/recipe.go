package wizard

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pageza/larder/backend/internal/model"
	"github.com/pageza/larder/backend/internal/types"
)

const (
	RecipeStepName        = 1
	RecipeStepSource      = 2
	RecipeStepIngredients = 3
	RecipeStepSteps       = 4
)

// RecipeDraft is the state of the recipe wizard.
type RecipeDraft struct {
	ID string `json:"id"`
	Nav
	Name        string             `json:"name"`
	SourceType  model.SourceType   `json:"source_type"`
	Source      string             `json:"source"`
	Ingredients []model.Ingredient `json:"ingredients"`
	Steps       []string           `json:"steps"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

func NewRecipeDraft() *RecipeDraft {
	return &RecipeDraft{
		ID:          model.NewID(),
		Nav:         newNav(RecipeStepSteps),
		SourceType:  model.SourceManual,
		Ingredients: []model.Ingredient{},
		Steps:       []string{},
	}
}

// Update applies the name, source type and source fields that are set.
// The name and the source live on different steps, so a request may carry
// one or the other.
func (d *RecipeDraft) Update(req types.UpdateRecipeDraftRequest) error {
	if req.Name != nil && (req.SourceType != nil || req.Source != nil) {
		return fmt.Errorf("%w: name is set on step %d and source on step %d, send them separately",
			ErrWrongStep, RecipeStepName, RecipeStepSource)
	}
	if req.Name != nil {
		if err := d.require(RecipeStepName); err != nil {
			return err
		}
		d.Name = *req.Name
	}
	if req.SourceType != nil || req.Source != nil {
		if err := d.require(RecipeStepSource); err != nil {
			return err
		}
		if req.SourceType != nil {
			if !req.SourceType.Valid() {
				return incomplete("unknown source type")
			}
			d.SourceType = *req.SourceType
		}
		if req.Source != nil {
			d.Source = *req.Source
		}
	}
	return nil
}

func (d *RecipeDraft) AddIngredient(ing model.Ingredient) error {
	if err := d.require(RecipeStepIngredients); err != nil {
		return err
	}
	d.Ingredients = model.Ingredients(d.Ingredients).Append(ing)
	return nil
}

func (d *RecipeDraft) RemoveIngredient(id string) error {
	if err := d.require(RecipeStepIngredients); err != nil {
		return err
	}
	d.Ingredients = model.Ingredients(d.Ingredients).Remove(id)
	return nil
}

func (d *RecipeDraft) AddStep(step string) error {
	if err := d.require(RecipeStepSteps); err != nil {
		return err
	}
	step = strings.TrimSpace(step)
	if step == "" {
		return incomplete("step must not be empty")
	}
	d.Steps = model.Steps(d.Steps).Append(step)
	return nil
}

func (d *RecipeDraft) RemoveStep(index int) error {
	if err := d.require(RecipeStepSteps); err != nil {
		return err
	}
	d.Steps = model.Steps(d.Steps).RemoveAt(index)
	return nil
}

func (d *RecipeDraft) checkStep(step int) error {
	switch step {
	case RecipeStepName:
		if strings.TrimSpace(d.Name) == "" {
			return incomplete("recipe name is required")
		}
	case RecipeStepSource:
		if d.SourceType.RequiresSource() && strings.TrimSpace(d.Source) == "" {
			return incomplete("source is required for " + string(d.SourceType) + " recipes")
		}
	}
	return nil
}

// Next moves forward if the current step is complete.
func (d *RecipeDraft) Next() error {
	if err := d.checkStep(d.Step); err != nil {
		return err
	}
	d.forward()
	return nil
}

func (d *RecipeDraft) ready() error {
	if !d.Final() {
		return ErrNotFinalStep
	}
	for step := RecipeStepName; step <= RecipeStepSource; step++ {
		if err := d.checkStep(step); err != nil {
			return err
		}
	}
	return nil
}

// Request converts the draft into a recipe creation request.
func (d *RecipeDraft) Request() types.CreateRecipeRequest {
	req := types.CreateRecipeRequest{
		Name:        d.Name,
		SourceType:  d.SourceType,
		Ingredients: make([]types.IngredientInput, 0, len(d.Ingredients)),
		Steps:       d.Steps,
	}
	if d.SourceType.RequiresSource() {
		src := d.Source
		req.Source = &src
	}
	for _, ing := range d.Ingredients {
		req.Ingredients = append(req.Ingredients, types.IngredientInput{
			Name:   ing.Name,
			Amount: types.Amount(strconv.FormatFloat(ing.Amount, 'f', -1, 64)),
			Unit:   ing.Unit,
		})
	}
	return req
}
