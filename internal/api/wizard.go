package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/larder/backend/internal/service"
	"github.com/pageza/larder/backend/internal/types"
	"github.com/pageza/larder/backend/internal/wizard"
)

// WizardHandler drives the grocery list and recipe creation wizards.
type WizardHandler struct {
	wizards *wizard.Service
}

func NewWizardHandler(wizards *wizard.Service) *WizardHandler {
	return &WizardHandler{wizards: wizards}
}

func (h *WizardHandler) RegisterRoutes(router *gin.RouterGroup) {
	lists := router.Group("/wizards/grocery-lists")
	{
		lists.POST("", h.StartGroceryList)
		lists.GET("/:id", h.GetGroceryList)
		lists.PATCH("/:id", h.UpdateGroceryList)
		lists.DELETE("/:id", h.cancel(wizard.KindGroceryList))
		lists.POST("/:id/next", h.NextGroceryList)
		lists.POST("/:id/back", h.BackGroceryList)
		lists.POST("/:id/finish", h.FinishGroceryList)
		lists.POST("/:id/recipes/:recipeId/toggle", h.ToggleRecipe)
		lists.PATCH("/:id/items/:itemId", h.SetItemAmount)
		lists.DELETE("/:id/items/:itemId", h.RemoveItem)
	}

	recipes := router.Group("/wizards/recipes")
	{
		recipes.POST("", h.StartRecipe)
		recipes.GET("/:id", h.GetRecipe)
		recipes.PATCH("/:id", h.UpdateRecipe)
		recipes.DELETE("/:id", h.cancel(wizard.KindRecipe))
		recipes.POST("/:id/next", h.NextRecipe)
		recipes.POST("/:id/back", h.BackRecipe)
		recipes.POST("/:id/finish", h.FinishRecipe)
		recipes.POST("/:id/ingredients", h.AddIngredient)
		recipes.DELETE("/:id/ingredients/:ingredientId", h.RemoveIngredient)
		recipes.POST("/:id/steps", h.AddStep)
		recipes.DELETE("/:id/steps/:index", h.RemoveStep)
	}
}

// respond writes the draft, or the error of the step that produced it.
func respond[D any](c *gin.Context, status int, draft D, err error) {
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(status, draft)
}

func (h *WizardHandler) cancel(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h.wizards.Cancel(c.Request.Context(), kind, uid(c), c.Param("id")); err != nil {
			fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func (h *WizardHandler) editGroceryList(c *gin.Context, fn func(d *wizard.GroceryListDraft) error) {
	d, err := h.wizards.EditGroceryList(c.Request.Context(), uid(c), c.Param("id"), fn)
	respond(c, http.StatusOK, d, err)
}

func (h *WizardHandler) StartGroceryList(c *gin.Context) {
	d, err := h.wizards.StartGroceryList(c.Request.Context(), uid(c))
	respond(c, http.StatusCreated, d, err)
}

func (h *WizardHandler) GetGroceryList(c *gin.Context) {
	d, err := h.wizards.GroceryList(c.Request.Context(), uid(c), c.Param("id"))
	respond(c, http.StatusOK, d, err)
}

func (h *WizardHandler) UpdateGroceryList(c *gin.Context) {
	var req types.UpdateGroceryDraftRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	h.editGroceryList(c, func(d *wizard.GroceryListDraft) error {
		if req.Name == nil {
			return nil
		}
		return d.SetName(*req.Name)
	})
}

func (h *WizardHandler) NextGroceryList(c *gin.Context) {
	d, err := h.wizards.NextGroceryList(c.Request.Context(), uid(c), c.Param("id"))
	respond(c, http.StatusOK, d, err)
}

func (h *WizardHandler) BackGroceryList(c *gin.Context) {
	h.editGroceryList(c, func(d *wizard.GroceryListDraft) error {
		d.Back()
		return nil
	})
}

func (h *WizardHandler) FinishGroceryList(c *gin.Context) {
	list, err := h.wizards.FinishGroceryList(c.Request.Context(), uid(c), c.Param("id"))
	respond(c, http.StatusCreated, list, err)
}

func (h *WizardHandler) ToggleRecipe(c *gin.Context) {
	h.editGroceryList(c, func(d *wizard.GroceryListDraft) error {
		return d.ToggleRecipe(c.Param("recipeId"))
	})
}

func (h *WizardHandler) SetItemAmount(c *gin.Context) {
	var req types.SetAmountRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	h.editGroceryList(c, func(d *wizard.GroceryListDraft) error {
		return d.SetAmount(c.Param("itemId"), string(req.Amount))
	})
}

func (h *WizardHandler) RemoveItem(c *gin.Context) {
	h.editGroceryList(c, func(d *wizard.GroceryListDraft) error {
		return d.RemoveItem(c.Param("itemId"))
	})
}

func (h *WizardHandler) editRecipe(c *gin.Context, fn func(d *wizard.RecipeDraft) error) {
	d, err := h.wizards.EditRecipe(c.Request.Context(), uid(c), c.Param("id"), fn)
	respond(c, http.StatusOK, d, err)
}

func (h *WizardHandler) StartRecipe(c *gin.Context) {
	d, err := h.wizards.StartRecipe(c.Request.Context(), uid(c))
	respond(c, http.StatusCreated, d, err)
}

func (h *WizardHandler) GetRecipe(c *gin.Context) {
	d, err := h.wizards.Recipe(c.Request.Context(), uid(c), c.Param("id"))
	respond(c, http.StatusOK, d, err)
}

func (h *WizardHandler) UpdateRecipe(c *gin.Context) {
	var req types.UpdateRecipeDraftRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	h.editRecipe(c, func(d *wizard.RecipeDraft) error {
		return d.Update(req)
	})
}

func (h *WizardHandler) NextRecipe(c *gin.Context) {
	h.editRecipe(c, func(d *wizard.RecipeDraft) error {
		return d.Next()
	})
}

func (h *WizardHandler) BackRecipe(c *gin.Context) {
	h.editRecipe(c, func(d *wizard.RecipeDraft) error {
		d.Back()
		return nil
	})
}

func (h *WizardHandler) FinishRecipe(c *gin.Context) {
	recipe, err := h.wizards.FinishRecipe(c.Request.Context(), uid(c), c.Param("id"))
	respond(c, http.StatusCreated, recipe, err)
}

func (h *WizardHandler) AddIngredient(c *gin.Context) {
	var req types.IngredientInput
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	ing, err := service.ParseIngredient("ingredient", req)
	if err != nil {
		fail(c, err)
		return
	}
	h.editRecipe(c, func(d *wizard.RecipeDraft) error {
		return d.AddIngredient(ing)
	})
}

func (h *WizardHandler) RemoveIngredient(c *gin.Context) {
	h.editRecipe(c, func(d *wizard.RecipeDraft) error {
		return d.RemoveIngredient(c.Param("ingredientId"))
	})
}

func (h *WizardHandler) AddStep(c *gin.Context) {
	var req types.AddStepRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	h.editRecipe(c, func(d *wizard.RecipeDraft) error {
		return d.AddStep(req.Step)
	})
}

func (h *WizardHandler) RemoveStep(c *gin.Context) {
	index, err := indexParam(c, "index")
	if err != nil {
		fail(c, err)
		return
	}
	h.editRecipe(c, func(d *wizard.RecipeDraft) error {
		return d.RemoveStep(index)
	})
}

