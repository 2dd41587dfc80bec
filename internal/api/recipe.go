package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/larder/backend/internal/service"
	"github.com/pageza/larder/backend/internal/types"
)

type RecipeHandler struct {
	recipes service.IRecipeService
	images  service.IImageService
}

// NewRecipeHandler creates a recipe handler. images may be nil, in which case
// the source image routes are not registered.
func NewRecipeHandler(recipes service.IRecipeService, images service.IImageService) *RecipeHandler {
	return &RecipeHandler{recipes: recipes, images: images}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.POST("", h.CreateRecipe)
		recipes.GET("/:id", h.GetRecipe)
		recipes.PATCH("/:id", h.RenameRecipe)
		recipes.DELETE("/:id", h.DeleteRecipe)
		recipes.POST("/:id/ingredients", h.AddIngredient)
		recipes.DELETE("/:id/ingredients/:ingredientId", h.DeleteIngredient)
		recipes.POST("/:id/steps", h.AddStep)
		recipes.DELETE("/:id/steps/:index", h.DeleteStep)
		if h.images != nil {
			recipes.POST("/source-images", h.UploadSourceImage)
			recipes.GET("/:id/source-image", h.SourceImage)
		}
	}
}

// ListRecipes returns the caller's recipes, filtered by the optional search
// query parameter.
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	recipes, err := h.recipes.List(c.Request.Context(), uid(c), c.Query("search"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req types.CreateRecipeRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	recipe, err := h.recipes.Create(c.Request.Context(), uid(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	recipe, err := h.recipes.Get(c.Request.Context(), uid(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) RenameRecipe(c *gin.Context) {
	var req types.RenameRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	if err := h.recipes.Rename(c.Request.Context(), uid(c), c.Param("id"), req.Name); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	if err := h.recipes.Delete(c.Request.Context(), uid(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) AddIngredient(c *gin.Context) {
	var req types.IngredientInput
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	ing, err := h.recipes.AddIngredient(c.Request.Context(), uid(c), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, ing)
}

func (h *RecipeHandler) DeleteIngredient(c *gin.Context) {
	if err := h.recipes.DeleteIngredient(c.Request.Context(), uid(c), c.Param("id"), c.Param("ingredientId")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) AddStep(c *gin.Context) {
	var req types.AddStepRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	if err := h.recipes.AddStep(c.Request.Context(), uid(c), c.Param("id"), req.Step); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) DeleteStep(c *gin.Context) {
	index, err := indexParam(c, "index")
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.recipes.DeleteStep(c.Request.Context(), uid(c), c.Param("id"), index); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
