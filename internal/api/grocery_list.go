package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/larder/backend/internal/service"
	"github.com/pageza/larder/backend/internal/types"
)

type GroceryListHandler struct {
	lists service.IGroceryListService
}

func NewGroceryListHandler(lists service.IGroceryListService) *GroceryListHandler {
	return &GroceryListHandler{lists: lists}
}

func (h *GroceryListHandler) RegisterRoutes(router *gin.RouterGroup) {
	lists := router.Group("/grocery-lists")
	{
		lists.GET("", h.ListGroceryLists)
		lists.POST("", h.CreateGroceryList)
		lists.POST("/aggregate", h.Aggregate)
		lists.GET("/:id", h.GetGroceryList)
		lists.PATCH("/:id", h.RenameGroceryList)
		lists.DELETE("/:id", h.DeleteGroceryList)
		lists.POST("/:id/items", h.AddItem)
		lists.POST("/:id/items/:itemId/toggle", h.ToggleItem)
		lists.DELETE("/:id/items/:itemId", h.DeleteItem)
	}
}

func (h *GroceryListHandler) ListGroceryLists(c *gin.Context) {
	lists, err := h.lists.List(c.Request.Context(), uid(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"grocery_lists": lists})
}

// CreateGroceryList builds a list from the combined ingredients of the
// selected recipes.
func (h *GroceryListHandler) CreateGroceryList(c *gin.Context) {
	var req types.CreateGroceryListRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	list, err := h.lists.CreateFromRecipes(c.Request.Context(), uid(c), req.Name, req.RecipeIDs)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, list)
}

// Aggregate previews the combined ingredients without creating a list.
func (h *GroceryListHandler) Aggregate(c *gin.Context) {
	var req types.AggregateRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	ingredients, err := h.lists.Aggregate(c.Request.Context(), uid(c), req.RecipeIDs)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ingredients": ingredients})
}

func (h *GroceryListHandler) GetGroceryList(c *gin.Context) {
	list, err := h.lists.Get(c.Request.Context(), uid(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *GroceryListHandler) RenameGroceryList(c *gin.Context) {
	var req types.RenameRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	if err := h.lists.Rename(c.Request.Context(), uid(c), c.Param("id"), req.Name); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *GroceryListHandler) DeleteGroceryList(c *gin.Context) {
	if err := h.lists.Delete(c.Request.Context(), uid(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *GroceryListHandler) AddItem(c *gin.Context) {
	var req types.IngredientInput
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	item, err := h.lists.AddItem(c.Request.Context(), uid(c), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *GroceryListHandler) ToggleItem(c *gin.Context) {
	if err := h.lists.ToggleItem(c.Request.Context(), uid(c), c.Param("id"), c.Param("itemId")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *GroceryListHandler) DeleteItem(c *gin.Context) {
	if err := h.lists.DeleteItem(c.Request.Context(), uid(c), c.Param("id"), c.Param("itemId")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
