package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/larder/backend/internal/metrics"
	"github.com/pageza/larder/backend/internal/middleware"
	"github.com/pageza/larder/backend/internal/model"
	"github.com/pageza/larder/backend/internal/service"
	"github.com/pageza/larder/backend/internal/state"
	"github.com/pageza/larder/backend/internal/store"
)

// SSE event names.
const (
	eventSnapshot = "snapshot"
	eventNotFound = "not_found"
	eventError    = "error"
)

// StreamHandler pushes realtime snapshots of the caller's collections and
// documents as Server-Sent Events. Every event carries the full mirrored
// state, so a client can replace what it holds.
type StreamHandler struct {
	recipes service.IRecipeService
	lists   service.IGroceryListService
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewStreamHandler(recipes service.IRecipeService, lists service.IGroceryListService, m *metrics.Metrics, logger *zap.Logger) *StreamHandler {
	return &StreamHandler{recipes: recipes, lists: lists, metrics: m, logger: logger}
}

func (h *StreamHandler) RegisterRoutes(router *gin.RouterGroup) {
	stream := router.Group("/stream")
	{
		stream.GET("/recipes", h.Recipes)
		stream.GET("/recipes/:id", h.Recipe)
		stream.GET("/grocery-lists", h.GroceryLists)
		stream.GET("/grocery-lists/:id", h.GroceryList)
	}
}

func recipeID(r model.Recipe) string    { return r.ID }
func listID(l model.GroceryList) string { return l.ID }

func (h *StreamHandler) Recipes(c *gin.Context) {
	col, err := h.recipes.Collection(uid(c))
	if err != nil {
		fail(c, err)
		return
	}
	streamCollection(h, c, "recipes", col, recipeID)
}

func (h *StreamHandler) Recipe(c *gin.Context) {
	col, err := h.recipes.Collection(uid(c))
	if err != nil {
		fail(c, err)
		return
	}
	streamDocument(h, c, "recipe", col, recipeID)
}

func (h *StreamHandler) GroceryLists(c *gin.Context) {
	col, err := h.lists.Collection(uid(c))
	if err != nil {
		fail(c, err)
		return
	}
	streamCollection(h, c, "grocery_lists", col, listID)
}

func (h *StreamHandler) GroceryList(c *gin.Context) {
	col, err := h.lists.Collection(uid(c))
	if err != nil {
		fail(c, err)
		return
	}
	streamDocument(h, c, "grocery_list", col, listID)
}

func sseHeaders(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
}

// errorMessage hides internal failure detail from the client.
func (h *StreamHandler) errorMessage(c *gin.Context, stream string, err error) string {
	if middleware.Status(err) == http.StatusInternalServerError {
		h.logger.Error("subscription failed", zap.String("stream", stream), zap.String("uid", uid(c)), zap.Error(err))
		return "subscription failed"
	}
	return err.Error()
}

func streamCollection[T any](h *StreamHandler, c *gin.Context, stream string, col store.Collection[T], id func(T) string) {
	sub, err := col.SubscribeAll(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	defer sub.Cancel()
	defer h.metrics.SubscriptionOpened(stream)()

	slice := state.NewSlice(id)
	slice.Dispatch(state.SetLoading[T]{Loading: true})
	sseHeaders(c)

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case docs, ok := <-sub.Updates():
			if !ok {
				if err := sub.Err(); err != nil {
					st := slice.Dispatch(state.SetError[T]{Message: h.errorMessage(c, stream, err)})
					c.SSEvent(eventError, st)
				}
				return false
			}
			c.SSEvent(eventSnapshot, slice.Dispatch(state.SetAll[T]{Items: docs}))
			return true
		}
	})
}

func streamDocument[T any](h *StreamHandler, c *gin.Context, stream string, col store.Collection[T], id func(T) string) {
	docID := c.Param("id")
	sub, err := col.Subscribe(c.Request.Context(), docID)
	if err != nil {
		fail(c, err)
		return
	}
	defer sub.Cancel()
	defer h.metrics.SubscriptionOpened(stream)()

	// The slice mirrors the one document: Add on the first snapshot, Update
	// after that, Remove once it is gone.
	slice := state.NewSlice(id)
	mirrored := false
	sseHeaders(c)

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case snap, ok := <-sub.Updates():
			if !ok {
				if err := sub.Err(); err != nil {
					st := slice.Dispatch(state.SetError[T]{Message: h.errorMessage(c, stream, err)})
					c.SSEvent(eventError, st)
				}
				return false
			}
			if !snap.Found {
				slice.Dispatch(state.Remove[T]{ID: docID})
				c.SSEvent(eventNotFound, gin.H{"id": docID})
				return false
			}
			var st state.State[T]
			if mirrored {
				st = slice.Dispatch(state.Update[T]{Item: *snap.Doc})
			} else {
				slice.Dispatch(state.Add[T]{Item: *snap.Doc})
				st = slice.Dispatch(state.SetCurrent[T]{Item: snap.Doc})
				mirrored = true
			}
			c.SSEvent(eventSnapshot, st)
			return true
		}
	})
}
