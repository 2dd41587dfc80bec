package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/larder/backend/internal/model"
	"github.com/pageza/larder/backend/internal/service"
	"github.com/pageza/larder/backend/internal/types"
)

// maxSourceImageSize bounds a multipart source image upload.
const maxSourceImageSize = 10 << 20

// UploadSourceImage stores a photo of a recipe and returns the key to use as
// the source of an image recipe.
func (h *RecipeHandler) UploadSourceImage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSourceImageSize)
	header, err := c.FormFile("image")
	if err != nil {
		fail(c, &service.ValidationError{Field: "image", Message: "an image file is required"})
		return
	}
	file, err := header.Open()
	if err != nil {
		fail(c, err)
		return
	}
	defer file.Close()

	ctx := c.Request.Context()
	key, err := h.images.UploadSourceImage(ctx, uid(c), header.Header.Get("Content-Type"), file)
	if err != nil {
		fail(c, err)
		return
	}
	url, err := h.images.SourceImageURL(ctx, uid(c), key)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, types.SourceImageResponse{Key: key, URL: url})
}

// SourceImage returns a short-lived download URL for an image recipe's source.
func (h *RecipeHandler) SourceImage(c *gin.Context) {
	ctx := c.Request.Context()
	recipe, err := h.recipes.Get(ctx, uid(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	if recipe.SourceType != model.SourceImage || recipe.Source == nil {
		fail(c, &service.ValidationError{Field: "source_type", Message: "recipe has no source image"})
		return
	}
	url, err := h.images.SourceImageURL(ctx, uid(c), *recipe.Source)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, types.SourceImageResponse{Key: *recipe.Source, URL: url})
}
