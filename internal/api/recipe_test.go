package api_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/larder/backend/internal/model"
	"github.com/pageza/larder/backend/internal/router"
	"github.com/pageza/larder/backend/internal/service"
	"github.com/pageza/larder/backend/internal/types"
)

func createRecipe(t *testing.T, a *testAPI, token string, req types.CreateRecipeRequest) model.Recipe {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/v1/recipes", token, req)
	requireStatus(t, http.StatusCreated, w)
	return decode[model.Recipe](t, w)
}

func TestRecipeCRUD(t *testing.T) {
	a := setupTestAPI(t)
	_, token := a.createTestUserAndToken(t, "cook@example.com")

	src := "https://example.com/pancakes"
	created := createRecipe(t, a, token, types.CreateRecipeRequest{
		Name:       "  Pancakes ",
		SourceType: model.SourceURL,
		Source:     &src,
		Ingredients: []types.IngredientInput{
			{Name: "Flour", Amount: "2", Unit: "cup"},
			{Name: "Milk", Amount: "1.5", Unit: "cup"},
		},
		Steps: []string{"Mix", "Fry"},
	})
	assert.Equal(t, "Pancakes", created.Name)
	require.Len(t, created.Ingredients, 2)
	assert.Equal(t, 1.5, created.Ingredients[1].Amount)

	w := a.do(t, http.MethodGet, "/api/v1/recipes/"+created.ID, token, nil)
	requireStatus(t, http.StatusOK, w)
	assert.Equal(t, created.ID, decode[model.Recipe](t, w).ID)

	createRecipe(t, a, token, types.CreateRecipeRequest{Name: "Toast"})
	w = a.do(t, http.MethodGet, "/api/v1/recipes", token, nil)
	requireStatus(t, http.StatusOK, w)
	list := decode[struct {
		Recipes []model.Recipe `json:"recipes"`
	}](t, w)
	require.Len(t, list.Recipes, 2)
	assert.ElementsMatch(t, []string{"Pancakes", "Toast"}, []string{list.Recipes[0].Name, list.Recipes[1].Name})

	w = a.do(t, http.MethodPatch, "/api/v1/recipes/"+created.ID, token, types.RenameRequest{Name: "Crepes"})
	requireStatus(t, http.StatusNoContent, w)
	w = a.do(t, http.MethodGet, "/api/v1/recipes/"+created.ID, token, nil)
	assert.Equal(t, "Crepes", decode[model.Recipe](t, w).Name)

	w = a.do(t, http.MethodDelete, "/api/v1/recipes/"+created.ID, token, nil)
	requireStatus(t, http.StatusNoContent, w)
	w = a.do(t, http.MethodGet, "/api/v1/recipes/"+created.ID, token, nil)
	requireStatus(t, http.StatusNotFound, w)
}

func TestCreateRecipeValidation(t *testing.T) {
	a := setupTestAPI(t)
	_, token := a.createTestUserAndToken(t, "cook@example.com")

	tests := []struct {
		name string
		req  types.CreateRecipeRequest
	}{
		{"blank name", types.CreateRecipeRequest{Name: "   "}},
		{"url without source", types.CreateRecipeRequest{Name: "Soup", SourceType: model.SourceURL}},
		{"unknown source type", types.CreateRecipeRequest{Name: "Soup", SourceType: "fax"}},
		{"negative amount", types.CreateRecipeRequest{Name: "Soup", Ingredients: []types.IngredientInput{{Name: "Salt", Amount: "-1"}}}},
		{"non-numeric amount", types.CreateRecipeRequest{Name: "Soup", Ingredients: []types.IngredientInput{{Name: "Salt", Amount: "a pinch"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := a.do(t, http.MethodPost, "/api/v1/recipes", token, tt.req)
			requireStatus(t, http.StatusBadRequest, w)
		})
	}

	w := a.do(t, http.MethodGet, "/api/v1/recipes", token, nil)
	assert.JSONEq(t, `{"recipes":[]}`, w.Body.String(), "nothing is persisted")
}

func TestRecipeIngredientsAndSteps(t *testing.T) {
	a := setupTestAPI(t)
	_, token := a.createTestUserAndToken(t, "cook@example.com")
	r := createRecipe(t, a, token, types.CreateRecipeRequest{Name: "Soup", Steps: []string{"Boil"}})
	base := "/api/v1/recipes/" + r.ID

	w := a.do(t, http.MethodPost, base+"/ingredients", token, map[string]any{"name": "Salt", "amount": 1, "unit": "tsp"})
	requireStatus(t, http.StatusCreated, w)
	salt := decode[model.Ingredient](t, w)
	assert.Equal(t, 1.0, salt.Amount)

	w = a.do(t, http.MethodPost, base+"/ingredients", token, map[string]any{"name": "", "amount": "1"})
	requireStatus(t, http.StatusBadRequest, w)

	w = a.do(t, http.MethodPost, base+"/steps", token, types.AddStepRequest{Step: "  Season  "})
	requireStatus(t, http.StatusNoContent, w)
	w = a.do(t, http.MethodPost, base+"/steps", token, types.AddStepRequest{Step: "   "})
	requireStatus(t, http.StatusBadRequest, w)

	w = a.do(t, http.MethodGet, base, token, nil)
	got := decode[model.Recipe](t, w)
	assert.Equal(t, model.Steps{"Boil", "Season"}, got.Steps)
	require.Len(t, got.Ingredients, 1)

	w = a.do(t, http.MethodDelete, base+"/steps/0", token, nil)
	requireStatus(t, http.StatusNoContent, w)
	w = a.do(t, http.MethodDelete, base+"/steps/9", token, nil)
	requireStatus(t, http.StatusNoContent, w)
	w = a.do(t, http.MethodDelete, base+"/steps/first", token, nil)
	requireStatus(t, http.StatusBadRequest, w)

	w = a.do(t, http.MethodDelete, base+"/ingredients/"+salt.ID, token, nil)
	requireStatus(t, http.StatusNoContent, w)

	w = a.do(t, http.MethodGet, base, token, nil)
	got = decode[model.Recipe](t, w)
	assert.Equal(t, model.Steps{"Season"}, got.Steps)
	assert.Empty(t, got.Ingredients)
}

func TestRecipesAreScopedToUser(t *testing.T) {
	a := setupTestAPI(t)
	_, alice := a.createTestUserAndToken(t, "alice@example.com")
	_, bob := a.createTestUserAndToken(t, "bob@example.com")
	r := createRecipe(t, a, alice, types.CreateRecipeRequest{Name: "Secret stew"})

	requireStatus(t, http.StatusNotFound, a.do(t, http.MethodGet, "/api/v1/recipes/"+r.ID, bob, nil))
	requireStatus(t, http.StatusNotFound, a.do(t, http.MethodDelete, "/api/v1/recipes/"+r.ID, bob, nil))
	requireStatus(t, http.StatusOK, a.do(t, http.MethodGet, "/api/v1/recipes/"+r.ID, alice, nil))
}

type fakeImages struct {
	uploads map[string]string
}

func (f *fakeImages) UploadSourceImage(_ context.Context, uid, contentType string, body io.Reader) (string, error) {
	if contentType != "image/png" {
		return "", &service.ValidationError{Field: "file", Message: "unsupported image type"}
	}
	b, _ := io.ReadAll(body)
	key := fmt.Sprintf("source-images/%s/%d.png", uid, len(f.uploads))
	f.uploads[key] = string(b)
	return key, nil
}

func (f *fakeImages) SourceImageURL(_ context.Context, uid, key string) (string, error) {
	if !strings.HasPrefix(key, "source-images/"+uid+"/") {
		return "", &service.ValidationError{Field: "source", Message: "not a source image of this user"}
	}
	return "https://bucket.test/" + key + "?signed", nil
}

func uploadRequest(t *testing.T, token, contentType string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image"; filename="card.png"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/recipes/source-images", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestSourceImages(t *testing.T) {
	images := &fakeImages{uploads: map[string]string{}}
	a := setupTestAPI(t, func(o *router.Options) { o.Images = images })
	_, token := a.createTestUserAndToken(t, "cook@example.com")

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, uploadRequest(t, token, "image/png", []byte("png-bytes")))
	requireStatus(t, http.StatusCreated, w)
	uploaded := decode[types.SourceImageResponse](t, w)
	assert.Equal(t, "png-bytes", images.uploads[uploaded.Key])
	assert.Contains(t, uploaded.URL, uploaded.Key)

	w = httptest.NewRecorder()
	a.router.ServeHTTP(w, uploadRequest(t, token, "application/pdf", []byte("%PDF")))
	requireStatus(t, http.StatusBadRequest, w)

	r := createRecipe(t, a, token, types.CreateRecipeRequest{
		Name: "Grandma's cake", SourceType: model.SourceImage, Source: &uploaded.Key,
	})
	w = a.do(t, http.MethodGet, "/api/v1/recipes/"+r.ID+"/source-image", token, nil)
	requireStatus(t, http.StatusOK, w)
	assert.Equal(t, uploaded.Key, decode[types.SourceImageResponse](t, w).Key)

	manual := createRecipe(t, a, token, types.CreateRecipeRequest{Name: "Toast"})
	w = a.do(t, http.MethodGet, "/api/v1/recipes/"+manual.ID+"/source-image", token, nil)
	requireStatus(t, http.StatusBadRequest, w)
}

func TestSourceImageRoutesNeedObjectStorage(t *testing.T) {
	a := setupTestAPI(t)
	_, token := a.createTestUserAndToken(t, "cook@example.com")

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, uploadRequest(t, token, "image/png", []byte("png")))
	assert.NotEqual(t, http.StatusCreated, w.Code)
}

func TestListRecipesSearch(t *testing.T) {
	a := setupTestAPI(t)
	_, token := a.createTestUserAndToken(t, "cook@example.com")
	createRecipe(t, a, token, types.CreateRecipeRequest{Name: "Green Curry", Ingredients: ingredients("coconut milk", "1", "can")})
	createRecipe(t, a, token, types.CreateRecipeRequest{Name: "Smoothie", Ingredients: ingredients("Coconut Water", "200", "ml")})
	createRecipe(t, a, token, types.CreateRecipeRequest{Name: "Toast"})

	w := a.do(t, http.MethodGet, "/api/v1/recipes?search=COCONUT", token, nil)
	requireStatus(t, http.StatusOK, w)
	got := decode[struct {
		Recipes []model.Recipe `json:"recipes"`
	}](t, w).Recipes
	names := make([]string, 0, len(got))
	for _, r := range got {
		names = append(names, r.Name)
	}
	assert.ElementsMatch(t, []string{"Green Curry", "Smoothie"}, names)

	w = a.do(t, http.MethodGet, "/api/v1/recipes", token, nil)
	requireStatus(t, http.StatusOK, w)
	assert.Len(t, decode[struct {
		Recipes []model.Recipe `json:"recipes"`
	}](t, w).Recipes, 3)
}
