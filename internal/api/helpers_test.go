package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/larder/backend/internal/metrics"
	"github.com/pageza/larder/backend/internal/realtime"
	"github.com/pageza/larder/backend/internal/router"
	"github.com/pageza/larder/backend/internal/service"
	"github.com/pageza/larder/backend/internal/store"
	"github.com/pageza/larder/backend/internal/testhelpers"
	"github.com/pageza/larder/backend/internal/wizard"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testAPI struct {
	router  *gin.Engine
	auth    *service.AuthService
	metrics *metrics.Metrics
}

func setupTestAPI(t *testing.T, opts ...func(*router.Options)) *testAPI {
	t.Helper()
	db := testhelpers.SetupTestDB(t)
	logger := zap.NewNop()
	m := metrics.New()
	s := store.NewSQLStore(db, realtime.NewHub(), logger)
	auth := service.NewAuthService(db, "test-secret-that-is-long-enough-for-hs256")
	recipes := service.NewRecipeService(s, logger, m)
	lists := service.NewGroceryListService(s, logger, m)

	o := router.Options{
		Logger:       logger,
		Metrics:      m,
		CORSOrigins:  []string{"http://localhost:5173"},
		Tokens:       auth,
		Auth:         auth,
		Recipes:      recipes,
		GroceryLists: lists,
		Wizards:      wizard.NewService(wizard.NewMemoryDraftStore(), lists, recipes, logger),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &testAPI{router: router.SetupRouter(o), auth: auth, metrics: m}
}

// createTestUserAndToken registers a user and returns its uid and bearer token.
func (a *testAPI) createTestUserAndToken(t *testing.T, email string) (string, string) {
	t.Helper()
	user, token, err := a.auth.Register(context.Background(), email, "correct-horse")
	require.NoError(t, err)
	return user.ID, token
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func requireStatus(t *testing.T, want int, w *httptest.ResponseRecorder) {
	t.Helper()
	require.Equal(t, want, w.Code, "body: %s", w.Body.String())
}

