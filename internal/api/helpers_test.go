package api_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/render"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

const testSecret = "api-test-secret-that-is-long-enough"

// testAPI is a fully wired router backed by a private sqlite database.
type testAPI struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
	auth   *service.AuthService
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testhelpers.NewSQLiteDB(t)
	auth := service.NewAuthService(db, testSecret, time.Hour, service.NewMemoryTokenRevoker())

	router := gin.New()
	api.RegisterRoutes(router.Group("/api"), api.Services{
		Auth:          auth,
		Users:         service.NewUserService(db).WithBcryptCost(bcrypt.MinCost),
		Subscriptions: service.NewSubscriptionService(db),
		Recipes:       service.NewRecipeService(db, service.NewLocalImageStore(t.TempDir(), "/media/")),
		Favorites:     service.NewFavoriteService(db),
		ShoppingCart:  service.NewShoppingCartService(db),
		ShoppingList:  service.NewShoppingListService(db, render.NewPDFRenderer("")),
		Tags:          service.NewTagService(db),
		Ingredients:   service.NewIngredientService(db),
	}, api.Options{PageSize: 6, MaxPageSize: 100})
	router.GET("/health", api.HealthCheck(db))

	return &testAPI{t: t, db: db, router: router, auth: auth}
}

// tokenFor issues a token for user.
func (a *testAPI) tokenFor(user *models.User) string {
	a.t.Helper()
	token, err := a.auth.GenerateToken(user)
	require.NoError(a.t, err)
	return token
}

// do performs a request. body is JSON-encoded when not nil; token may be empty.
func (a *testAPI) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
}
