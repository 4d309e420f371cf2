package integration

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/render"
	"github.com/pageza/foodgram/backend/internal/server"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

type client struct {
	t       *testing.T
	handler http.Handler
}

func (c client) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	return w
}

func (c client) expect(w *httptest.ResponseRecorder, status int, out any) {
	c.t.Helper()
	require.Equal(c.t, status, w.Code, w.Body.String())
	if out != nil {
		require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), out))
	}
}

func setupServer(t *testing.T) (client, *models.Tag, *models.Ingredient) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testhelpers.NewPostgresDB(t)
	rdb := testhelpers.NewRedisClient(t)

	tag := testhelpers.CreateTag(t, db, "dinner", models.ColorNavy)
	salt := testhelpers.CreateIngredient(t, db, "salt", "g")

	srv := server.New(&config.Config{ImageStorage: "local", MediaRoot: t.TempDir(), MediaURL: "/media/"}, server.Deps{
		DB: db,
		Services: api.Services{
			Auth:          service.NewAuthService(db, "integration-secret", time.Hour, service.NewRedisTokenRevoker(rdb)),
			Users:         service.NewUserService(db),
			Subscriptions: service.NewSubscriptionService(db),
			Recipes:       service.NewRecipeService(db, service.NewLocalImageStore(t.TempDir(), "/media/")),
			Favorites:     service.NewFavoriteService(db),
			ShoppingCart:  service.NewShoppingCartService(db),
			ShoppingList:  service.NewShoppingListService(db, render.NewPDFRenderer("")),
			Tags:          service.NewTagService(db),
			Ingredients:   service.NewIngredientService(db),
		},
		Options: api.Options{
			PageSize:      6,
			MaxPageSize:   100,
			CreateLimiter: middleware.NewRecipeCreationRateLimiter(rdb, 2),
			ModifyLimiter: middleware.NewRecipeModificationRateLimiter(rdb, 10),
		},
	})
	return client{t: t, handler: srv.Handler()}, tag, salt
}

func register(c client, username string) string {
	c.t.Helper()
	c.expect(c.do(http.MethodPost, "/api/users", map[string]string{
		"email":      username + "@example.com",
		"username":   username,
		"first_name": "First",
		"last_name":  "Last",
		"password":   "long-enough-pass",
	}, ""), http.StatusCreated, nil)

	var login struct {
		AuthToken string `json:"auth_token"`
	}
	c.expect(c.do(http.MethodPost, "/api/auth/token/login", map[string]string{
		"email":    username + "@example.com",
		"password": "long-enough-pass",
	}, ""), http.StatusOK, &login)
	require.NotEmpty(c.t, login.AuthToken)
	return login.AuthToken
}

func TestRecipeFlow(t *testing.T) {
	c, tag, salt := setupServer(t)
	chef := register(c, "chef")
	fan := register(c, "fan")

	var me types.UserResponse
	c.expect(c.do(http.MethodGet, "/api/users/me", nil, chef), http.StatusOK, &me)

	image := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png-bytes"))
	newRecipe := func(name string, amount int) map[string]any {
		return map[string]any{
			"ingredients":  []map[string]any{{"id": salt.ID, "amount": amount}},
			"tags":         []uint{tag.ID},
			"image":        image,
			"name":         name,
			"text":         "Season to taste.",
			"cooking_time": 15,
		}
	}

	var first, second types.RecipeResponse
	c.expect(c.do(http.MethodPost, "/api/recipes", newRecipe("Stew", 4), chef), http.StatusCreated, &first)
	c.expect(c.do(http.MethodPost, "/api/recipes", newRecipe("Roast", 6), chef), http.StatusCreated, &second)
	c.expect(c.do(http.MethodPost, "/api/recipes", newRecipe("Pie", 1), chef), http.StatusTooManyRequests, nil)

	var sub types.SubscriptionResponse
	c.expect(c.do(http.MethodPost, "/api/users/"+me.ID.String()+"/subscribe?recipes_limit=1", nil, fan), http.StatusCreated, &sub)
	assert.True(t, sub.IsSubscribed)
	assert.EqualValues(t, 2, sub.RecipesCount)
	assert.Len(t, sub.Recipes, 1)

	for _, r := range []types.RecipeResponse{first, second} {
		c.expect(c.do(http.MethodPost, "/api/recipes/"+r.ID.String()+"/shopping_cart", nil, fan), http.StatusCreated, nil)
	}
	c.expect(c.do(http.MethodPost, "/api/recipes/"+first.ID.String()+"/favorite", nil, fan), http.StatusCreated, nil)

	var page types.Page[types.RecipeResponse]
	c.expect(c.do(http.MethodGet, "/api/recipes?is_in_shopping_cart=1&tags=dinner", nil, fan), http.StatusOK, &page)
	assert.EqualValues(t, 2, page.Count)
	for _, r := range page.Results {
		assert.True(t, r.IsInShoppingCart)
		assert.True(t, r.Author.IsSubscribed)
	}

	w := c.do(http.MethodGet, "/api/recipes/download_shopping_cart", nil, fan)
	c.expect(w, http.StatusOK, nil)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))

	c.expect(c.do(http.MethodDelete, "/api/recipes/"+first.ID.String(), nil, fan), http.StatusForbidden, nil)
	c.expect(c.do(http.MethodDelete, "/api/recipes/"+first.ID.String(), nil, chef), http.StatusNoContent, nil)
	c.expect(c.do(http.MethodGet, "/api/recipes?is_favorited=1", nil, fan), http.StatusOK, &page)
	assert.Zero(t, page.Count)

	c.expect(c.do(http.MethodPost, "/api/auth/token/logout", nil, fan), http.StatusNoContent, nil)
	c.expect(c.do(http.MethodGet, "/api/users/me", nil, fan), http.StatusUnauthorized, nil)
}
