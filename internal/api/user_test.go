package api_test

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

func TestRegisterUser(t *testing.T) {
	a := newTestAPI(t)
	valid := map[string]string{
		"email":      "cook@example.com",
		"username":   "cook.42",
		"first_name": "Ann",
		"last_name":  "Cook",
		"password":   "long-enough",
	}

	w := a.do(http.MethodPost, "/api/users", valid, "")
	requireStatus(t, w, http.StatusCreated)
	got := decode[map[string]any](t, w)
	assert.Equal(t, "cook.42", got["username"])
	assert.NotContains(t, got, "password")
	assert.NotContains(t, got, "is_subscribed")

	tests := []struct {
		name      string
		override  map[string]string
		wantField string
	}{
		{name: "duplicate email", override: map[string]string{"username": "other"}, wantField: "email"},
		{name: "duplicate username", override: map[string]string{"email": "other@example.com"}, wantField: "username"},
		{name: "bad username", override: map[string]string{"username": "no spaces!", "email": "x@example.com"}, wantField: "username"},
		{name: "bad email", override: map[string]string{"email": "nope"}, wantField: "email"},
		{name: "short password", override: map[string]string{"password": "short", "email": "y@example.com", "username": "y"}, wantField: "password"},
		{name: "missing first name", override: map[string]string{"first_name": ""}, wantField: "first_name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := make(map[string]string, len(valid))
			for k, v := range valid {
				body[k] = v
			}
			for k, v := range tt.override {
				body[k] = v
			}
			w := a.do(http.MethodPost, "/api/users", body, "")
			requireStatus(t, w, http.StatusBadRequest)
			assert.Equal(t, tt.wantField, decode[api.ErrorResponse](t, w).Field)
		})
	}
}

func TestUsersEndpoints(t *testing.T) {
	a := newTestAPI(t)
	cook := testhelpers.CreateUser(t, a.db, "cook")
	chef := testhelpers.CreateUser(t, a.db, "chef")
	flour := testhelpers.CreateIngredient(t, a.db, "flour", "g")
	for _, name := range []string{"Bread", "Buns", "Pie"} {
		testhelpers.CreateRecipe(t, a.db, chef, name, map[*models.Ingredient]int{flour: 100})
	}
	token := a.tokenFor(cook)

	t.Run("me requires auth", func(t *testing.T) {
		requireStatus(t, a.do(http.MethodGet, "/api/users/me", nil, ""), http.StatusUnauthorized)
		w := a.do(http.MethodGet, "/api/users/me", nil, token)
		requireStatus(t, w, http.StatusOK)
		assert.Equal(t, cook.ID, decode[types.UserResponse](t, w).ID)
	})

	t.Run("unknown user", func(t *testing.T) {
		requireStatus(t, a.do(http.MethodGet, "/api/users/"+uuid.NewString(), nil, ""), http.StatusNotFound)
		requireStatus(t, a.do(http.MethodGet, "/api/users/not-a-uuid", nil, ""), http.StatusNotFound)
	})

	t.Run("subscribe flow", func(t *testing.T) {
		path := "/api/users/" + chef.ID.String() + "/subscribe"

		requireStatus(t, a.do(http.MethodPost, path, nil, ""), http.StatusUnauthorized)

		w := a.do(http.MethodPost, path+"?recipes_limit=2", nil, token)
		requireStatus(t, w, http.StatusCreated)
		sub := decode[types.SubscriptionResponse](t, w)
		assert.True(t, sub.IsSubscribed)
		assert.Len(t, sub.Recipes, 2)
		assert.EqualValues(t, 3, sub.RecipesCount)

		requireStatus(t, a.do(http.MethodPost, path, nil, token), http.StatusBadRequest)

		w = a.do(http.MethodGet, "/api/users/"+chef.ID.String(), nil, token)
		requireStatus(t, w, http.StatusOK)
		assert.True(t, decode[types.UserResponse](t, w).IsSubscribed)

		w = a.do(http.MethodGet, "/api/users/subscriptions?recipes_limit=1", nil, token)
		requireStatus(t, w, http.StatusOK)
		page := decode[types.Page[types.SubscriptionResponse]](t, w)
		assert.EqualValues(t, 1, page.Count)
		require.Len(t, page.Results, 1)
		assert.Len(t, page.Results[0].Recipes, 1)

		requireStatus(t, a.do(http.MethodGet, "/api/users/subscriptions?recipes_limit=x", nil, token), http.StatusBadRequest)

		requireStatus(t, a.do(http.MethodDelete, path, nil, token), http.StatusNoContent)
		requireStatus(t, a.do(http.MethodDelete, path, nil, token), http.StatusNotFound)
	})

	t.Run("cannot subscribe to self", func(t *testing.T) {
		w := a.do(http.MethodPost, "/api/users/"+cook.ID.String()+"/subscribe", nil, token)
		requireStatus(t, w, http.StatusBadRequest)
	})

	t.Run("list is paginated", func(t *testing.T) {
		w := a.do(http.MethodGet, "/api/users?limit=1", nil, "")
		requireStatus(t, w, http.StatusOK)
		page := decode[types.Page[types.UserResponse]](t, w)
		assert.EqualValues(t, 2, page.Count)
		require.Len(t, page.Results, 1)
		assert.Equal(t, "chef", page.Results[0].Username)
		require.NotNil(t, page.Next)
		assert.Contains(t, *page.Next, "page=2")
		assert.Nil(t, page.Previous)
	})

	t.Run("set password", func(t *testing.T) {
		w := a.do(http.MethodPost, "/api/users/set_password", map[string]string{
			"current_password": "wrong-password",
			"new_password":     "another-long-one",
		}, token)
		requireStatus(t, w, http.StatusBadRequest)

		w = a.do(http.MethodPost, "/api/users/set_password", map[string]string{
			"current_password": testhelpers.TestPassword,
			"new_password":     "another-long-one",
		}, token)
		requireStatus(t, w, http.StatusNoContent)

		w = a.do(http.MethodPost, "/api/auth/token/login", map[string]string{"email": cook.Email, "password": "another-long-one"}, "")
		requireStatus(t, w, http.StatusOK)
	})
}
