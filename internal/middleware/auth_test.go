package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/pageza/foodgram/backend/internal/apperror"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

func newAuthRouter(auth Authenticator, required bool) *gin.Engine {
	router := gin.New()
	handler := OptionalAuth(auth)
	if required {
		handler = RequireAuth(auth)
	}
	router.GET("/me", handler, func(c *gin.Context) {
		viewer := ViewerFrom(c)
		if viewer == nil {
			c.String(http.StatusOK, "anonymous")
			return
		}
		p, _ := PrincipalFrom(c)
		claims, _ := ClaimsFrom(c)
		c.JSON(http.StatusOK, gin.H{"id": viewer.String(), "admin": p.IsAdmin, "jti": claims.ID})
	})
	return router
}

func doGet(router http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	user := &models.User{ID: uuid.New(), Username: "chef", IsAdmin: true}
	claims := &types.TokenClaims{UserID: user.ID}
	claims.ID = "token-1"

	t.Run("valid token sets principal", func(t *testing.T) {
		auth := new(testhelpers.MockAuthenticator)
		auth.On("ValidateToken", mock.Anything, "good").Return(claims, nil)
		auth.On("GetUserByID", mock.Anything, user.ID).Return(user, nil)

		for _, scheme := range []string{"Bearer", "Token"} {
			w := doGet(newAuthRouter(auth, true), scheme+" good")
			assert.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, `{"id":"`+user.ID.String()+`","admin":true,"jti":"token-1"}`, w.Body.String())
		}
		auth.AssertExpectations(t)
	})

	t.Run("missing header", func(t *testing.T) {
		auth := new(testhelpers.MockAuthenticator)
		w := doGet(newAuthRouter(auth, true), "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "credentials were not provided")
		auth.AssertNotCalled(t, "ValidateToken", mock.Anything, mock.Anything)
	})

	t.Run("malformed header", func(t *testing.T) {
		auth := new(testhelpers.MockAuthenticator)
		for _, header := range []string{"good", "Basic abc", "Bearer "} {
			w := doGet(newAuthRouter(auth, true), header)
			assert.Equal(t, http.StatusUnauthorized, w.Code, header)
		}
	})

	t.Run("invalid token", func(t *testing.T) {
		auth := new(testhelpers.MockAuthenticator)
		auth.On("ValidateToken", mock.Anything, "bad").Return(nil, apperror.Unauthorized("invalid token"))
		w := doGet(newAuthRouter(auth, true), "Bearer bad")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "invalid token")
	})

	t.Run("revocation store down", func(t *testing.T) {
		auth := new(testhelpers.MockAuthenticator)
		auth.On("ValidateToken", mock.Anything, "good").
			Return(nil, fmt.Errorf("checking token revocation: %w", errors.New("dial tcp 127.0.0.1:6379: connect: connection refused")))
		w := doGet(newAuthRouter(auth, true), "Bearer good")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "dial tcp")
		assert.Contains(t, w.Body.String(), "internal_error")
	})

	t.Run("user lookup fails", func(t *testing.T) {
		auth := new(testhelpers.MockAuthenticator)
		auth.On("ValidateToken", mock.Anything, "good").Return(claims, nil)
		auth.On("GetUserByID", mock.Anything, user.ID).Return(nil, errors.New("database is locked"))
		w := doGet(newAuthRouter(auth, true), "Bearer good")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "locked")
	})

	t.Run("deleted user", func(t *testing.T) {
		auth := new(testhelpers.MockAuthenticator)
		auth.On("ValidateToken", mock.Anything, "good").Return(claims, nil)
		auth.On("GetUserByID", mock.Anything, user.ID).Return(nil, apperror.NotFound("user", user.ID.String()))
		w := doGet(newAuthRouter(auth, true), "Bearer good")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestOptionalAuth(t *testing.T) {
	t.Run("anonymous passes", func(t *testing.T) {
		w := doGet(newAuthRouter(new(testhelpers.MockAuthenticator), false), "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "anonymous", w.Body.String())
	})

	t.Run("bad token still rejected", func(t *testing.T) {
		auth := new(testhelpers.MockAuthenticator)
		auth.On("ValidateToken", mock.Anything, "bad").Return(nil, apperror.Unauthorized("token has been revoked"))
		w := doGet(newAuthRouter(auth, false), "Token bad")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

var _ Authenticator = (*testhelpers.MockAuthenticator)(nil)
