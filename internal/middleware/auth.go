package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/apperror"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// Context keys set by the auth middleware.
const (
	ContextUserID    = "user_id"
	ContextPrincipal = "principal"
	ContextClaims    = "token_claims"
)

// Authenticator validates tokens and resolves the user behind them.
type Authenticator interface {
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// RequireAuth rejects requests without a valid token.
func RequireAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authenticate(c, auth, true)
	}
}

// OptionalAuth lets anonymous requests through but still rejects a bad token.
func OptionalAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authenticate(c, auth, false)
	}
}

func authenticate(c *gin.Context, auth Authenticator, required bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if required {
			unauthorized(c, "authentication credentials were not provided")
			return
		}
		c.Next()
		return
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || (parts[0] != "Bearer" && parts[0] != "Token") || parts[1] == "" {
		unauthorized(c, "invalid authorization header format")
		return
	}

	claims, err := auth.ValidateToken(c.Request.Context(), parts[1])
	if err != nil {
		var appErr *apperror.AppError
		if !errors.As(err, &appErr) {
			authFailed(c, err)
			return
		}
		unauthorized(c, appErr.Message)
		return
	}

	user, err := auth.GetUserByID(c.Request.Context(), claims.UserID)
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			authFailed(c, err)
			return
		}
		unauthorized(c, "user not found")
		return
	}

	c.Set(ContextUserID, user.ID)
	c.Set(ContextPrincipal, types.Principal{UserID: user.ID, IsAdmin: user.IsAdmin})
	c.Set(ContextClaims, claims)
	c.Next()
}

// authFailed reports an infrastructure failure during authentication without leaking its details.
func authFailed(c *gin.Context, err error) {
	slog.Error("authentication failed",
		slog.String("path", c.Request.URL.Path),
		slog.Any("error", err),
	)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"error":   "internal_error",
		"message": "An internal error occurred",
	})
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":   "unauthorized",
		"message": message,
	})
}

// PrincipalFrom returns the authenticated caller, if any.
func PrincipalFrom(c *gin.Context) (types.Principal, bool) {
	v, ok := c.Get(ContextPrincipal)
	if !ok {
		return types.Principal{}, false
	}
	p, ok := v.(types.Principal)
	return p, ok
}

// ViewerFrom returns the caller's id, or nil for an anonymous request.
func ViewerFrom(c *gin.Context) *uuid.UUID {
	p, ok := PrincipalFrom(c)
	if !ok {
		return nil
	}
	id := p.UserID
	return &id
}

// ClaimsFrom returns the claims of the token that authenticated the request.
func ClaimsFrom(c *gin.Context) (*types.TokenClaims, bool) {
	v, ok := c.Get(ContextClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*types.TokenClaims)
	return claims, ok
}
