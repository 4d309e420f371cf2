package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/apperror"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

type UserHandler struct {
	users         service.IUserService
	subscriptions service.ISubscriptionService
	auth          middleware.Authenticator
	opts          Options
}

func NewUserHandler(users service.IUserService, subscriptions service.ISubscriptionService, auth middleware.Authenticator, opts Options) *UserHandler {
	return &UserHandler{
		users:         users,
		subscriptions: subscriptions,
		auth:          auth,
		opts:          opts,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	requireAuth := middleware.RequireAuth(h.auth)
	optionalAuth := middleware.OptionalAuth(h.auth)

	users := router.Group("/users")
	{
		users.POST("", h.Register)
		users.GET("", optionalAuth, h.ListUsers)
		users.GET("/me", requireAuth, h.Me)
		users.POST("/set_password", requireAuth, h.SetPassword)
		users.GET("/subscriptions", requireAuth, h.ListSubscriptions)
		users.GET("/:id", optionalAuth, h.GetUser)
		users.POST("/:id/subscribe", requireAuth, h.Subscribe)
		users.DELETE("/:id/subscribe", requireAuth, h.Unsubscribe)
	}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.users.Register(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, types.RegisteredUserResponse{
		Email:     user.Email,
		ID:        user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	page, err := h.opts.parsePagination(c)
	if err != nil {
		writeError(c, err)
		return
	}
	users, count, err := h.users.ListUsers(c.Request.Context(), middleware.ViewerFrom(c), page)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPage(c, page, count, users))
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, apperror.NotFound("user", c.Param("id")))
		return
	}
	user, err := h.users.GetUser(c.Request.Context(), id, middleware.ViewerFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Me(c *gin.Context) {
	viewer := middleware.ViewerFrom(c)
	user, err := h.users.GetUser(c.Request.Context(), *viewer, viewer)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) SetPassword(c *gin.Context) {
	var req types.SetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	viewer := middleware.ViewerFrom(c)
	if err := h.users.SetPassword(c.Request.Context(), *viewer, &req); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) ListSubscriptions(c *gin.Context) {
	page, err := h.opts.parsePagination(c)
	if err != nil {
		writeError(c, err)
		return
	}
	recipesLimit, err := queryInt(c, "recipes_limit")
	if err != nil {
		writeError(c, err)
		return
	}

	subs, count, err := h.subscriptions.ListSubscriptions(c.Request.Context(), *middleware.ViewerFrom(c), page, recipesLimit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPage(c, page, count, subs))
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, apperror.NotFound("user", c.Param("id")))
		return
	}
	recipesLimit, err := queryInt(c, "recipes_limit")
	if err != nil {
		writeError(c, err)
		return
	}

	sub, err := h.subscriptions.Subscribe(c.Request.Context(), *middleware.ViewerFrom(c), id, recipesLimit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, apperror.NotFound("user", c.Param("id")))
		return
	}
	if err := h.subscriptions.Unsubscribe(c.Request.Context(), *middleware.ViewerFrom(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
