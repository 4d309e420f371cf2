package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/apperror"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

type RecipeHandler struct {
	recipes      service.IRecipeService
	favorites    service.IRecipeListService
	shoppingCart service.IRecipeListService
	shoppingList service.IShoppingListService
	auth         middleware.Authenticator
	opts         Options
}

func NewRecipeHandler(svc Services, opts Options) *RecipeHandler {
	return &RecipeHandler{
		recipes:      svc.Recipes,
		favorites:    svc.Favorites,
		shoppingCart: svc.ShoppingCart,
		shoppingList: svc.ShoppingList,
		auth:         svc.Auth,
		opts:         opts,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	requireAuth := middleware.RequireAuth(h.auth)
	optionalAuth := middleware.OptionalAuth(h.auth)

	create := []gin.HandlerFunc{requireAuth}
	modify := []gin.HandlerFunc{requireAuth}
	if h.opts.CreateLimiter != nil {
		create = append(create, h.opts.CreateLimiter.RateLimitMiddleware())
	}
	if h.opts.ModifyLimiter != nil {
		modify = append(modify, h.opts.ModifyLimiter.PerRecipeRateLimitMiddleware())
	}

	recipes := router.Group("/recipes")
	{
		recipes.GET("", optionalAuth, h.ListRecipes)
		recipes.GET("/download_shopping_cart", requireAuth, h.DownloadShoppingCart)
		recipes.GET("/:id", optionalAuth, h.GetRecipe)
		recipes.POST("", chain(create, h.CreateRecipe)...)
		recipes.PATCH("/:id", chain(modify, h.UpdateRecipe)...)
		recipes.DELETE("/:id", chain(modify, h.DeleteRecipe)...)
		recipes.POST("/:id/favorite", requireAuth, h.addTo(h.favorites))
		recipes.DELETE("/:id/favorite", requireAuth, h.removeFrom(h.favorites))
		recipes.POST("/:id/shopping_cart", requireAuth, h.addTo(h.shoppingCart))
		recipes.DELETE("/:id/shopping_cart", requireAuth, h.removeFrom(h.shoppingCart))
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	page, err := h.opts.parsePagination(c)
	if err != nil {
		writeError(c, err)
		return
	}
	filter, err := parseRecipeFilter(c)
	if err != nil {
		writeError(c, err)
		return
	}

	recipes, count, err := h.recipes.ListRecipes(c.Request.Context(), filter, middleware.ViewerFrom(c), page)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPage(c, page, count, recipes))
}

func parseRecipeFilter(c *gin.Context) (types.RecipeFilter, error) {
	var filter types.RecipeFilter
	for _, slug := range c.QueryArray("tags") {
		if slug = strings.TrimSpace(slug); slug != "" {
			filter.Tags = append(filter.Tags, slug)
		}
	}
	if raw := c.Query("author"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, apperror.ValidationFailed("author", "author must be a user id")
		}
		filter.AuthorID = &id
	}
	var err error
	if filter.IsFavorited, err = queryBool(c, "is_favorited"); err != nil {
		return filter, err
	}
	if filter.IsInShoppingCart, err = queryBool(c, "is_in_shopping_cart"); err != nil {
		return filter, err
	}
	return filter, nil
}

// queryBool accepts 1/0 and true/false.
func queryBool(c *gin.Context, name string) (bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, apperror.ValidationFailed(name, name+" must be 0 or 1")
	}
	return v, nil
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}
	recipe, err := h.recipes.GetRecipe(c.Request.Context(), id, middleware.ViewerFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req types.CreateRecipeRequest
	if !bindJSON(c, &req) {
		return
	}
	principal, _ := middleware.PrincipalFrom(c)

	recipe, err := h.recipes.CreateRecipe(c.Request.Context(), principal.UserID, &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}
	var req types.UpdateRecipeRequest
	if !bindJSON(c, &req) {
		return
	}
	principal, _ := middleware.PrincipalFrom(c)

	recipe, err := h.recipes.UpdateRecipe(c.Request.Context(), id, principal, &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}
	principal, _ := middleware.PrincipalFrom(c)

	if err := h.recipes.DeleteRecipe(c.Request.Context(), id, principal); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) addTo(list service.IRecipeListService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := recipeID(c)
		if !ok {
			return
		}
		summary, err := list.Add(c.Request.Context(), *middleware.ViewerFrom(c), id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, summary)
	}
}

func (h *RecipeHandler) removeFrom(list service.IRecipeListService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := recipeID(c)
		if !ok {
			return
		}
		if err := list.Remove(c.Request.Context(), *middleware.ViewerFrom(c), id); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	doc, err := h.shoppingList.Export(c.Request.Context(), *middleware.ViewerFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, doc.FileName))
	c.Data(http.StatusOK, doc.ContentType, doc.Content)
}

func chain(middlewares []gin.HandlerFunc, handler gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(middlewares)+1)
	out = append(out, middlewares...)
	return append(out, handler)
}

func recipeID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, apperror.NotFound("recipe", c.Param("id")))
		return uuid.Nil, false
	}
	return id, true
}
