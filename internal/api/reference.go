package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/apperror"
	"github.com/pageza/foodgram/backend/internal/service"
)

// ReferenceHandler serves the read-only tag and ingredient catalogues.
type ReferenceHandler struct {
	tags        service.ITagService
	ingredients service.IIngredientService
}

func NewReferenceHandler(tags service.ITagService, ingredients service.IIngredientService) *ReferenceHandler {
	return &ReferenceHandler{tags: tags, ingredients: ingredients}
}

func (h *ReferenceHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/tags", h.ListTags)
	router.GET("/tags/:id", h.GetTag)
	router.GET("/ingredients", h.SearchIngredients)
	router.GET("/ingredients/:id", h.GetIngredient)
}

func (h *ReferenceHandler) ListTags(c *gin.Context) {
	tags, err := h.tags.ListTags(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

func (h *ReferenceHandler) GetTag(c *gin.Context) {
	id, ok := uintParam(c, "tag")
	if !ok {
		return
	}
	tag, err := h.tags.GetTag(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

func (h *ReferenceHandler) SearchIngredients(c *gin.Context) {
	ingredients, err := h.ingredients.SearchIngredients(c.Request.Context(), c.Query("name"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredients)
}

func (h *ReferenceHandler) GetIngredient(c *gin.Context) {
	id, ok := uintParam(c, "ingredient")
	if !ok {
		return
	}
	ingredient, err := h.ingredients.GetIngredient(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredient)
}

func uintParam(c *gin.Context, resource string) (uint, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 0)
	if err != nil || id == 0 {
		writeError(c, apperror.NotFound(resource, raw))
		return 0, false
	}
	return uint(id), true
}
