// Package api exposes the HTTP surface under /api.
package api

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
)

// Services bundles everything the handlers call into.
type Services struct {
	Auth          service.IAuthService
	Users         service.IUserService
	Subscriptions service.ISubscriptionService
	Recipes       service.IRecipeService
	Favorites     service.IRecipeListService
	ShoppingCart  service.IRecipeListService
	ShoppingList  service.IShoppingListService
	Tags          service.ITagService
	Ingredients   service.IIngredientService
}

// Options tunes pagination and rate limiting. Nil limiters disable rate limiting.
type Options struct {
	PageSize      int
	MaxPageSize   int
	CreateLimiter *middleware.RateLimiter
	ModifyLimiter *middleware.RateLimiter
}

// RegisterRoutes registers all API routes on router.
func RegisterRoutes(router *gin.RouterGroup, svc Services, opts Options) {
	RegisterValidators()
	if opts.PageSize <= 0 {
		opts.PageSize = 6
	}

	NewAuthHandler(svc.Auth).RegisterRoutes(router)
	NewUserHandler(svc.Users, svc.Subscriptions, svc.Auth, opts).RegisterRoutes(router)
	NewRecipeHandler(svc, opts).RegisterRoutes(router)
	NewReferenceHandler(svc.Tags, svc.Ingredients).RegisterRoutes(router)
}

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// RegisterValidators adds the custom binding rules and reports fields by their JSON names.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
}
