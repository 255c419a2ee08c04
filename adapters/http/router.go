package http

import (
	"github.com/gin-gonic/gin"

	"github.com/khoahotran/program-catalog/pkg/auth"
	"github.com/khoahotran/program-catalog/pkg/logger"
)

type Handlers struct {
	Program  *ProgramHandler
	Category *CategoryHandler
	Language *LanguageHandler
	Auth     *AuthHandler
	Health   *HealthHandler
}

// RegisterRoutes mounts the API under /api. Reads accept anonymous callers,
// writes require a token; role checks happen in the use cases.
func RegisterRoutes(router *gin.Engine, h Handlers, jwtSvc *auth.JWTService, log logger.Logger) {
	optionalAuth := OptionalAuth(jwtSvc, log)
	requireAuth := RequireAuth(jwtSvc, log)

	if h.Health != nil {
		router.GET("/health", h.Health.Health)
	}

	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/login", h.Auth.Login)
			authGroup.POST("/refresh", h.Auth.Refresh)
		}

		programs := api.Group("/programs")
		{
			programs.GET("", optionalAuth, h.Program.ListPrograms)
			programs.GET("/search", optionalAuth, h.Program.SearchPrograms)
			programs.GET("/:id", optionalAuth, h.Program.GetProgram)
			programs.POST("/:id/increment-view", optionalAuth, h.Program.IncrementView)
			programs.POST("/:id/like", optionalAuth, h.Program.Like)
			programs.POST("", requireAuth, h.Program.CreateProgram)
			programs.PATCH("/:id", requireAuth, h.Program.UpdateProgram)
			programs.DELETE("/:id", requireAuth, h.Program.DeleteProgram)
		}

		categories := api.Group("/categories")
		{
			categories.GET("", h.Category.ListCategories)
			categories.GET("/active", h.Category.ListActiveCategories)
			categories.GET("/:id", h.Category.GetCategory)
			categories.POST("", requireAuth, h.Category.CreateCategory)
			categories.PATCH("/:id", requireAuth, h.Category.UpdateCategory)
			categories.DELETE("/:id", requireAuth, h.Category.DeleteCategory)
		}

		languages := api.Group("/languages")
		{
			languages.GET("", h.Language.ListLanguages)
			languages.GET("/active", h.Language.ListActiveLanguages)
			languages.GET("/:id", h.Language.GetLanguage)
			languages.POST("", requireAuth, h.Language.CreateLanguage)
			languages.PATCH("/:id", requireAuth, h.Language.UpdateLanguage)
			languages.DELETE("/:id", requireAuth, h.Language.DeleteLanguage)
		}
	}
}
