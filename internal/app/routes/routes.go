package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/fasbit/thesisvault/internal/app/controllers"
	"github.com/fasbit/thesisvault/internal/app/models"
	"github.com/fasbit/thesisvault/internal/app/models/dto"
	"github.com/fasbit/thesisvault/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	thesisController *controllers.ThesisController,
	userController *controllers.UserController,
	authMiddleware *middleware.AuthMiddleware,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/login", authController.Login)
	}

	// --- Thesis routes ---
	theses := v1.Group("/theses")
	{
		// Public catalog: a bad token degrades to a visitor here instead of
		// failing the request.
		theses.GET("", authMiddleware.OptionalAuth(), thesisController.ListTheses)
		theses.GET("/:id", authMiddleware.OptionalAuth(), thesisController.GetThesis)

		// File fetch requires a valid login (any role); visibility is
		// enforced per record by the service.
		theses.GET("/:id/pdf", authMiddleware.RequireAuth(), thesisController.DownloadPDF)

		// Coordinator-only workflow routes
		coordinatorProtected := theses.Group("")
		coordinatorProtected.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRole(models.RoleCoordinator))
		{
			coordinatorProtected.POST("", thesisController.CreateThesis)
			coordinatorProtected.POST("/:id/status", thesisController.UpdateStatus)
			coordinatorProtected.POST("/:id/visibility", thesisController.SetVisibility)
		}

		// Admin-only destructive lifecycle
		adminProtected := theses.Group("")
		adminProtected.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRole(models.RoleAdmin))
		{
			adminProtected.DELETE("/:id", thesisController.DeleteThesis)
		}
	}

	// --- Account routes ---
	users := v1.Group("/users")
	users.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRole(models.RoleAdmin))
	{
		users.POST("", userController.CreateUser)
	}

	// Stats (any authenticated role)
	v1.GET("/stats", authMiddleware.RequireAuth(), userController.GetStats)

	// Health check endpoint (public)
	v1.GET("/health", func(c *gin.Context) {
		c.JSON(200, dto.NewSuccessResponse(gin.H{"status": "ok"}, ""))
	})
}
