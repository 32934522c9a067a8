package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/pliro-dev/pliro/internal/config"
	"github.com/pliro-dev/pliro/internal/handlers"
	"github.com/pliro-dev/pliro/internal/middleware"
	"github.com/pliro-dev/pliro/internal/types"
)

func NewRouter(cfg *config.Config) *gin.Engine {
	r := gin.Default()

	// Add CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api/v1", middleware.RateLimit(cfg.RateLimitHourly, cfg.RateLimitDaily))
	{
		api.GET("/health", handlers.HealthCheck)

		projects := api.Group("/projects")
		{
			projects.POST("", handlers.CreateProject)
			projects.GET("", handlers.ListProjects)
			projects.GET("/:id", handlers.GetProject)
			projects.PUT("/:id", handlers.UpdateProject)
			projects.DELETE("/:id", handlers.DeleteProject)

			// Standard-mapping workflow
			projects.POST("/:id/map_standard", handlers.MapProjectStandards)
		}

		standards := api.Group("/standards")
		{
			standards.POST("", handlers.CreateStandard)
			standards.GET("", handlers.ListStandards)
			standards.GET("/:id", handlers.GetStandard)
			standards.PUT("/:id", handlers.UpdateStandard)
			standards.DELETE("/:id", handlers.DeleteStandard)

			// Inference-driven ingestion
			standards.POST("/upload", handlers.UploadStandard)
			standards.POST("/bulk-upload", handlers.BulkUploadStandards)

			// Approval workflow
			standards.POST("/:id/approve", handlers.ApproveStandard)
			standards.POST("/:id/reject", handlers.RejectStandard)
			standards.POST("/bulk-approve", handlers.BulkApproveStandards)
			standards.POST("/bulk-delete", handlers.BulkDeleteStandards)
		}

		users := api.Group("/users")
		{
			users.POST("", handlers.CreateUser)
			users.GET("", handlers.ListUsers)
			users.GET("/:id", handlers.GetUser)
			users.PUT("/:id", handlers.UpdateUser)
			users.DELETE("/:id", handlers.DeleteUser)
			users.POST("/verify", handlers.VerifyUser)
		}
	}

	return r
}
