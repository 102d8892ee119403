package routes

import (
	"conference-management-api/controllers"
	"conference-management-api/middleware"
	"conference-management-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			// Authentication
			public.POST("/register", controllers.Register)
			public.POST("/login", controllers.Login)
			public.POST("/refresh", controllers.RefreshToken)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Conference Management API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// Auth management
			protected.POST("/logout", controllers.Logout)

			// User profile
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/change-password", controllers.ChangePassword)

			// In-app notifications
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", controllers.GetMyNotifications)
				notifications.GET("/unread-count", controllers.GetUnreadCount)
				notifications.PUT("/:id/read", controllers.MarkNotificationRead)
				notifications.PUT("/read-all", controllers.MarkAllNotificationsRead)
			}

			// Papers
			papers := protected.Group("/papers")
			{
				// Listing and detail are role-scoped inside the handlers
				papers.GET("", controllers.GetPapers)
				papers.GET("/:id", controllers.GetPaper)
				papers.GET("/:id/reviews", controllers.GetPaperReviews)
				papers.GET("/:id/feedback", controllers.GetFeedback)
				papers.POST("/:id/feedback", controllers.SubmitFeedback)

				// Author actions
				papers.POST("", middleware.RequireRole(models.RoleAuthor), controllers.SubmitPaper)
				papers.PUT("/:id/resubmit", middleware.RequireRole(models.RoleAuthor), controllers.ResubmitPaper)
				papers.PUT("/:id/camera-ready", middleware.RequireRole(models.RoleAuthor), controllers.UploadCameraReady)

				// Reviewer actions
				papers.POST("/:id/review", middleware.RequireRole(models.RoleReviewer), controllers.SubmitReview)

				// Admin actions
				papers.POST("/:id/approve", middleware.RequireRole(models.RoleAdmin), controllers.ApprovePaper)
				papers.POST("/:id/assign", middleware.RequireRole(models.RoleAdmin), controllers.AssignReviewers)
				papers.PUT("/:id/status", middleware.RequireRole(models.RoleAdmin), controllers.SetFinalStatus)
				papers.PUT("/:id/payment", middleware.RequireRole(models.RoleAdmin), controllers.UpdatePaymentStatus)
				papers.DELETE("/:id", middleware.RequireRole(models.RoleAdmin), controllers.DeletePaper)
			}

			// Admin user management
			admin := protected.Group("/admin")
			admin.Use(middleware.RequireRole(models.RoleAdmin))
			{
				admin.GET("/users", controllers.ListUsers)
			}
		}
	}
}
