package api

import (
	"net/http"

	"github.com/CarlJazper/PSPWEB/internal/domain"
	"github.com/CarlJazper/PSPWEB/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	engagementService service.EngagementService,
	paymentService service.PaymentService,
	catalogService service.CatalogService,
	reportingService service.ReportingService,
	membershipService service.MembershipService,
) {

	authHandler := NewAuthHandler(authService)
	engagementHandler := NewEngagementHandler(engagementService, paymentService)
	catalogHandler := NewCatalogHandler(catalogService)
	reportingHandler := NewReportingHandler(reportingService, membershipService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userIDStr, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			role, _ := getUserRoleFromContext(c)
			c.JSON(http.StatusOK, gin.H{"userId": userIDStr, "role": role})
		})

		protected.GET("/users/get-all-coaches", authHandler.GetCoaches)

		// --- Trainer Engagement Routes ---
		// Paths mirror the mobile/web clients' existing availTrainer API.
		availGroup := protected.Group("/availTrainer")
		{
			availGroup.POST("/create-trainer", engagementHandler.CreateEngagement)
			availGroup.GET("/get-all-trainers", RoleMiddleware(domain.RoleAdmin), engagementHandler.GetAllEngagements)
			availGroup.GET("/get-trainer/:id", engagementHandler.GetEngagement)
			availGroup.PUT("/update-trainer/:id", RoleMiddleware(domain.RoleAdmin), engagementHandler.UpdateEngagement)
			availGroup.DELETE("/delete-trainer/:id", RoleMiddleware(domain.RoleAdmin), engagementHandler.DeleteEngagement)

			availGroup.GET("/coach/:id", engagementHandler.GetByCoach)
			availGroup.GET("/client/:id", engagementHandler.GetByClient)

			// Session lifecycle. The session is addressed by ?sessionId=...
			availGroup.PUT("/update/session/:id", engagementHandler.ScheduleSession)
			availGroup.PUT("/cancel/session/:id", engagementHandler.CancelSession)
			availGroup.PUT("/complete/session/:id", engagementHandler.CompleteSession)

			availGroup.GET("/has-active/:id", engagementHandler.HasActiveTraining)

			availGroup.POST("/avail-trainer-payment-intent", engagementHandler.CreatePaymentIntent)

			availGroup.GET("/sales-stats", RoleMiddleware(domain.RoleAdmin), reportingHandler.GetSalesStats)
		}

		// --- Branch Routes ---
		branchGroup := protected.Group("/branch")
		{
			branchGroup.POST("/create-branch", RoleMiddleware(domain.RoleAdmin), catalogHandler.CreateBranch)
			branchGroup.GET("/get-all-branches", catalogHandler.GetAllBranches)
			branchGroup.GET("/get-branch/:id", catalogHandler.GetBranch)
			branchGroup.PUT("/update-branch/:id", RoleMiddleware(domain.RoleAdmin), catalogHandler.UpdateBranch)
			branchGroup.DELETE("/delete-branch/:id", RoleMiddleware(domain.RoleAdmin), catalogHandler.DeleteBranch)
		}

		// --- Exercise Routes ---
		exerciseGroup := protected.Group("/exercises")
		{
			exerciseGroup.POST("", RoleMiddleware(domain.RoleAdmin, domain.RoleCoach), catalogHandler.CreateExercise)
			exerciseGroup.GET("", catalogHandler.GetAllExercises)
			exerciseGroup.GET("/:id", catalogHandler.GetExercise)
			exerciseGroup.PUT("/:id", RoleMiddleware(domain.RoleAdmin, domain.RoleCoach), catalogHandler.UpdateExercise)
			exerciseGroup.DELETE("/:id", RoleMiddleware(domain.RoleAdmin, domain.RoleCoach), catalogHandler.DeleteExercise)

			exerciseGroup.POST("/:id/media/upload-url", RoleMiddleware(domain.RoleAdmin, domain.RoleCoach), catalogHandler.RequestMediaUpload)
			exerciseGroup.POST("/:id/media/confirm", RoleMiddleware(domain.RoleAdmin, domain.RoleCoach), catalogHandler.ConfirmMediaUpload)
		}

		// --- Membership / Reporting Routes ---
		transactionGroup := protected.Group("/transactions")
		{
			transactionGroup.POST("", RoleMiddleware(domain.RoleAdmin), reportingHandler.CreateTransaction)
			transactionGroup.GET("", RoleMiddleware(domain.RoleAdmin), reportingHandler.GetAllTransactions)
			transactionGroup.GET("/user/:id", reportingHandler.GetTransactionsByUser)
		}

		logsGroup := protected.Group("/logs")
		{
			logsGroup.POST("/check-in", reportingHandler.CheckIn)
			logsGroup.GET("/today", RoleMiddleware(domain.RoleAdmin), reportingHandler.GetTodayAttendance)
		}
	}
}
