package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/orgtask-api/internal/middleware"
	"github.com/yukikurage/orgtask-api/internal/models"
	"github.com/yukikurage/orgtask-api/internal/repository"
	"github.com/yukikurage/orgtask-api/internal/services"
)

// RegisterRoutes builds the services over repos and mounts every endpoint
// on api. pusher receives the push deliveries of new notifications and may
// be nil.
func RegisterRoutes(api *gin.RouterGroup, repos *repository.Repositories, pusher services.Pusher) {
	dispatcher := services.NewDispatcher(repos.Notifications, repos.History, repos.FcmTokens, pusher)
	contributions := services.NewContributionService(repos.Users, repos.Tasks, repos.Contributions)

	authHandler := NewAuthHandler(services.NewAuthService(repos.Users))
	userHandler := NewUserHandler(services.NewHierarchyService(repos.Users, repos.Teams))
	taskHandler := NewTaskHandler(services.NewTaskService(repos, contributions, dispatcher), contributions)
	commentHandler := NewCommentHandler(services.NewCommentService(repos, dispatcher))
	notificationHandler := NewNotificationHandler(dispatcher)
	analyticsHandler := NewAnalyticsHandler(services.NewAnalyticsService(repos.Tasks))
	catalogHandler := NewCatalogHandler(services.NewCatalogService(repos.Catalog, repos.Users))

	requireAuth := middleware.RequireAuth(repos.Users)
	adminOnly := middleware.RequireRole(models.RoleAdmin)
	elevated := middleware.RequireRole(models.RoleAdmin, models.RoleManagement)

	// Auth routes (public)
	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/me", requireAuth, authHandler.GetCurrentUser)
	}

	users := api.Group("/users", requireAuth)
	{
		users.GET("/tree", userHandler.Tree)
		users.GET("/search", userHandler.SearchUser)
		users.GET("/to", userHandler.ListTOs)
		users.GET("/:id/to-hierarchy", userHandler.HierarchyTO)
		users.GET("/:id", userHandler.GetUser)
		users.POST("", adminOnly, userHandler.CreateUser)
		users.PATCH("/:id", adminOnly, userHandler.UpdateUser)
		users.DELETE("/:id", adminOnly, userHandler.DeleteUser)
	}
	api.GET("/teams", requireAuth, userHandler.ListTeams)

	tasks := api.Group("/tasks", requireAuth)
	{
		tasks.GET("", taskHandler.ListTasks)
		tasks.POST("", taskHandler.CreateTask)
		tasks.GET("/filter", taskHandler.FilterTasks)
		tasks.GET("/assignees", taskHandler.AssignedToUsers)
		tasks.GET("/creators", taskHandler.AssignedByUsers)
		tasks.GET("/:id", taskHandler.GetTask)
		tasks.PATCH("/:id", taskHandler.UpdateTask)
		tasks.DELETE("/:id", taskHandler.DeleteTask)
		tasks.GET("/:id/history", taskHandler.GetHistory)
		tasks.POST("/:id/contributors", taskHandler.AddContributors)
		tasks.DELETE("/:id/contributors/:user_id", taskHandler.RemoveContribution)
		tasks.GET("/:id/comments", commentHandler.ListComments)
		tasks.POST("/:id/comments", commentHandler.CreateComment)
	}

	comments := api.Group("/comments", requireAuth)
	{
		comments.PATCH("/:comment_id", commentHandler.UpdateComment)
		comments.DELETE("/:comment_id", commentHandler.DeleteComment)
	}

	notifications := api.Group("/notifications", requireAuth)
	{
		notifications.GET("", notificationHandler.Unread)
		notifications.POST("/fcm-token", notificationHandler.RegisterToken)
	}

	api.GET("/analytics", requireAuth, elevated, analyticsHandler.GetAnalytics)

	catalog := api.Group("", requireAuth)
	{
		catalog.GET("/brands", catalogHandler.ListBrands)
		catalog.POST("/brands", elevated, catalogHandler.CreateBrand)
		catalog.GET("/brands/:id", catalogHandler.GetBrand)
		catalog.PATCH("/brands/:id", elevated, catalogHandler.UpdateBrand)
		catalog.DELETE("/brands/:id", elevated, catalogHandler.DeleteBrand)
		catalog.POST("/brands/:id/contacts", catalogHandler.AddBrandContact)
		catalog.PATCH("/brands/:id/contacts/:contact_id", catalogHandler.UpdateBrandContact)
		catalog.POST("/brands/:id/owners", catalogHandler.AddBrandOwnership)
		catalog.GET("/inventories", catalogHandler.ListInventories)
		catalog.POST("/inventories", elevated, catalogHandler.CreateInventory)
		catalog.GET("/events", catalogHandler.ListEvents)
		catalog.POST("/events", elevated, catalogHandler.CreateEvent)
	}
}
