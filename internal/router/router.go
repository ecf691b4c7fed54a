package router

import (
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/collabsphere-dev/collabsphere/internal/chat"
	"github.com/collabsphere-dev/collabsphere/internal/handlers"
	"github.com/collabsphere-dev/collabsphere/internal/middleware"
	"github.com/collabsphere-dev/collabsphere/internal/types"
)

func NewRouter(hub *chat.Hub) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Uploaded avatars
	r.Static("/uploads", filepath.Clean(types.UploadDir()))

	chatHandler := handlers.NewChatHandler(hub)

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/ws", middleware.AuthMiddleware(), chatHandler.HandleWebSocket)

		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register)
			auth.POST("/login", handlers.Login)
			auth.GET("/profile", middleware.AuthMiddleware(), handlers.GetProfile)
			auth.PUT("/profile", middleware.AuthMiddleware(), handlers.UpdateProfile)
			auth.POST("/profile/avatar", middleware.AuthMiddleware(), handlers.UploadAvatar)

			admin := auth.Group("/users", middleware.AuthMiddleware(), middleware.AdminOnly())
			{
				admin.GET("", handlers.ListUsers)
				admin.PUT("/:id/role", handlers.UpdateUserRole)
			}
		}

		workspaces := api.Group("/workspaces", middleware.AuthMiddleware())
		{
			workspaces.POST("", handlers.CreateWorkspace)
			workspaces.GET("", handlers.ListWorkspaces)
			workspaces.GET("/:id", handlers.GetWorkspace)
			workspaces.PUT("/:id", handlers.UpdateWorkspace)
			workspaces.DELETE("/:id", handlers.DeleteWorkspace)
			workspaces.POST("/:id/members", handlers.AddWorkspaceMember)
		}

		projects := api.Group("/projects", middleware.AuthMiddleware())
		{
			projects.POST("", handlers.CreateProject)
			projects.GET("", handlers.ListProjects)
			projects.GET("/:id", handlers.GetProject)
			projects.PUT("/:id", handlers.UpdateProject)
			projects.DELETE("/:id", handlers.DeleteProject)
		}

		tasks := api.Group("/tasks", middleware.AuthMiddleware())
		{
			tasks.POST("", handlers.CreateTask)
			tasks.GET("", handlers.ListTasks)
			tasks.GET("/:id", handlers.GetTask)
			tasks.PUT("/:id", handlers.UpdateTask)
			tasks.DELETE("/:id", handlers.DeleteTask)
		}

		messages := api.Group("/messages", middleware.AuthMiddleware())
		{
			messages.GET("/:project_id", handlers.GetMessages)
			messages.POST("", handlers.CreateMessage)
		}
	}

	return r
}
