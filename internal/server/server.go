package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/RoastedBrotato/TaskManagementSystem/internal/config"
	"github.com/RoastedBrotato/TaskManagementSystem/internal/handlers"
	"github.com/RoastedBrotato/TaskManagementSystem/internal/middleware"
	"github.com/RoastedBrotato/TaskManagementSystem/internal/monitoring"
	"github.com/RoastedBrotato/TaskManagementSystem/internal/services"
)

// Deps is everything the router needs, built once in main and injected.
type Deps struct {
	Config  *config.Config
	Users   services.UserService
	Tasks   services.TaskService
	Auth    services.AuthService
	Metrics *monitoring.Metrics
	Health  *monitoring.HealthChecker
	// Reminders may be nil when no job queue is configured.
	Reminders handlers.ReminderScheduler
}

// NewRouter builds the full route table. Authentication happens in
// middleware; authorization happens inside the handlers via the policy
// package.
func NewRouter(deps Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
	}))
	if deps.Metrics != nil {
		router.Use(deps.Metrics.Middleware())
	}
	if deps.Config.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(deps.Config.RateLimit.RequestsPerMin, deps.Config.RateLimit.BurstSize)
		router.Use(limiter.Middleware())
	}

	authHandler := handlers.NewAuthHandler(deps.Users, deps.Auth)
	userHandler := handlers.NewUserHandler(deps.Users)
	taskHandler := handlers.NewTaskHandler(deps.Tasks, deps.Reminders)

	if deps.Health != nil {
		router.GET("/health", deps.Health.Handler())
	}
	if deps.Metrics != nil {
		router.GET("/metrics", deps.Metrics.Handler())
	}

	api := router.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", authHandler.Logout)

	authenticated := api.Group("")
	authenticated.Use(middleware.Authenticate(deps.Auth))

	users := authenticated.Group("/users")
	users.GET("", userHandler.GetUsers)
	users.POST("", userHandler.CreateUser)
	users.GET("/:id", userHandler.GetUser)
	users.PUT("/:id", userHandler.UpdateUser)
	users.DELETE("/:id", userHandler.DeleteUser)

	tasks := authenticated.Group("/tasks")
	tasks.GET("", taskHandler.GetTasks)
	tasks.POST("", taskHandler.CreateTask)
	tasks.GET("/user", taskHandler.GetMyTasks)
	tasks.GET("/:id", taskHandler.GetTask)
	tasks.PUT("/:id", taskHandler.UpdateTask)
	tasks.PUT("/:id/status", taskHandler.UpdateTaskStatus)
	tasks.DELETE("/:id", taskHandler.DeleteTask)

	return router
}
