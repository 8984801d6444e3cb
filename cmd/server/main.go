package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/RoastedBrotato/TaskManagementSystem/internal/cache"
	"github.com/RoastedBrotato/TaskManagementSystem/internal/config"
	"github.com/RoastedBrotato/TaskManagementSystem/internal/database"
	"github.com/RoastedBrotato/TaskManagementSystem/internal/handlers"
	"github.com/RoastedBrotato/TaskManagementSystem/internal/monitoring"
	"github.com/RoastedBrotato/TaskManagementSystem/internal/repositories"
	"github.com/RoastedBrotato/TaskManagementSystem/internal/server"
	"github.com/RoastedBrotato/TaskManagementSystem/internal/services"
	"github.com/RoastedBrotato/TaskManagementSystem/internal/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}

	hasher := services.NewBcryptHasher(cfg.Auth.BCryptCost)
	if err := database.Seed(db, hasher); err != nil {
		log.Fatalf("failed to seed database: %v", err)
	}

	userRepo := repositories.NewUserRepository(db)
	taskRepo := repositories.NewTaskRepository(db)
	tokenRepo := repositories.NewRefreshTokenRepository(db)

	userService := services.NewUserService(userRepo, taskRepo, tokenRepo, hasher)
	authService := services.NewAuthService(userRepo, tokenRepo, cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)

	var taskService services.TaskService = services.NewTaskService(taskRepo)

	metrics := monitoring.NewMetrics()
	health := monitoring.NewHealthChecker()
	health.Register("database", func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})

	var reminders handlers.ReminderScheduler
	var jobWorker *worker.Worker

	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:         cfg.GetRedisAddr(),
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})

		redisCache := cache.NewRedisCacheWithClient(client)
		if err := redisCache.Health(); err != nil {
			log.Printf("redis unreachable, running without cache and worker: %v", err)
		} else {
			taskService = services.NewCachedTaskService(taskService, redisCache)
			health.Register("redis", func(ctx context.Context) error {
				return client.Ping(ctx).Err()
			})

			if cfg.Worker.Enabled {
				reminders = worker.NewQueue(client)
				jobWorker = worker.NewWorker(client, worker.ReminderQueue)
				jobWorker.SetPollInterval(cfg.Worker.PollInterval)
				jobWorker.RegisterHandler(worker.JobTypeTaskReminder, worker.LogReminder)
				jobWorker.Start(cfg.Worker.Concurrency)
			}
		}
	}

	router := server.NewRouter(server.Deps{
		Config:    cfg,
		Users:     userService,
		Tasks:     taskService,
		Auth:      authService,
		Metrics:   metrics,
		Health:    health,
		Reminders: reminders,
	})

	srv := &http.Server{
		Addr:         cfg.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Printf("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")
	if jobWorker != nil {
		jobWorker.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("server stopped")
}
