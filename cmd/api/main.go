package main

import (
	"context"
	"fmt"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Youngermaster/taskhub/internal/api/handlers"
	"github.com/Youngermaster/taskhub/internal/api/middleware"
	"github.com/Youngermaster/taskhub/internal/api/routes"
	"github.com/Youngermaster/taskhub/internal/domain/activity"
	"github.com/Youngermaster/taskhub/internal/domain/project"
	"github.com/Youngermaster/taskhub/internal/domain/reports"
	"github.com/Youngermaster/taskhub/internal/domain/task"
	"github.com/Youngermaster/taskhub/internal/domain/user"
	"github.com/Youngermaster/taskhub/internal/infrastructure/cache"
	"github.com/Youngermaster/taskhub/internal/infrastructure/persistence/postgres/connection"
	"github.com/Youngermaster/taskhub/internal/infrastructure/persistence/postgres/migrations"
	"github.com/Youngermaster/taskhub/internal/infrastructure/scheduler"
	"github.com/Youngermaster/taskhub/pkg/config"
	"github.com/Youngermaster/taskhub/pkg/logger"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
)

// RequestLoggerMiddleware logs all incoming HTTP requests
func RequestLoggerMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		fields := []zap.Field{
			zap.String("path", path),
			zap.String("method", method),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		// The auth middleware runs inside c.Next(), so the caller's role is
		// available here for authenticated routes.
		if role := middleware.GetRole(c); role != "" {
			fields = append(fields, zap.String("role", role))
		}

		log.Info("Request completed", fields...)
	}
}

func main() {
	cfg, err := config.LoadConfig("")
	if err != nil {
		stdlog.Fatalf("Failed to load configuration: %v", err)
	}

	log := logger.NewLogger(cfg.Logging.Level)
	defer log.Sync()

	log.Info("Configuration loaded successfully")
	log.Info("Server mode: " + cfg.Server.Mode)

	// The activity subsystem keeps its own structured logger so audit
	// writes are traceable separately from request logs.
	activityLog := logrus.New()
	activityLog.SetFormatter(&logrus.JSONFormatter{})
	activityLog.SetOutput(os.Stdout)

	if cfg.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLoggerMiddleware(log))
	router.Use(middleware.NewMetricsMiddleware().CollectMetrics())
	router.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORS.AllowedOrigins,
		AllowMethods: cfg.CORS.AllowedMethods,
		AllowHeaders: append(cfg.CORS.AllowedHeaders,
			"Accept-Encoding",
			"Content-Type",
			"Authorization",
		),
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Connect to database
	db, err := connection.NewDatabase(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := migrations.AutoMigrate(db, log.Logger); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Connect to Redis
	redisClient, err := cache.NewClient(cache.NewConfigFromEnv(cfg))
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	// Repositories
	userRepo := user.NewRepository(db)
	projectRepo := project.NewRepository(db)
	taskRepo := task.NewRepository(db)
	activityRepo := activity.NewRepository(db, activityLog)
	reportRepo := reports.NewRepository(db)

	// Services
	projectService := project.NewService(projectRepo, userRepo, taskRepo, activityRepo, redisClient, log.Logger)
	taskService := task.NewService(taskRepo, projectRepo, userRepo, activityRepo, redisClient, log.Logger)
	reportService := reports.NewService(reportRepo, activityRepo, projectRepo, userRepo, redisClient, log.Logger)

	// Handlers and routes
	projectHandler := handlers.NewProjectHandler(projectService)
	taskHandler := handlers.NewTaskHandler(taskService)
	reportHandler := handlers.NewReportHandler(reportService)

	routes.SetupHealthRoutes(router, db, redisClient)
	routes.NewProjectRoutes(projectHandler, cfg.Auth.JWTSecret).RegisterRoutes(router)
	routes.NewTaskRoutes(taskHandler, cfg.Auth.JWTSecret).RegisterRoutes(router)
	routes.NewReportRoutes(reportHandler, cfg.Auth.JWTSecret).RegisterRoutes(router)

	// Activity retention sweep
	retention := scheduler.NewScheduler(activityRepo, cfg.Activity.RetentionDays, cfg.Activity.SweepInterval, log)
	retention.Start()
	defer retention.Stop()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Info("Starting server", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}
