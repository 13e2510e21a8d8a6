package main

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/Lousuarez/LourenTask/internal/handler"
	"github.com/Lousuarez/LourenTask/internal/middleware"
	"github.com/Lousuarez/LourenTask/pkg/config"
	"github.com/Lousuarez/LourenTask/pkg/database"
	"github.com/Lousuarez/LourenTask/pkg/jwtutil"
	"github.com/Lousuarez/LourenTask/pkg/logger"
	"github.com/Lousuarez/LourenTask/prometheus"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	log.Info("Starting task service...", zap.String("environment", cfg.Server.Env))

	// Initialize database
	if err := database.InitDB(cfg); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Initialize JWT utility
	jwtutil.Initialize(&cfg.JWT)
	log.Info("JWT utility initialized")

	// Initialize the task engine (SLA timezone, transition executor)
	if err := handler.Init(cfg); err != nil {
		log.Fatal("Failed to initialize task engine", zap.Error(err))
	}
	log.Info("Task engine initialized", zap.String("sla_timezone", cfg.Engine.SLATimezone))

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(prometheus.GetPrometheusHandler()))

	// Authentication routes
	auth := e.Group("/auth")
	auth.POST("/login", handler.Login)
	auth.POST("/register", handler.Register)

	// API routes - all require authentication
	api := e.Group("/api")
	api.Use(middleware.AuthMiddleware)

	// User management
	users := api.Group("/users")
	users.GET("/profile", handler.GetProfile)
	users.GET("", handler.ListUsers)
	users.PATCH("/:id", handler.UpdateUser)

	// Tenant management
	tenants := api.Group("/tenants")
	tenants.POST("", handler.CreateTenant)
	tenants.GET("", handler.ListTenants)
	tenants.GET("/:id", handler.GetTenant)
	tenants.POST("/switch", handler.SwitchTenant)

	// Status workflow management
	statuses := api.Group("/statuses")
	statuses.POST("", handler.CreateStatus)
	statuses.GET("", handler.ListStatuses)
	statuses.PATCH("/:id", handler.UpdateStatus)

	// Catalog entities shared across tenants
	catalogs := api.Group("/catalogs")
	catalogs.POST("/sectors", handler.CreateSector)
	catalogs.GET("/sectors", handler.ListSectors)
	catalogs.POST("/criticalities", handler.CreateCriticality)
	catalogs.GET("/criticalities", handler.ListCriticalities)
	catalogs.POST("/entry-methods", handler.CreateEntryMethod)
	catalogs.GET("/entry-methods", handler.ListEntryMethods)
	catalogs.POST("/task-types", handler.CreateTaskType)
	catalogs.GET("/task-types", handler.ListTaskTypes)
	catalogs.POST("/tags", handler.CreateTag)
	catalogs.GET("/tags", handler.ListTags)
	catalogs.DELETE("/:entity/:id", handler.DeactivateCatalogEntry)

	// Task lifecycle
	tasks := api.Group("/tasks")
	tasks.POST("", handler.CreateTask)
	tasks.GET("", handler.ListTasks)
	tasks.GET("/:id", handler.GetTask)
	tasks.PATCH("/:id", handler.UpdateTask)
	tasks.DELETE("/:id", handler.DeleteTask)
	tasks.POST("/:id/transition", handler.TransitionTask)
	tasks.GET("/:id/actions", handler.GetTaskActions)
	tasks.GET("/:id/history", handler.GetTaskHistory)

	// Dashboard metrics
	api.GET("/dashboard", handler.GetDashboard)

	// Get server port from configuration
	port := cfg.Server.Port

	// Start server
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
