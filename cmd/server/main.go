package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/crewpoint/staff-events-backend/internal/config"
	"github.com/crewpoint/staff-events-backend/internal/database"
	"github.com/crewpoint/staff-events-backend/internal/handlers"
	"github.com/crewpoint/staff-events-backend/internal/middleware"
	"github.com/crewpoint/staff-events-backend/internal/models"
	"github.com/crewpoint/staff-events-backend/internal/services"
	"github.com/crewpoint/staff-events-backend/pkg/jwt"
	"github.com/crewpoint/staff-events-backend/pkg/notify"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting CrewPoint Staff Events Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Initialize repositories
	eventRepository := database.NewEventRepository(db)
	staffRepository := database.NewStaffRepository(db)
	levelRepository := database.NewLevelRepository(db)
	adjustmentRepository := database.NewAdjustmentRepository(db)
	auditRepository := database.NewAuditRepository(db)

	// Initialize notification gateways
	var primary notify.Dispatcher
	var chat notify.Dispatcher

	if cfg.Notify.Mode == "production" {
		logger.Info("Initializing mail gateway in production mode...")
		primary = notify.NewMailGateway(notify.MailConfig{
			APIURL: cfg.Notify.MailAPIURL,
			APIKey: cfg.Notify.MailAPIKey,
			Sender: cfg.Notify.MailSender,
		})

		if cfg.Notify.ChatEnabled && cfg.Notify.BotToken != "" {
			chatGateway, err := notify.NewTelegramGateway(cfg.Notify.BotToken)
			if err != nil {
				logger.Warnf("Chat gateway unavailable, continuing without it: %v", err)
			} else {
				chat = chatGateway
				logger.Info("Chat gateway initialized")
			}
		}
	} else {
		logger.Info("Notifications in development mode (logged, not sent)")
		primary = notify.NewLogGateway(logger)
		if cfg.Notify.ChatEnabled {
			chat = notify.NewLogGateway(logger)
		}
	}

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	auditService := services.NewAuditService(auditRepository, cfg.Security.EnableAuditLog, logger)
	notificationService := services.NewNotificationService(
		staffRepository,
		eventRepository,
		levelRepository,
		primary,
		chat,
		cfg.Notify.ChatEnabled,
		logger,
	)
	levelService := services.NewLevelService(levelRepository, staffRepository)
	pointsService := services.NewPointsService(
		staffRepository,
		eventRepository,
		adjustmentRepository,
		levelService,
		notificationService,
		logger,
	)
	eventService := services.NewEventService(
		eventRepository,
		staffRepository,
		levelRepository,
		pointsService,
		levelService,
		notificationService,
		logger,
	)
	authService := services.NewAuthService(staffRepository, jwtService, cfg.Security.BcryptCost)
	staffService := services.NewStaffService(staffRepository)
	logger.Info("Services initialized")

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, staffService, auditService)
	eventHandler := handlers.NewEventHandler(eventService, auditService)
	staffHandler := handlers.NewStaffHandler(staffService, pointsService, auditService)
	levelHandler := handlers.NewLevelHandler(levelService, auditService)
	pointsHandler := handlers.NewPointsHandler(pointsService, auditService)
	auditHandler := handlers.NewAuditHandler(auditService)

	// Initialize Gin router
	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	// CORS configuration
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Authentication routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)

			// Protected routes (require JWT authentication)
			protected := auth.Group("")
			protected.Use(middleware.AuthMiddleware(jwtService))
			{
				protected.GET("/profile", authHandler.GetProfile)
				protected.PUT("/profile", authHandler.UpdateProfile)
			}
		}

		// Event routes (protected)
		events := v1.Group("/events")
		events.Use(middleware.AuthMiddleware(jwtService))
		{
			events.GET("", eventHandler.List)
			events.GET("/:id", eventHandler.Get)
			events.POST("/:id/signup", eventHandler.SignUp)
			events.DELETE("/:id/signup", eventHandler.CancelSignUp)

			// Administrative event management
			adminEvents := events.Group("")
			adminEvents.Use(middleware.RequireRole(models.RoleAdmin))
			{
				adminEvents.POST("", eventHandler.Create)
				adminEvents.PUT("/:id", eventHandler.Update)
				adminEvents.DELETE("/:id", eventHandler.Delete)
				adminEvents.POST("/:id/open", eventHandler.Open)
				adminEvents.POST("/:id/cancel", eventHandler.Cancel)
				adminEvents.POST("/:id/reinstate", eventHandler.Reinstate)
				adminEvents.POST("/:id/close", eventHandler.Close)
				adminEvents.POST("/:id/confirm/:staff_id", pointsHandler.ConfirmOne)
				adminEvents.POST("/:id/confirm-all", pointsHandler.ConfirmAll)
				adminEvents.GET("/:id/signups", eventHandler.Signups)
				adminEvents.POST("/:id/signups/bulk", eventHandler.BulkSignUp)
			}
		}

		// Staff routes (protected)
		staff := v1.Group("/staff")
		staff.Use(middleware.AuthMiddleware(jwtService))
		{
			// Own record or administrator
			staff.GET("/:id", middleware.RequireSelfOrAdmin("id"), staffHandler.Get)
			staff.GET("/:id/standing", middleware.RequireSelfOrAdmin("id"), staffHandler.Standing)
			staff.GET("/:id/history", middleware.RequireSelfOrAdmin("id"), staffHandler.History)

			// Administrative staff management
			adminStaff := staff.Group("")
			adminStaff.Use(middleware.RequireRole(models.RoleAdmin))
			{
				adminStaff.GET("", staffHandler.List)
				adminStaff.POST("/:id/activate", staffHandler.Activate)
				adminStaff.POST("/:id/deactivate", staffHandler.Deactivate)
				adminStaff.POST("/:id/roles", staffHandler.GrantRole)
			}
		}

		// Level ladder routes (protected)
		levels := v1.Group("/levels")
		levels.Use(middleware.AuthMiddleware(jwtService))
		{
			levels.GET("", levelHandler.List)

			adminLevels := levels.Group("")
			adminLevels.Use(middleware.RequireRole(models.RoleAdmin))
			{
				adminLevels.POST("", levelHandler.Create)
				adminLevels.PUT("/reorder", levelHandler.Reorder)
				adminLevels.PUT("/:id", levelHandler.Update)
				adminLevels.DELETE("/:id", levelHandler.Delete)
			}
		}

		// Points routes (administrators only)
		points := v1.Group("/points")
		points.Use(middleware.AuthMiddleware(jwtService))
		points.Use(middleware.RequireRole(models.RoleAdmin))
		{
			points.POST("/adjust", pointsHandler.Adjust)
			points.POST("/:id/recompute", pointsHandler.Recompute)
		}

		// Audit trail (administrators only)
		audit := v1.Group("/audit")
		audit.Use(middleware.AuthMiddleware(jwtService))
		audit.Use(middleware.RequireRole(models.RoleAdmin))
		{
			audit.GET("", auditHandler.Recent)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": latency.Milliseconds(),
			"user_agent": c.Request.UserAgent(),
		}

		if userCtx, ok := middleware.GetUserContext(c); ok {
			fields["user_id"] = userCtx.UserID
			fields["role"] = userCtx.Role
		}

		entry := logger.WithFields(fields)

		if len(c.Errors) > 0 {
			for i, err := range c.Errors {
				entry = entry.WithField(fmt.Sprintf("error_%d", i), err.Error())
			}
			entry.Error("Request failed with errors")
		} else {
			status := c.Writer.Status()
			if status >= 500 {
				entry.Error("Request completed with server error")
			} else if status >= 400 {
				entry.Warn("Request completed with client error")
			} else {
				entry.Info("Request completed successfully")
			}
		}
	}
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
