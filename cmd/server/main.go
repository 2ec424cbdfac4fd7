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
	"github.com/suitenest/hotel-backend/internal/config"
	"github.com/suitenest/hotel-backend/internal/database"
	"github.com/suitenest/hotel-backend/internal/handlers"
	"github.com/suitenest/hotel-backend/internal/middleware"
	"github.com/suitenest/hotel-backend/internal/services"
	"github.com/suitenest/hotel-backend/pkg/jwt"
	"github.com/suitenest/hotel-backend/pkg/mailer"
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

	logger.Info("Starting SuiteNest Hotel Backend")
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

	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize repositories
	roomRepository := database.NewRoomRepository(db)
	bookingRepository := database.NewBookingRepository(db)
	contactRepository := database.NewContactRepository(db)
	paymentEventRepository := database.NewPaymentEventRepository(db)

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(cfg.Admin.JWTSecret, cfg.Admin.TokenExpiry)

	paystackService := services.NewPaystackService(&cfg.Payment, logger)

	var mail mailer.Mailer
	if cfg.Mail.Mode == "dev" {
		mail = mailer.NewConsoleMailer()
		logger.Info("Mailer running in dev mode, emails are logged only")
	} else {
		mail = mailer.NewAPIMailer(mailer.APIConfig{
			APIURL:    cfg.Mail.APIURL,
			APIKey:    cfg.Mail.APIKey,
			FromEmail: cfg.Mail.FromEmail,
		})
	}

	bookingService := services.NewBookingService(
		bookingRepository,
		roomRepository,
		paymentEventRepository,
		paystackService,
		logger,
	)
	availabilityService := services.NewAvailabilityService(roomRepository, logger)
	rateLimitService := services.NewRateLimitService(db, cfg.RateLimit)
	contactService := services.NewContactService(
		contactRepository,
		rateLimitService,
		mail,
		cfg.Mail.ToEmail,
		logger,
	)
	reportService := services.NewReportService(bookingRepository)

	// Initialize and start cron service
	cronService := services.NewCronService(availabilityService, rateLimitService, logger)
	if err := cronService.Start(); err != nil {
		logger.Fatalf("Failed to start cron service: %v", err)
	}
	logger.Info("Cron service started, availability reset scheduled hourly")

	// Initialize handlers
	roomHandler := handlers.NewRoomHandler(roomRepository, logger)
	bookingHandler := handlers.NewBookingHandler(bookingService, logger)
	contactHandler := handlers.NewContactHandler(contactService, logger)
	paymentHandler := handlers.NewPaymentHandler(bookingService, paystackService, logger)
	adminHandler := handlers.NewAdminHandler(
		cfg.Admin,
		jwtService,
		bookingService,
		reportService,
		cronService,
		logger,
	)

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

	// Legacy-path endpoints the storefront calls directly
	router.GET("/api/check-booking", bookingHandler.CheckBooking)
	router.POST("/api/contact", contactHandler.SubmitContact)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/rooms", roomHandler.ListRooms)
		v1.GET("/rooms/:id", roomHandler.GetRoom)

		v1.POST("/bookings", bookingHandler.CreateBooking)
		v1.GET("/my-bookings", bookingHandler.GetMyBookings)

		v1.POST("/payments/webhook", paymentHandler.HandleWebhook)
		v1.GET("/payments/verify/:reference", paymentHandler.VerifyPayment)

		v1.POST("/admin/login", adminHandler.Login)

		admin := v1.Group("/admin")
		admin.Use(middleware.AuthMiddleware(jwtService))
		{
			admin.GET("/bookings", adminHandler.ListBookings)
			admin.POST("/bookings/:reference/verify-payment", adminHandler.VerifyBookingPayment)
			admin.GET("/bookings/:reference/payment-events", adminHandler.GetBookingPaymentEvents)
			admin.POST("/jobs/reset-availability", adminHandler.TriggerAvailabilityReset)
			admin.GET("/jobs/status", adminHandler.GetJobStatus)
			admin.GET("/reports/bookings.csv", adminHandler.DownloadBookingsCSV)
			admin.GET("/reports/bookings.xlsx", adminHandler.DownloadBookingsExcel)
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

	logger.Info("Stopping cron service...")
	cronService.Stop()

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
		dbStatus := "healthy"
		if err := db.Ping(); err != nil {
			dbStatus = "unhealthy"
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": dbStatus,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  dbStatus,
			"version":   version,
			"timestamp": time.Now().UTC(),
		})
	}
}
