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

	"github.com/DanieleMarcon/lasoluzione-backend/internal/config"
	"github.com/DanieleMarcon/lasoluzione-backend/internal/database"
	"github.com/DanieleMarcon/lasoluzione-backend/internal/handlers"
	"github.com/DanieleMarcon/lasoluzione-backend/internal/middleware"
	"github.com/DanieleMarcon/lasoluzione-backend/internal/services"
	"github.com/DanieleMarcon/lasoluzione-backend/pkg/jwt"
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

	logger.Info("Starting La Soluzione backend")
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

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)
	emailService := services.NewEmailService(&cfg.SMTP, cfg.Server.BaseURL, logger)
	paymentService := services.NewPaymentService(&cfg.Payment, logger)
	if !paymentService.IsConfigured() {
		logger.Warn("Payment gateway not configured; paid checkouts will fail")
	}

	settingsService := services.NewSettingsService(db, logger)
	verificationService := services.NewVerificationService(db, time.Duration(cfg.Booking.VerificationTTLHours)*time.Hour, logger)
	rateLimitService := services.NewRateLimitService(db, cfg.RateLimit)
	bookingService := services.NewBookingService(db, settingsService, verificationService, paymentService, emailService, logger)
	finalizeService := services.NewFinalizeService(db, emailService, cfg.Admin.NotifyEmail, logger)
	orderService := services.NewOrderService(db, paymentService, finalizeService, logger)
	cartService := services.NewCartService(db)
	authService := services.NewAuthService(db, jwtService, emailService, cfg.Admin.AllowedEmails, cfg.Booking.MagicLinkTTL, logger)
	logger.Info("Services initialized")

	// Initialize handlers
	bookingHandler := handlers.NewBookingHandler(bookingService, rateLimitService, cfg.Admin.NotifyEmail, logger)
	cartHandler := handlers.NewCartHandler(cartService, logger)
	paymentHandler := handlers.NewPaymentHandler(orderService, paymentService, logger)
	catalogHandler := handlers.NewCatalogHandler(db, logger)
	authHandler := handlers.NewAuthHandler(authService, rateLimitService, logger)
	adminBookingHandler := handlers.NewAdminBookingHandler(bookingService, cfg.Admin.BookingCSVLimit, logger)
	adminCatalogHandler := handlers.NewAdminCatalogHandler(db, settingsService, logger)
	adminContactHandler := handlers.NewAdminContactHandler(db, cfg.Admin.BookingCSVLimit, logger)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	// CORS configuration
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db))

	api := router.Group("/api")
	{
		// Public booking flow
		api.POST("/bookings", bookingHandler.Create)
		api.GET("/bookings/verify", bookingHandler.Verify)

		// Public catalog reads
		api.GET("/products", catalogHandler.Products)
		api.GET("/events", catalogHandler.Events)
		api.GET("/menu", catalogHandler.Menu)
		api.GET("/sections", catalogHandler.Sections)

		// Cart
		api.POST("/cart", cartHandler.Create)
		api.GET("/cart/:token", cartHandler.Get)
		api.POST("/cart/:token/items", cartHandler.AddItem)
		api.PATCH("/cart/:token/items/:itemID", cartHandler.UpdateItem)
		api.DELETE("/cart/:token/items/:itemID", cartHandler.DeleteItem)

		// Checkout and payments
		api.POST("/checkout", paymentHandler.Checkout)
		api.POST("/payments/webhook", paymentHandler.Webhook)
		api.GET("/payments/:ref/status", paymentHandler.Status)

		// Back-office sign-in
		auth := api.Group("/auth")
		{
			auth.POST("/magic-link", authHandler.MagicLink)
			auth.POST("/callback", authHandler.Callback)
		}

		// Back-office (JWT + allow-list)
		admin := api.Group("/admin")
		admin.Use(middleware.AdminAuth(jwtService, cfg.Admin.AllowedEmails))
		{
			admin.GET("/bookings", adminBookingHandler.List)
			admin.GET("/bookings/export", adminBookingHandler.ExportCSV)
			admin.GET("/bookings/:id", adminBookingHandler.Get)
			admin.PATCH("/bookings/:id/status", adminBookingHandler.UpdateStatus)
			admin.DELETE("/bookings/:id", adminBookingHandler.Delete)

			admin.GET("/products", adminCatalogHandler.ListProducts)
			admin.POST("/products", adminCatalogHandler.CreateProduct)
			admin.PUT("/products/:id", adminCatalogHandler.UpdateProduct)
			admin.DELETE("/products/:id", adminCatalogHandler.DeleteProduct)

			admin.GET("/events", adminCatalogHandler.ListEvents)
			admin.POST("/events", adminCatalogHandler.CreateEvent)
			admin.PUT("/events/:id", adminCatalogHandler.UpdateEvent)
			admin.DELETE("/events/:id", adminCatalogHandler.DeleteEvent)

			admin.GET("/menu", adminCatalogHandler.ListDishes)
			admin.POST("/menu", adminCatalogHandler.CreateDish)
			admin.PUT("/menu/:id", adminCatalogHandler.UpdateDish)
			admin.DELETE("/menu/:id", adminCatalogHandler.DeleteDish)

			admin.GET("/sections", adminCatalogHandler.ListSections)
			admin.POST("/sections", adminCatalogHandler.CreateSection)
			admin.PUT("/sections/:id", adminCatalogHandler.UpdateSection)
			admin.DELETE("/sections/:id", adminCatalogHandler.DeleteSection)

			admin.GET("/settings", adminCatalogHandler.GetSettings)
			admin.PUT("/settings", adminCatalogHandler.UpdateSettings)

			admin.GET("/contacts", adminContactHandler.List)
			admin.GET("/contacts/export", adminContactHandler.ExportCSV)
			admin.POST("/contacts/merge", adminContactHandler.Merge)
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
		if email, ok := middleware.GetAdminEmail(c); ok {
			fields["admin_email"] = email
		}

		entry := logger.WithFields(fields)
		status := c.Writer.Status()
		switch {
		case status >= 500:
			entry.Error("Request completed with server error")
		case status >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed successfully")
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
