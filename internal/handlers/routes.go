package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"fireforce-invoice-api/internal/middleware"
	"fireforce-invoice-api/internal/models"
	"fireforce-invoice-api/internal/services"
)

// RouterConfig holds configuration for setting up routes
type RouterConfig struct {
	DataService    services.DataService
	AuthService    services.AuthService
	BackupService  services.BackupService
	RestoreService services.RestoreService
	Scheduler      services.BackupScheduler
	TokenService   *middleware.TokenService
	OfficeInfo     models.OfficeInfo
}

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, config *RouterConfig) {
	invoiceHandler := NewInvoiceHandler(config.DataService)
	customerHandler := NewCustomerHandler(config.DataService)
	userHandler := NewUserHandler(config.DataService)
	settingsHandler := NewSettingsHandler(config.DataService, config.OfficeInfo)
	backupHandler := NewBackupHandler(config.BackupService, config.RestoreService, config.Scheduler, config.OfficeInfo)
	authHandler := NewAuthHandler(config.AuthService)

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		status := "healthy"
		if err := config.DataService.ActiveStore().Ping(c.Request.Context()); err != nil {
			status = "degraded"
		}
		c.JSON(200, gin.H{
			"status":  status,
			"service": "fireforce-invoice-api",
			"storage": config.DataService.Mode(),
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Authentication routes (no auth required)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)

			authProtected := auth.Group("")
			authProtected.Use(middleware.Authentication(config.TokenService))
			{
				authProtected.GET("/me", authHandler.GetCurrentUser)
			}
		}

		// Protected API routes
		api := v1.Group("")
		api.Use(middleware.Authentication(config.TokenService))
		{
			// Invoice routes
			invoices := api.Group("/invoices")
			{
				invoices.POST("", invoiceHandler.CreateInvoice)
				invoices.GET("", invoiceHandler.ListInvoices)
				invoices.GET("/:id", invoiceHandler.GetInvoice)
				invoices.PUT("/:id", invoiceHandler.UpdateInvoice)
				invoices.DELETE("/:id", invoiceHandler.DeleteInvoice)
			}

			// Customer routes
			customers := api.Group("/customers")
			{
				customers.POST("", customerHandler.CreateCustomer)
				customers.GET("", customerHandler.ListCustomers)
				customers.GET("/search", customerHandler.SearchCustomers)
				customers.GET("/:id", customerHandler.GetCustomer)
				customers.PUT("/:id", customerHandler.UpdateCustomer)
				customers.DELETE("/:id", customerHandler.DeleteCustomer)
			}

			// User routes, restricted to the office and admin accounts
			users := api.Group("/users")
			users.Use(middleware.Authorization(middleware.RoleOffice, middleware.RoleAdmin))
			{
				users.POST("", userHandler.CreateUser)
				users.GET("", userHandler.ListUsers)
				users.GET("/:id", userHandler.GetUser)
				users.PUT("/:id", userHandler.UpdateUser)
				users.DELETE("/:id", userHandler.DeleteUser)
			}

			// Settings and office info
			api.GET("/settings", settingsHandler.GetSettings)
			api.PUT("/settings", middleware.Authorization(middleware.RoleOffice, middleware.RoleAdmin), settingsHandler.UpdateSettings)
			api.GET("/office-info", settingsHandler.GetOfficeInfo)

			// Backup, validation, restore, and scheduling, restricted
			// to the office and admin accounts
			backup := api.Group("/backup")
			backup.Use(middleware.Authorization(middleware.RoleOffice, middleware.RoleAdmin))
			{
				backup.POST("/full", backupHandler.CreateFullBackup)
				backup.POST("/export/:kind", backupHandler.ExportEntity)
				backup.GET("/history", backupHandler.GetHistory)
				backup.GET("/stats", backupHandler.GetStats)
				backup.POST("/validate", backupHandler.ValidateBackup)
				backup.POST("/restore", backupHandler.RestoreBackup)
				backup.GET("/restore/status", backupHandler.GetRestoreStatus)
				backup.POST("/reminder/dismiss", backupHandler.DismissReminder)
				backup.PUT("/auto", backupHandler.SetAutoBackup)
			}
		}
	}
}

// SetupMiddleware configures global middleware
func SetupMiddleware(router *gin.Engine) {
	// Request ID and correlation ID
	router.Use(middleware.RequestID())
	router.Use(middleware.CorrelationID())

	// CORS
	router.Use(middleware.CORS())

	// Security headers
	router.Use(middleware.SecurityHeaders())

	// Request size limit (20MB, backup uploads included)
	router.Use(middleware.RequestSizeLimit(20 * 1024 * 1024))

	// Content type validation for POST/PUT requests
	router.Use(middleware.ContentTypeValidation("application/json", "multipart/form-data"))

	// Request validation
	router.Use(middleware.RequestValidation())

	// Rate limiting (100 requests per second, burst of 200)
	router.Use(middleware.RateLimiter(100, 200))

	// Structured logging
	router.Use(middleware.StructuredLogger())

	// Performance monitoring (log requests over 1 second)
	router.Use(middleware.PerformanceMonitor(time.Second))

	// Audit logging
	router.Use(middleware.AuditLogger())

	// Error tracking
	router.Use(middleware.ErrorTracker())

	// Enhanced error handling
	router.Use(middleware.EnhancedErrorHandler())
}
