package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"bookrental-backend/internal/shared/middleware"
	"bookrental-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
	)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		setupAuthRoutes(v1, c)

		// everything below needs a staff token
		protected := v1.Group("", middleware.AuthMiddleware(c.JWTManager))
		setupBookRoutes(protected, c)
		setupReaderRoutes(protected, c)
		setupRentalRoutes(protected, c)
		setupStaffRoutes(protected, c)
	}

	return router
}

// ========================================
// AUTH ROUTES
// ========================================
func setupAuthRoutes(v1 *gin.RouterGroup, c *container.Container) {
	auth := v1.Group("/auth")
	{
		auth.POST("/login", c.StaffHandler.Login)
	}
}

// ========================================
// BOOK ROUTES
// ========================================
func setupBookRoutes(rg *gin.RouterGroup, c *container.Container) {
	books := rg.Group("/books")
	{
		books.GET("", c.BookHandler.ListBooks)
		books.GET("/:id", c.BookHandler.GetBook)

		// catalogue writes are admin only
		books.POST("", middleware.AdminMiddleware(), c.BookHandler.CreateBook)
		books.PATCH("/:id", middleware.AdminMiddleware(), c.BookHandler.UpdateBook)
		books.DELETE("/:id", middleware.AdminMiddleware(), c.BookHandler.DeleteBook)
	}
}

// ========================================
// READER ROUTES
// ========================================
func setupReaderRoutes(rg *gin.RouterGroup, c *container.Container) {
	readers := rg.Group("/readers")
	{
		readers.POST("", c.ReaderHandler.CreateReader)
		readers.GET("", c.ReaderHandler.ListReaders)
		readers.GET("/:id", c.ReaderHandler.GetReader)
		readers.PATCH("/:id", c.ReaderHandler.UpdateReader)
		readers.DELETE("/:id", c.ReaderHandler.DeleteReader)
		readers.GET("/:id/rentals", c.RentalHandler.ListReaderRentals)
	}
}

// ========================================
// RENTAL ROUTES
// ========================================
func setupRentalRoutes(rg *gin.RouterGroup, c *container.Container) {
	rentals := rg.Group("/rentals")
	{
		rentals.POST("", c.RentalHandler.CreateRental)
		rentals.GET("", c.RentalHandler.ListRentals)
		rentals.GET("/active", c.RentalHandler.ListActive)
		rentals.GET("/overdue", c.RentalHandler.ListOverdue)
		rentals.GET("/statistics", c.RentalHandler.Statistics)
		rentals.GET("/export", c.RentalHandler.ExportRentals)
		rentals.GET("/:id", c.RentalHandler.GetRental)
		rentals.POST("/:id/return", c.RentalHandler.ReturnRental)
	}
}

// ========================================
// STAFF ROUTES
// ========================================
func setupStaffRoutes(rg *gin.RouterGroup, c *container.Container) {
	staff := rg.Group("/staff", middleware.AdminMiddleware())
	{
		staff.POST("", c.StaffHandler.CreateStaff)
	}
}

func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		services := appCtx.HealthCheck(ctx)

		// Redis is optional, only the database degrades the service
		status, code := "ok", http.StatusOK
		if db := services["database"]; db != "ok" && db != "disabled" {
			status, code = "degraded", http.StatusServiceUnavailable
		}

		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   getEnv("APP_VERSION", "1.0.0"),
			"services":  services,
		})
	}
}
