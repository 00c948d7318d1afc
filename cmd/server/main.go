package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redefine/facility/api/internal/config"
	"github.com/redefine/facility/api/internal/database"
	"github.com/redefine/facility/api/internal/erp"
	"github.com/redefine/facility/api/internal/handlers"
	"github.com/redefine/facility/api/internal/logger"
	"github.com/redefine/facility/api/internal/middleware"
	"github.com/redefine/facility/api/internal/places"
	"github.com/redefine/facility/api/internal/report"
	"github.com/redefine/facility/api/internal/repository"
	"github.com/redefine/facility/api/internal/services"
	"github.com/redefine/facility/api/internal/vendors"
)

const (
	shutdownTimeout = 30 * time.Second
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.Server.Env)
	log.Info("Starting facility portal API", map[string]interface{}{
		"version":     handlers.APIVersion,
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
	})

	// Create database connection pool
	ctx := context.Background()
	db, err := database.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", err, map[string]interface{}{
			"host": cfg.Database.Host,
			"port": cfg.Database.Port,
			"name": cfg.Database.Name,
		})
	}
	defer db.Close()

	log.Info("Database connection established", map[string]interface{}{
		"host":     cfg.Database.Host,
		"port":     cfg.Database.Port,
		"database": cfg.Database.Name,
		"pool_min": cfg.Database.PoolMin,
		"pool_max": cfg.Database.PoolMax,
	})

	// Setup Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware in order: RequestID -> Logger -> Recovery -> CORS
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS.Origins))

	// Register health check routes
	healthHandler := handlers.NewHealthHandler(db, cfg.Server.Env)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/api/v1/info", healthHandler.Info)

	// Initialize the ticket store and external collaborators
	ticketRepo := repository.NewTicketRepository(db)
	directory := erp.NewClient(cfg.Odoo, log)
	placesClient := places.NewClient(cfg.Places, log)
	emailScraper := places.NewEmailScraper(log)
	matcher := vendors.NewMatcher(directory, placesClient, emailScraper, log)
	renderer := report.NewRenderer(cfg.Report.VATRate, report.NewLineClassifier())

	// Initialize service layer
	buildingService := services.NewBuildingService(ticketRepo, directory, log)
	vendorService := services.NewVendorService(ticketRepo, directory, matcher, log)
	reportService := services.NewReportService(ticketRepo, renderer, log)
	mailService := services.NewMailService(ticketRepo, directory,
		cfg.Report.VATRate, cfg.Report.InvoiceMailbox, cfg.Report.TeamName, log)

	// Initialize handlers
	buildingHandler := handlers.NewBuildingHandler(buildingService)
	vendorHandler := handlers.NewVendorHandler(vendorService)
	reportHandler := handlers.NewReportHandler(reportService)
	mailHandler := handlers.NewMailHandler(mailService)

	// Register API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/tenancies", buildingHandler.ListTenancies)
		v1.POST("/vendors/search", vendorHandler.Search)

		tickets := v1.Group("/tickets/:id")
		{
			tickets.GET("/building", buildingHandler.GetBuilding)
			tickets.GET("/vendors/recommended", vendorHandler.Recommended)
			tickets.PUT("/vendor", vendorHandler.Choose)
			tickets.POST("/vendor/import", vendorHandler.Import)
			tickets.POST("/vendor/reset", vendorHandler.Reset)
			tickets.PUT("/cost-table", reportHandler.ReplaceCostTable)
			tickets.GET("/report.pdf", reportHandler.Render)
			tickets.GET("/mail/inquiry", mailHandler.Inquiry)
			tickets.GET("/mail/offer", mailHandler.Offer)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server listening", map[string]interface{}{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	// Wait for interrupt signal (SIGINT or SIGTERM)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}

	log.Info("Server exited", nil)
}
