package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"onlinebank-api/internal/adapters/http/middleware"
	"onlinebank-api/internal/adapters/http/routes"
	"onlinebank-api/internal/adapters/persistence/models"
	"onlinebank-api/internal/adapters/persistence/repositories"
	"onlinebank-api/internal/config"
	"onlinebank-api/internal/core/services"
	"onlinebank-api/internal/pkg/metrics"

	"github.com/gofiber/fiber/v2"

	_ "onlinebank-api/docs" // Swagger docs
)

// @title Online Bank Back-Office API
// @version 1.0
// @description Back-office REST API for consumer loans and credit cards.
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@onlinebank.example

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:3000
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase()

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	// Seed the dev admin account and demo customers
	if err := config.Seed(db, cfg); err != nil {
		log.Printf("⚠️ Warning: Failed to seed data: %v", err)
	}

	// Prometheus metrics
	collector := metrics.NewCollector()

	// Optional Redis quote cache
	var quoteCache repositories.QuoteCache
	if cfg.Redis.Addr != "" {
		quoteCache = repositories.NewRedisQuoteCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		log.Printf("✅ Quote cache enabled [%s]", cfg.Redis.Addr)
	}

	// Start the daily overdue loan scan (06:00 daily)
	cronService := services.NewCronService(repositories.NewLoanRepository(db), collector)
	cronService.Start()
	defer cronService.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Online Bank Back-Office API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg, collector)

	// Setup routes (pass db and cfg for dependency injection)
	routes.Setup(app, db, cfg, collector, quoteCache)

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
