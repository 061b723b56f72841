package routes

import (
	"onlinebank-api/internal/adapters/http/handlers"
	"onlinebank-api/internal/adapters/http/middleware"
	"onlinebank-api/internal/adapters/persistence/repositories"
	"onlinebank-api/internal/config"
	"onlinebank-api/internal/core/services"
	"onlinebank-api/internal/pkg/metrics"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(
	app *fiber.App,
	db *gorm.DB,
	cfg *config.Config,
	collector *metrics.Collector,
	quoteCache repositories.QuoteCache,
) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	customerRepo := repositories.NewCustomerRepository(db)
	loanRepo := repositories.NewLoanRepository(db)
	paymentRepo := repositories.NewLoanPaymentRepository(db)
	cardRepo := repositories.NewCreditCardRepository(db)
	activityRepo := repositories.NewCardActivityRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg)
	customerService := services.NewCustomerService(customerRepo)
	validationService := services.NewLoanValidationService(customerRepo)
	loanService := services.NewLoanService(
		loanRepo, paymentRepo, validationService, quoteCache, collector, cfg.Lending,
	)
	cardService := services.NewCreditCardService(cardRepo, activityRepo, customerRepo)
	dashboardService := services.NewDashboardService(db)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	customerHandler := handlers.NewCustomerHandler(customerService, loanService)
	loanHandler := handlers.NewLoanHandler(loanService)
	cardHandler := handlers.NewCreditCardHandler(cardService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Prometheus metrics
	if collector != nil {
		app.Get("/metrics", adaptor.HTTPHandler(collector.Handler()))
	}

	// API v1 group
	apiV1 := app.Group("/api/v1")

	// Auth routes (stricter rate limit on credential endpoints)
	authRoutes := apiV1.Group("/auth")
	authRoutes.Post("/login", middleware.AuthRateLimiter(), authHandler.Login)
	authRoutes.Post("/refresh", middleware.AuthRateLimiter(), authHandler.Refresh)
	authRoutes.Post("/logout", authHandler.Logout)
	authRoutes.Post("/register",
		middleware.AuthMiddleware(cfg), middleware.AdminOnly(), authHandler.Register)

	// Public loan quote; calculation has no side effects
	apiV1.Get("/loans/calculate", loanHandler.Calculate)

	// Loan routes (Officer/Admin)
	loanRoutes := apiV1.Group("/loans")
	loanRoutes.Use(middleware.AuthMiddleware(cfg))
	loanRoutes.Use(middleware.OfficerOrAdmin())
	setupLoanRoutes(loanRoutes, loanHandler)

	// Customer routes (Officer/Admin)
	customerRoutes := apiV1.Group("/customers")
	customerRoutes.Use(middleware.AuthMiddleware(cfg))
	customerRoutes.Use(middleware.OfficerOrAdmin())
	setupCustomerRoutes(customerRoutes, customerHandler)

	// Credit card routes (Officer/Admin)
	cardRoutes := apiV1.Group("/credit-cards")
	cardRoutes.Use(middleware.AuthMiddleware(cfg))
	cardRoutes.Use(middleware.OfficerOrAdmin())
	setupCreditCardRoutes(cardRoutes, cardHandler)

	// Dashboard routes (authenticated)
	dashboardRoutes := apiV1.Group("/dashboard")
	dashboardRoutes.Use(middleware.AuthMiddleware(cfg))
	dashboardRoutes.Get("/", dashboardHandler.Overview)
}

// setupLoanRoutes configures loan engine routes
func setupLoanRoutes(router fiber.Router, handler *handlers.LoanHandler) {
	router.Post("/", handler.Apply)
	router.Get("/:id", handler.Get)
	router.Get("/:id/payments", handler.Payments)
	router.Patch("/:id/pay-installment", handler.PayInstallment)
	router.Patch("/:id/pay-off", handler.PayOff)
	router.Patch("/:id/late-fee", handler.LateFee)
}

// setupCustomerRoutes configures customer routes
func setupCustomerRoutes(router fiber.Router, handler *handlers.CustomerHandler) {
	router.Get("/", handler.List)
	router.Post("/", handler.Create)
	router.Get("/:id", handler.Get)
	router.Get("/:id/loans", handler.Loans)
}

// setupCreditCardRoutes configures credit card routes
func setupCreditCardRoutes(router fiber.Router, handler *handlers.CreditCardHandler) {
	// Static paths before the :id wildcard
	router.Get("/find-by-amount-interval", handler.ActivitiesByAmount)
	router.Get("/activity-analysis", handler.ActivityAnalysis)

	router.Get("/", handler.List)
	router.Post("/", handler.Issue)
	router.Get("/:id", handler.Get)
	router.Patch("/cancel/:id", handler.Cancel)
	router.Post("/:id/spend", handler.Spend)
	router.Get("/:id/activities", handler.Activities)
}
