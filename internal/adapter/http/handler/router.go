package handler

import (
	"travel-wallet-backend/internal/adapter/http/middleware"
	redisStore "travel-wallet-backend/internal/adapter/storage/redis"
	"travel-wallet-backend/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	PurchaseSvc    ports.PurchaseService
	WalletSvc      ports.WalletService
	TripSvc        ports.TripService
	ExpenseSvc     ports.ExpenseService
	RateSvc        ports.RateService
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Swagger documentation
	swagger := r.Group("/swagger")
	{
		swagger.GET("", SwaggerUI)
		swagger.GET("/spec", SwaggerSpec)
	}

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes, all JWT-identified
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	v1 := r.Group("/api/v1", jwtAuth)

	tripHandler := NewTripHandler(deps.TripSvc)
	trips := v1.Group("/trips")
	{
		trips.POST("", rl("trips"), tripHandler.Create)
		trips.GET("/:id", rl("trips"), tripHandler.Get)
		trips.PATCH("/:id", rl("trips"), tripHandler.Update)
		trips.DELETE("/:id", rl("trips"), tripHandler.Delete)
	}

	walletHandler := NewWalletHandler(deps.WalletSvc)
	wallets := v1.Group("/wallets")
	{
		wallets.GET("", rl("wallets"), walletHandler.List)
		wallets.GET("/summary", rl("wallets"), walletHandler.Summary)
		wallets.POST("/scan-result", rl("wallets_scan"), walletHandler.ScanResult)
		wallets.PATCH("/:id", rl("wallets"), walletHandler.Credit)
		wallets.POST("/deduct", rl("wallets"), walletHandler.Deduct)
	}

	paymentHandler := NewPaymentHandler(deps.PurchaseSvc)
	guide := v1.Group("/payment-guide")
	{
		guide.POST("", rl("payment_guide"), paymentHandler.Quote)
		guide.POST("/commit", rl("payment_guide_commit"), paymentHandler.Commit)
	}

	expenseHandler := NewExpenseHandler(deps.ExpenseSvc)
	expenses := v1.Group("/expenses")
	{
		expenses.POST("", rl("expenses"), expenseHandler.Create)
		expenses.POST("/scan-result", rl("expenses"), expenseHandler.ScanResult)
		expenses.GET("", rl("expenses"), expenseHandler.ListByDate)
		expenses.GET("/trip/:trip_id", rl("expenses"), expenseHandler.ListByTrip)
	}

	rateHandler := NewRateHandler(deps.RateSvc)
	v1.GET("/rates", rl("rates"), rateHandler.List)

	return r
}

// currentUserID extracts the authenticated user ID set by the JWT middleware.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(middleware.CtxUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
