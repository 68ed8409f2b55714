package handler

import (
	"token-ledger/internal/adapter/http/middleware"
	redisStore "token-ledger/internal/adapter/storage/redis"
	"token-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	LedgerSvc      ports.LedgerService
	BridgeSvc      ports.BridgeService
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

	// Health check verifies the wired backends
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

	ledgerHandler := NewLedgerHandler(deps.LedgerSvc)
	bridgeHandler := NewBridgeHandler(deps.BridgeSvc)

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Public routes (deposit onboarding and reads) ---
	v1.GET("/address", rl("queries"), bridgeHandler.GetAddress)
	v1.GET("/deposit-account", rl("queries"), bridgeHandler.GetDepositAccount)
	v1.GET("/accounts/:owner/balance", rl("queries"), ledgerHandler.GetBalance)
	v1.GET("/blocks/:index", rl("queries"), ledgerHandler.GetBlock)
	v1.GET("/ledger/stats", rl("queries"), ledgerHandler.GetStats)

	// Deposit scans are safe to expose without auth: they only mint what
	// the external network confirms.
	v1.POST("/balances/update", rl("balance_updates"), bridgeHandler.UpdateBalance)

	// --- JWT-authenticated routes (value movement) ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)

	v1.POST("/transfers", jwtAuth, rl("transfers"), ledgerHandler.Transfer)
	v1.POST("/retrievals", jwtAuth, rl("retrievals"), bridgeHandler.Retrieve)

	return r
}
