package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sirahabazaar/dispatch-system/internal/api/handler"
	"github.com/sirahabazaar/dispatch-system/internal/api/middleware"
	"github.com/sirahabazaar/dispatch-system/internal/core/ports"
	"github.com/sirahabazaar/dispatch-system/internal/infrastructure/http/handlers"
)

// RouterDeps carries the wired services the HTTP layer exposes.
type RouterDeps struct {
	DB        *mongo.Database
	Redis     *redis.Client
	Dispatch  ports.DispatchService
	Quotes    ports.QuoteService
	Stores    ports.StoreDirectory
	Auth      ports.AuthService
	JWTSecret string
	Logger    zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps RouterDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("dispatch"))

	// --- Handlers ---
	dispatchHandler := handler.NewDispatchHandler(deps.Dispatch)
	quoteHandler := handler.NewQuoteHandler(deps.Quotes, deps.Stores)
	authHandler := handler.NewAuthHandler(deps.Auth)
	authMiddleware := middleware.Auth(deps.JWTSecret)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Quote routes (no auth; fees and discovery are customer-facing) ---
	quotes := e.Group("/v1/quotes")
	quotes.GET("/fee", quoteHandler.Fee)
	quotes.GET("/orders/:order_id/fee", quoteHandler.OrderFee)
	quotes.GET("/nearby", quoteHandler.Nearby)

	// --- Dispatch routes ---
	dispatch := e.Group("/v1/dispatch", authMiddleware)
	dispatch.POST("/orders/:order_id/notify", dispatchHandler.Notify, middleware.RBAC("store", "admin"))
	dispatch.POST("/rounds/:round_id/claim", dispatchHandler.Claim, middleware.RBAC("partner"))
	dispatch.POST("/rounds/:round_id/cancel", dispatchHandler.Cancel, middleware.RBAC("store", "admin"))
	dispatch.GET("/rounds/:round_id/attempts", dispatchHandler.Attempts, middleware.RBAC("store", "admin"))
	dispatch.POST("/stores/:store_id/broadcast-ready", dispatchHandler.BroadcastReady, middleware.RBAC("store", "admin"))
	dispatch.POST("/stores/:store_id/broadcast-processing", dispatchHandler.BroadcastProcessing, middleware.RBAC("store", "admin"))

	// --- Observability and docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(deps.DB, deps.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	return e
}
