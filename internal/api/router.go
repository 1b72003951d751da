package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/b2bplatform/b2b-backend/internal/api/handler"
	"github.com/b2bplatform/b2b-backend/internal/api/middleware"
	"github.com/b2bplatform/b2b-backend/internal/core/ports"
	"github.com/b2bplatform/b2b-backend/internal/security/token"
)

// Claims accepted for catalog image mutations.
const (
	ClaimAdmin        = "admin"
	ClaimCatalogWrite = "catalog.write"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(
	db *mongo.Database,
	rdb *redis.Client,
	authService ports.AuthService,
	imageService ports.ProductImageService,
	issuer *token.Issuer,
	log zerolog.Logger,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("b2b"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(authService)
	imageHandler := handler.NewProductImageHandler(imageService)
	authRequired := middleware.Auth(issuer)
	catalogWrite := middleware.RequireClaim(ClaimAdmin, ClaimCatalogWrite)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.UserLogin)
	e.POST("/auth/customer-login", authHandler.CustomerLogin)

	// --- Product image routes (bearer token required) ---
	images := e.Group("/product-images", authRequired)
	images.GET("", imageHandler.List)
	images.GET("/:id", imageHandler.GetByID)
	images.POST("", imageHandler.Add, catalogWrite)
	images.PUT("/:id", imageHandler.Update, catalogWrite)
	images.DELETE("/:id", imageHandler.Delete, catalogWrite)
	images.POST("/:id/primary", imageHandler.SetPrimary, catalogWrite)

	e.GET("/products/:productId/images", imageHandler.ListByProduct, authRequired)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
