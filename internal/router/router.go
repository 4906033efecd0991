package router

import (
	"time"

	"github.com/fasthttp/router"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/storecore/api/handler"
	"github.com/fastygo/storecore/internal/middleware"
)

type Handlers struct {
	Catalog        *apiHandler.CatalogHandler
	Recommendation *apiHandler.RecommendationHandler
	Purchase       *apiHandler.PurchaseHandler
	Account        *apiHandler.AccountHandler
	Health         *apiHandler.HealthHandler
}

type Options struct {
	// ServiceAuth wraps write routes. Nil leaves them open.
	ServiceAuth   func(fasthttp.RequestHandler) fasthttp.RequestHandler
	EnableMetrics bool
	SlowRequest   time.Duration
	Logger        *zap.Logger
}

func New(handlers Handlers, opts Options) *router.Router {
	r := router.New()
	auth := opts.ServiceAuth
	if auth == nil {
		auth = func(next fasthttp.RequestHandler) fasthttp.RequestHandler { return next }
	}
	route := func(pattern string, h fasthttp.RequestHandler) fasthttp.RequestHandler {
		return middleware.Observe(pattern, opts.SlowRequest, opts.Logger)(h)
	}

	r.GET("/health", handlers.Health.Check)
	if opts.EnableMetrics {
		r.GET("/metrics", fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler()))
	}

	// Catalog
	r.GET("/api/product-ids", route("/api/product-ids", handlers.Catalog.ProductIDs))
	r.GET("/api/products", route("/api/products", handlers.Catalog.Products))
	r.GET("/search", route("/search", handlers.Catalog.SearchQuery))
	r.POST("/search", route("/search", handlers.Catalog.SearchBody))

	// Engine-backed rankings
	rec := handlers.Recommendation
	r.GET("/api/trending", route("/api/trending", rec.Trending))
	r.GET("/api/trending/{tag}", route("/api/trending/{tag}", rec.Trending))
	r.GET("/api/recommendations", route("/api/recommendations", rec.Recommendations))
	r.GET("/api/recommendations/{userId}", route("/api/recommendations/{userId}", rec.Recommendations))
	r.GET("/api/favorite-categories/{userId}", route("/api/favorite-categories/{userId}", rec.FavoriteCategories))
	r.GET("/api/bought-together", route("/api/bought-together", rec.BoughtTogether))

	// Writes
	r.POST("/api/purchase", route("/api/purchase", auth(handlers.Purchase.Record)))
	r.POST("/api/auth/signup", route("/api/auth/signup", auth(handlers.Account.Signup)))
	r.POST("/api/auth/verify", route("/api/auth/verify", auth(handlers.Account.Verify)))
	r.POST("/api/auth/provision", route("/api/auth/provision", auth(handlers.Account.Provision)))

	return r
}
