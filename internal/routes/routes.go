package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"products-api/internal/config"
	"products-api/internal/handlers"
	"products-api/internal/middleware"
	"products-api/internal/repository"
	"products-api/internal/stats"
	"products-api/internal/validation"
)

// NewRouter construye el engine con el middleware global y todas las rutas.
// ctx controla la vida de las tareas de fondo del middleware.
func NewRouter(ctx context.Context, cfg *config.Config, store repository.ProductStore, log *logrus.Logger) *gin.Engine {
	validation.SetupGin()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.CORS(cfg.HTTP.CORSOrigins))
	router.Use(middleware.RateLimit(ctx, cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst))

	RegisterRoutes(router, cfg, store, log)
	return router
}

func RegisterRoutes(router *gin.Engine, cfg *config.Config, store repository.ProductStore, log *logrus.Logger) {
	reporter := stats.NewReporter(store, log)
	h := handlers.NewProductHandler(store, reporter, log, handlers.Options{
		SearchMode: cfg.Store.SearchMode,
		Debug:      cfg.IsDevelopment(),
	})
	health := handlers.NewHealthHandler(store, cfg.Store.Driver, log)

	router.GET("/health", health.Health)

	api := router.Group("/api")
	{
		products := api.Group("/products")
		products.GET("", h.ListProducts)
		products.POST("", h.CreateProduct)
		products.GET("/search/advanced", h.AdvancedSearch)
		products.GET("/categories", h.GetCategories)

		products.GET("/stats", h.GetStats)
		products.GET("/stats/categories", h.GetCategoryStats)
		products.GET("/stats/brands", h.GetBrandStats)
		products.GET("/stats/prices", h.GetPriceStats)
		products.GET("/stats/ratings", h.GetRatingStats)

		products.GET("/:id", h.GetProduct)
		products.PUT("/:id", h.UpdateProduct)
		products.PATCH("/:id", h.UpdateProduct)
		products.DELETE("/:id", h.DeleteProduct)
	}
}
