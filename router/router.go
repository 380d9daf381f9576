package router

import (
	"net/http"

	"storefront/config"
	"storefront/controllers"
	"storefront/middleware"
	"storefront/services"
	"storefront/tracing"

	"github.com/gin-gonic/gin"
)

// Initialize wires middlewares and the storefront API routes.
func Initialize(r *gin.Engine, cfg config.Configuration, svc *services.Services, tracer tracing.Tracer) {
	r.HandleMethodNotAllowed = true

	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(Logger(svc.Log.Named("http")))
	r.Use(tracing.Middleware(tracer))
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middleware.NoStore())
	r.Use(services.SetToContext(svc))

	r.NoRoute(func(c *gin.Context) {
		controllers.RespondError(c, "Not found", http.StatusNotFound)
	})
	r.NoMethod(func(c *gin.Context) {
		controllers.RespondError(c, "Method not allowed", http.StatusMethodNotAllowed)
	})

	api := r.Group("/api")
	api.GET("/ping", controllers.Ping)

	store := api.Group("/store")
	store.GET("/products", controllers.ListProducts)
	store.GET("/products/:id", controllers.GetProduct)
	store.GET("/products/:id/variations", controllers.ListVariations)
	store.GET("/categories", controllers.ListCategories)
	store.POST("/checkout", controllers.Checkout)
	store.POST("/auth", controllers.AuthAction)
	store.POST("/auth/:action", controllers.AuthAction)

	// Paths used by older storefront builds
	api.GET("/products", controllers.LegacyProducts)
	api.GET("/products/:id", controllers.GetProduct)
	api.GET("/products/:id/variations", controllers.ListVariations)
	api.GET("/categories", controllers.ListCategories)
}
