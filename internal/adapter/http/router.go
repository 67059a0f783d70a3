package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/seiawanrizqi9-cyber/Kasir-BE/internal/adapter/http/middleware"
	"github.com/seiawanrizqi9-cyber/Kasir-BE/internal/entity"
)

type Handlers struct {
	Auth       *AuthHandler
	Sales      *SaleHandler
	Products   *ProductHandler
	Categories *CategoryHandler
	Stats      *StatsHandler
}

func NewRouter(h Handlers, authz *middleware.Authz, log *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.MetricsMiddleware(), middleware.Logging(log))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})
	// Prometheus endpoint (scraped by Prometheus)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/register", authz.RequireAuth(), authz.RequireRole(entity.RoleAdmin), h.Auth.Register)
		auth.GET("/me", authz.RequireAuth(), h.Auth.Me)
	}

	categories := api.Group("/categories", authz.RequireAuth())
	{
		categories.GET("", h.Categories.List)
		categories.GET("/:id", h.Categories.GetByID)
		categories.POST("", authz.RequireRole(entity.RoleAdmin), h.Categories.Create)
		categories.PUT("/:id", authz.RequireRole(entity.RoleAdmin), h.Categories.Update)
		categories.DELETE("/:id", authz.RequireRole(entity.RoleAdmin), h.Categories.Delete)
	}

	products := api.Group("/products", authz.RequireAuth())
	{
		products.GET("", h.Products.List)
		products.GET("/:id", h.Products.GetByID)
		products.POST("", authz.RequireRole(entity.RoleAdmin), h.Products.Create)
		products.PUT("/:id", authz.RequireRole(entity.RoleAdmin), h.Products.Update)
		products.DELETE("/:id", authz.RequireRole(entity.RoleAdmin), h.Products.Delete)
	}

	transactions := api.Group("/transactions", authz.RequireAuth())
	{
		transactions.GET("", h.Sales.List)
		transactions.GET("/:id", h.Sales.GetByID)
		transactions.POST("", h.Sales.CreateSale)
	}

	stats := api.Group("/statistics", authz.RequireAuth(), authz.RequireRole(entity.RoleAdmin))
	{
		stats.GET("/sales", h.Stats.Sales)
		stats.GET("/products", h.Stats.Products)
	}

	return r
}
