// Package router wires handlers and middleware onto an Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/monkey-ranch/internal/config"
	"github.com/iliyamo/monkey-ranch/internal/handler"
	"github.com/iliyamo/monkey-ranch/internal/metrics"
	"github.com/iliyamo/monkey-ranch/internal/middleware"
	"github.com/iliyamo/monkey-ranch/internal/model"
)

// Options configures the cross-cutting middleware.
type Options struct {
	StaticDir string
	BodyLimit string // echo size notation, e.g. "11M"
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
	Redis     *redis.Client
}

// New returns an Echo instance with every route registered.
func New(h *handler.Handler, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler

	e.Use(echomw.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Metrics())
	e.Use(echomw.CORS())
	if opts.BodyLimit != "" {
		e.Use(echomw.BodyLimit(opts.BodyLimit))
	}

	RegisterRoutes(e, h, opts)
	return e
}

// RegisterRoutes registers the static site, health, metrics and API routes.
func RegisterRoutes(e *echo.Echo, h *handler.Handler, opts Options) {
	e.GET("/healthz", h.Health)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	e.GET("/uploads/:name", h.ServeUpload)

	if opts.StaticDir != "" {
		e.Use(echomw.StaticWithConfig(echomw.StaticConfig{
			Root:  opts.StaticDir,
			Index: "index.html",
		}))
	}

	cache := middleware.NewRedisCache(opts.Cache, opts.Redis)
	limit := middleware.NewTokenBucket(opts.RateLimit, opts.Redis)

	api := e.Group("/api")
	api.POST("/contact", h.CreateContact, limit)
	api.GET("/contacts", h.ListContacts, cache)
	api.POST("/vip", h.CreateVip, limit)
	api.GET("/vip", h.ListVip, cache)
	api.POST("/inscripcion", h.CreateInscription, limit)
	api.GET("/inscripciones", h.ListInscriptions, cache)

	for _, cat := range model.Categories() {
		api.POST("/"+cat.Key+"-purchase", h.CreatePurchase(cat), limit)
		api.GET("/"+cat.Key+"-purchases", h.ListPurchases(cat), cache)
		api.POST("/"+cat.Key+handler.ProofRouteSuffix, h.UploadProof(cat), limit)
		api.GET("/"+cat.Key+"-proofs", h.ListProofs(cat), cache)
	}
}
