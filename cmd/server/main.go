package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/monkey-ranch/internal/app"
	"github.com/iliyamo/monkey-ranch/internal/config"
	"github.com/iliyamo/monkey-ranch/internal/handler"
	"github.com/iliyamo/monkey-ranch/internal/logger"
	"github.com/iliyamo/monkey-ranch/internal/queue"
	"github.com/iliyamo/monkey-ranch/internal/repository"
	"github.com/iliyamo/monkey-ranch/internal/router"
	"github.com/iliyamo/monkey-ranch/internal/schema"
	"github.com/iliyamo/monkey-ranch/internal/service"
	"github.com/iliyamo/monkey-ranch/internal/storage"
)

func main() {
	cfg := config.Load()
	if err := logger.Initialize(logger.Config{
		Debug:     cfg.Debug,
		SentryDSN: cfg.SentryDSN,
		Tags:      map[string]string{"service": "monkey-ranch", "env": cfg.Env},
	}); err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync(2 * time.Second)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := app.OpenDB(cfg)
	if err != nil {
		logger.Fatal("database unavailable", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn("closing database", zap.Error(err))
		} else {
			logger.Info("database connection closed")
		}
	}()

	if rep := schema.Ensure(ctx, db); !rep.OK() {
		logger.Warn("schema incomplete; affected endpoints will fail", zap.Int("failed_tables", len(rep.Failed())))
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Info("redis unavailable; response cache and rate limiting disabled")
	} else {
		defer rdb.Close()
	}

	store, err := app.NewProofStore(ctx, cfg)
	if err != nil {
		logger.Fatal("proof storage unavailable", zap.Error(err))
	}
	events, closeEvents := app.NewPublisher(cfg)
	defer closeEvents()

	if cfg.QueueConsumer && cfg.RabbitURL != "" {
		c := &queue.Consumer{URL: cfg.RabbitURL, LogDir: cfg.QueueLogDir}
		go func() {
			if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error(err)
			}
		}()
	}

	purchases := repository.NewPurchaseRepo(db)
	proofs := repository.NewProofRepo(db)
	cacheCfg := config.LoadCacheConfig()

	h := &handler.Handler{
		Contacts:     repository.NewContactRepo(db),
		Vip:          repository.NewVipRepo(db),
		Inscriptions: repository.NewInscriptionRepo(db),
		Purchases:    purchases,
		Proofs:       proofs,
		Attacher: &service.ProofService{
			Files: &storage.Uploader{
				Store:   store,
				Policy:  storage.DefaultPolicy(cfg.MaxUploadBytes),
				BaseURL: cfg.PublicBaseURL,
			},
			Purchases: purchases,
			Audit:     proofs,
			Events:    events,
		},
		Files:       store,
		DB:          db,
		Events:      events,
		Cache:       rdb,
		CachePrefix: cacheCfg.Prefix,
	}
	if !cacheCfg.Enabled {
		h.Cache = nil
	}

	e := router.New(h, router.Options{
		StaticDir: cfg.StaticDir,
		BodyLimit: fmt.Sprintf("%dK", (cfg.MaxUploadBytes+1<<20)/1024),
		Cache:     cacheCfg,
		RateLimit: config.LoadRateLimitConfig(),
		Redis:     rdb,
	})

	go func() {
		logger.Info("Monkey Ranch server listening", zap.String("addr", cfg.Addr()), zap.String("env", cfg.Env),
			zap.String("db_driver", cfg.DBDriver), zap.String("public_base_url", cfg.PublicBaseURL))
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
}
