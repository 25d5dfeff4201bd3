// Package app builds the shared runtime pieces from configuration so the
// server and the admin CLI open the same database, stores and broker.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/iliyamo/monkey-ranch/internal/config"
	"github.com/iliyamo/monkey-ranch/internal/database"
	"github.com/iliyamo/monkey-ranch/internal/logger"
	"github.com/iliyamo/monkey-ranch/internal/queue"
	"github.com/iliyamo/monkey-ranch/internal/storage"
)

// DSN returns the connection string for cfg. MySQL falls back to the
// DB_USER/DB_PASS/DB_HOST/DB_PORT/DB_NAME variables when DATABASE_URL is
// empty.
func DSN(cfg config.Config) string {
	if cfg.DatabaseURL != "" {
		return cfg.DatabaseURL
	}
	if cfg.DBDriver == "mysql" {
		return database.MySQLDSN(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	}
	return ""
}

// OpenDB opens and pings the configured database.
func OpenDB(cfg config.Config) (*database.DB, error) {
	db, err := database.Open(cfg.DBDriver, DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.DBDriver, err)
	}
	return db, nil
}

// NewProofStore returns the local or MinIO store selected by STORAGE_BACKEND.
func NewProofStore(ctx context.Context, cfg config.Config) (storage.ProofStore, error) {
	switch cfg.Storage.Backend {
	case "", "local":
		return storage.NewLocalStore(cfg.UploadDir)
	case "minio":
		s := cfg.Storage
		return storage.NewMinioStore(ctx, s.MinioEndpoint, s.MinioAccessKey, s.MinioSecretKey, s.MinioBucket, s.MinioUseSSL)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// NewPublisher returns an AMQP publisher, or a no-op one when RABBITMQ_URL is
// unset. The returned func releases the connection.
func NewPublisher(cfg config.Config) (queue.Publisher, func()) {
	if cfg.RabbitURL == "" {
		logger.Info("RABBITMQ_URL not set; events are not published")
		return queue.Nop{}, func() {}
	}
	p := queue.NewAMQPPublisher(cfg.RabbitURL)
	return p, func() {
		if err := p.Close(); err != nil {
			logger.Warn("closing rabbitmq publisher", zap.Error(err))
		}
	}
}
