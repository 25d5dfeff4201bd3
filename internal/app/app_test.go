package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/monkey-ranch/internal/config"
	"github.com/iliyamo/monkey-ranch/internal/queue"
	"github.com/iliyamo/monkey-ranch/internal/storage"
)

func TestDSN(t *testing.T) {
	assert.Equal(t, "postgres://x", DSN(config.Config{DBDriver: "postgres", DatabaseURL: "postgres://x"}))
	assert.Equal(t, "", DSN(config.Config{DBDriver: "postgres"}))

	dsn := DSN(config.Config{DBDriver: "mysql", DBUser: "root", DBPass: "pw", DBHost: "db", DBPort: "3306", DBName: "ranch"})
	assert.Contains(t, dsn, "root:pw@tcp(db:3306)/ranch")
}

func TestNewProofStore(t *testing.T) {
	cfg := config.Config{UploadDir: t.TempDir()}
	s, err := NewProofStore(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &storage.LocalStore{}, s)

	cfg.Storage.Backend = "ftp"
	_, err = NewProofStore(context.Background(), cfg)
	assert.Error(t, err)
}

func TestNewPublisherWithoutBroker(t *testing.T) {
	p, closeFn := NewPublisher(config.Config{})
	defer closeFn()
	assert.Equal(t, queue.Nop{}, p)
}
