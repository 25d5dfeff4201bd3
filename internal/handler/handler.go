// Package handler implements the HTTP endpoints of the site. Every handler
// validates its form, writes one row and answers in the shared envelope.
package handler

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/monkey-ranch/internal/logger"
	"github.com/iliyamo/monkey-ranch/internal/metrics"
	"github.com/iliyamo/monkey-ranch/internal/middleware"
	"github.com/iliyamo/monkey-ranch/internal/model"
	"github.com/iliyamo/monkey-ranch/internal/queue"
	"github.com/iliyamo/monkey-ranch/internal/repository"
	"github.com/iliyamo/monkey-ranch/internal/service"
	"github.com/iliyamo/monkey-ranch/internal/storage"
)

type ContactStore interface {
	Create(ctx context.Context, m *model.ContactMessage) error
	List(ctx context.Context, p repository.Page) ([]model.ContactMessage, error)
}

type VipStore interface {
	Create(ctx context.Context, v *model.VipRegistration) error
	List(ctx context.Context, p repository.Page) ([]model.VipRegistration, error)
}

type InscriptionStore interface {
	Create(ctx context.Context, in *model.Inscription) error
	List(ctx context.Context, p repository.Page) ([]model.Inscription, error)
}

type PurchaseStore interface {
	Create(ctx context.Context, c model.Category, p *model.Purchase) error
	List(ctx context.Context, c model.Category, p repository.Page) ([]model.Purchase, error)
}

type ProofLister interface {
	List(ctx context.Context, c model.Category, p repository.Page) ([]model.ProofRecord, error)
}

type ProofAttacher interface {
	Attach(ctx context.Context, sub service.ProofSubmission) (service.Outcome, error)
}

// Pinger is satisfied by the database handle.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handler bundles the dependencies of every endpoint. Events and Cache are
// optional.
type Handler struct {
	Contacts     ContactStore
	Vip          VipStore
	Inscriptions InscriptionStore
	Purchases    PurchaseStore
	Proofs       ProofLister
	Attacher     ProofAttacher
	Files        storage.ProofStore
	DB           Pinger

	Events      queue.Publisher
	Cache       *redis.Client
	CachePrefix string
	Now         func() time.Time
}

// afterWrite runs the side effects of a successful insert: cached lists are
// dropped and a forms.submitted event is published. Failures are logged only.
func (h *Handler) afterWrite(ctx context.Context, form string, id int64, nombre, email string) {
	metrics.TrackForm(form, metrics.ResultCreated)
	log := logger.FromContext(ctx)
	if h.Cache != nil {
		if err := middleware.Invalidate(ctx, h.Cache, h.CachePrefix); err != nil {
			log.Warn("cache invalidation failed", zap.String("form", form), zap.Error(err))
		}
	}
	if h.Events != nil {
		ev := queue.FormSubmittedEvent{
			Form:        form,
			ID:          id,
			Nombre:      nombre,
			Email:       email,
			SubmittedAt: h.now().UTC().Format(time.RFC3339),
		}
		if err := h.Events.Publish(ctx, queue.FormSubmittedQueue, ev); err != nil {
			log.Warn("form event not published", zap.String("form", form), zap.Error(err))
		}
	}
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}
