// Package service holds the one multi-step flow of the site: receiving a
// payment proof and linking it to the purchase it pays for.
package service

import (
	"context"
	"errors"
	"mime/multipart"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/iliyamo/monkey-ranch/internal/logger"
	"github.com/iliyamo/monkey-ranch/internal/model"
	"github.com/iliyamo/monkey-ranch/internal/queue"
	"github.com/iliyamo/monkey-ranch/internal/repository"
	"github.com/iliyamo/monkey-ranch/internal/storage"
)

// PurchaseLinker resolves and updates purchase rows.
type PurchaseLinker interface {
	FindLatestByIdentity(ctx context.Context, c model.Category, nombre, email string) (int64, error)
	SetProof(ctx context.Context, c model.Category, id int64, url string) error
}

// ProofAuditor appends proof audit rows.
type ProofAuditor interface {
	Create(ctx context.Context, c model.Category, rec *model.ProofRecord) error
}

// ProofSaver validates and stores the uploaded file.
type ProofSaver interface {
	Save(ctx context.Context, fh *multipart.FileHeader) (storage.Stored, error)
}

// Step names the stages whose failure does not fail the request.
type Step string

const (
	StepResolve Step = "resolve"
	StepLink    Step = "link"
	StepAudit   Step = "audit"
	StepNotify  Step = "notify"
)

// SoftFailure is a logged, non-fatal problem in one step.
type SoftFailure struct {
	Step Step
	Err  error
}

// Outcome is the result of a proof submission whose file was stored.
// Linked is false when no purchase row was found or updated; Soft lists
// every step that failed without failing the request.
type Outcome struct {
	URL        string
	StoredName string
	PurchaseID int64
	Linked     bool
	AuditID    int64
	Soft       []SoftFailure
}

// Degraded reports whether any best-effort step failed.
func (o Outcome) Degraded() bool { return len(o.Soft) > 0 }

func (o *Outcome) soft(step Step, err error) {
	o.Soft = append(o.Soft, SoftFailure{Step: step, Err: err})
}

// ProofSubmission is a validated proof form.
type ProofSubmission struct {
	Category    model.Category
	Nombre      string
	Email       string
	Telefono    string
	Cantidad    int
	FechaEvento string
	Extra       string
	Total       decimal.Decimal
	// PurchaseID, when set, names the purchase directly and skips the
	// lookup by name and email.
	PurchaseID *int64
	File       *multipart.FileHeader
}

// ProofService runs the submission flow.
type ProofService struct {
	Files     ProofSaver
	Purchases PurchaseLinker
	Audit     ProofAuditor
	Events    queue.Publisher
	Now       func() time.Time
}

// Attach stores the file, links it to a purchase and appends an audit row.
//
// Only storing the file can fail the call; a policy violation comes back as
// a storage policy error before anything is written. Once the file is saved
// the remaining steps are best effort and their failures are collected in
// Outcome.Soft.
//
// Without an explicit PurchaseID the newest purchase under the same name and
// email is chosen. A visitor with two purchases in the same category always
// has proofs attributed to the most recent one, and concurrent uploads for
// the same visitor are not serialized.
func (s *ProofService) Attach(ctx context.Context, sub ProofSubmission) (Outcome, error) {
	log := logger.FromContext(ctx).With(zap.String("category", sub.Category.Key), zap.String("email", sub.Email))

	stored, err := s.Files.Save(ctx, sub.File)
	if err != nil {
		return Outcome{}, err
	}
	out := Outcome{URL: stored.URL, StoredName: stored.Name}
	log = log.With(zap.String("proof", stored.Name))

	var target int64
	if sub.PurchaseID != nil {
		target = *sub.PurchaseID
	} else {
		id, err := s.Purchases.FindLatestByIdentity(ctx, sub.Category, sub.Nombre, sub.Email)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			log.Info("no purchase matches proof submitter")
		case err != nil:
			out.soft(StepResolve, err)
			log.Warn("purchase lookup failed", zap.Error(err))
		default:
			target = id
		}
	}

	if target != 0 {
		switch err := s.Purchases.SetProof(ctx, sub.Category, target, stored.URL); {
		case errors.Is(err, repository.ErrNotFound):
			log.Info("purchase id given with proof does not exist", zap.Int64("purchase_id", target))
		case err != nil:
			out.soft(StepLink, err)
			log.Warn("linking proof to purchase failed", zap.Int64("purchase_id", target), zap.Error(err))
		default:
			out.PurchaseID = target
			out.Linked = true
		}
	}

	rec := &model.ProofRecord{
		Nombre:      sub.Nombre,
		Email:       sub.Email,
		Telefono:    sub.Telefono,
		Cantidad:    sub.Cantidad,
		FechaEvento: sub.FechaEvento,
		Extra:       sub.Extra,
		Total:       sub.Total,
		Comprobante: stored.URL,
	}
	if out.Linked {
		id := out.PurchaseID
		rec.PurchaseID = &id
	}
	if err := s.Audit.Create(ctx, sub.Category, rec); err != nil {
		out.soft(StepAudit, err)
		log.Warn("proof audit insert failed", zap.Error(err))
	} else {
		out.AuditID = rec.ID
	}

	if s.Events != nil {
		ev := queue.ProofAttachedEvent{
			Category:   sub.Category.Key,
			PurchaseID: out.PurchaseID,
			Linked:     out.Linked,
			Nombre:     sub.Nombre,
			Email:      sub.Email,
			Total:      sub.Total.StringFixed(2),
			URL:        stored.URL,
			ReceivedAt: s.now().UTC().Format(time.RFC3339),
		}
		if err := s.Events.Publish(ctx, queue.ProofAttachedQueue, ev); err != nil {
			out.soft(StepNotify, err)
			log.Warn("proof event not published", zap.Error(err))
		}
	}

	log.Info("proof received", zap.Bool("linked", out.Linked), zap.Int64("purchase_id", out.PurchaseID),
		zap.Int("soft_failures", len(out.Soft)))
	return out, nil
}

func (s *ProofService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
