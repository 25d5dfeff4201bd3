package service

import (
	"context"
	"errors"
	"mime/multipart"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/monkey-ranch/internal/model"
	"github.com/iliyamo/monkey-ranch/internal/queue"
	"github.com/iliyamo/monkey-ranch/internal/repository"
	"github.com/iliyamo/monkey-ranch/internal/storage"
)

type mockSaver struct{ mock.Mock }

func (m *mockSaver) Save(ctx context.Context, fh *multipart.FileHeader) (storage.Stored, error) {
	args := m.Called(ctx, fh)
	return args.Get(0).(storage.Stored), args.Error(1)
}

type mockPurchases struct{ mock.Mock }

func (m *mockPurchases) FindLatestByIdentity(ctx context.Context, c model.Category, nombre, email string) (int64, error) {
	args := m.Called(ctx, c.Key, nombre, email)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockPurchases) SetProof(ctx context.Context, c model.Category, id int64, url string) error {
	return m.Called(ctx, c.Key, id, url).Error(0)
}

type mockAudit struct{ mock.Mock }

func (m *mockAudit) Create(ctx context.Context, c model.Category, rec *model.ProofRecord) error {
	args := m.Called(ctx, c.Key, rec)
	if args.Error(0) == nil {
		rec.ID = int64(len(m.Calls))
	}
	return args.Error(0)
}

type mockEvents struct{ mock.Mock }

func (m *mockEvents) Publish(ctx context.Context, q string, ev any) error {
	return m.Called(ctx, q, ev).Error(0)
}

const proofURL = "http://localhost:3000/uploads/1700000000000-pago.png"

type fixture struct {
	files     *mockSaver
	purchases *mockPurchases
	audit     *mockAudit
	events    *mockEvents
	svc       *ProofService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		files:     new(mockSaver),
		purchases: new(mockPurchases),
		audit:     new(mockAudit),
		events:    new(mockEvents),
	}
	f.svc = &ProofService{
		Files:     f.files,
		Purchases: f.purchases,
		Audit:     f.audit,
		Events:    f.events,
		Now:       func() time.Time { return time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC) },
	}
	t.Cleanup(func() {
		f.files.AssertExpectations(t)
		f.purchases.AssertExpectations(t)
		f.audit.AssertExpectations(t)
		f.events.AssertExpectations(t)
	})
	return f
}

func (f *fixture) stored() {
	f.files.On("Save", mock.Anything, mock.Anything).
		Return(storage.Stored{Name: "1700000000000-pago.png", URL: proofURL, ContentType: "image/png", Size: 10}, nil)
}

func submission(cat string) ProofSubmission {
	c, _ := model.LookupCategory(cat)
	return ProofSubmission{
		Category: c,
		Nombre:   "Ana",
		Email:    "ana@x.com",
		Telefono: "555",
		Cantidad: 2,
		Total:    decimal.RequireFromString("300"),
		File:     &multipart.FileHeader{Filename: "pago.png"},
	}
}

func TestAttachLinksNewestPurchase(t *testing.T) {
	f := newFixture(t)
	f.stored()
	// Two purchases exist for Ana; the lookup returns the newer one (id 7).
	f.purchases.On("FindLatestByIdentity", mock.Anything, "ticket", "Ana", "ana@x.com").Return(int64(7), nil)
	f.purchases.On("SetProof", mock.Anything, "ticket", int64(7), proofURL).Return(nil)
	f.audit.On("Create", mock.Anything, "ticket", mock.MatchedBy(func(r *model.ProofRecord) bool {
		return r.PurchaseID != nil && *r.PurchaseID == 7 && r.Comprobante == proofURL
	})).Return(nil)
	f.events.On("Publish", mock.Anything, queue.ProofAttachedQueue, queue.ProofAttachedEvent{
		Category: "ticket", PurchaseID: 7, Linked: true, Nombre: "Ana", Email: "ana@x.com",
		Total: "300.00", URL: proofURL, ReceivedAt: "2025-05-01T12:00:00Z",
	}).Return(nil)

	out, err := f.svc.Attach(context.Background(), submission("ticket"))
	require.NoError(t, err)
	assert.Equal(t, proofURL, out.URL)
	assert.True(t, out.Linked)
	assert.Equal(t, int64(7), out.PurchaseID)
	assert.Equal(t, int64(1), out.AuditID)
	assert.False(t, out.Degraded())
}

func TestAttachExplicitPurchaseIDSkipsLookup(t *testing.T) {
	f := newFixture(t)
	f.stored()
	f.purchases.On("SetProof", mock.Anything, "vip", int64(3), proofURL).Return(nil)
	f.audit.On("Create", mock.Anything, "vip", mock.Anything).Return(nil)
	f.events.On("Publish", mock.Anything, queue.ProofAttachedQueue, mock.Anything).Return(nil)

	sub := submission("vip")
	id := int64(3)
	sub.PurchaseID = &id
	out, err := f.svc.Attach(context.Background(), sub)
	require.NoError(t, err)
	assert.True(t, out.Linked)
	assert.Equal(t, int64(3), out.PurchaseID)
	f.purchases.AssertNotCalled(t, "FindLatestByIdentity", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAttachWithoutMatchingPurchaseStillAudits(t *testing.T) {
	f := newFixture(t)
	f.stored()
	f.purchases.On("FindLatestByIdentity", mock.Anything, "parking", "Ana", "ana@x.com").Return(int64(0), repository.ErrNotFound)
	f.audit.On("Create", mock.Anything, "parking", mock.MatchedBy(func(r *model.ProofRecord) bool {
		return r.PurchaseID == nil
	})).Return(nil)
	f.events.On("Publish", mock.Anything, queue.ProofAttachedQueue, mock.Anything).Return(nil)

	out, err := f.svc.Attach(context.Background(), submission("parking"))
	require.NoError(t, err)
	assert.False(t, out.Linked)
	assert.Zero(t, out.PurchaseID)
	assert.False(t, out.Degraded())
	f.purchases.AssertNotCalled(t, "SetProof", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAttachMissingExplicitPurchaseIsNotAnError(t *testing.T) {
	f := newFixture(t)
	f.stored()
	f.purchases.On("SetProof", mock.Anything, "ticket", int64(99), proofURL).Return(repository.ErrNotFound)
	f.audit.On("Create", mock.Anything, "ticket", mock.Anything).Return(nil)
	f.events.On("Publish", mock.Anything, queue.ProofAttachedQueue, mock.Anything).Return(nil)

	sub := submission("ticket")
	id := int64(99)
	sub.PurchaseID = &id
	out, err := f.svc.Attach(context.Background(), sub)
	require.NoError(t, err)
	assert.False(t, out.Linked)
	assert.False(t, out.Degraded())
}

func TestAttachSoftFailuresDoNotFailRequest(t *testing.T) {
	f := newFixture(t)
	f.stored()
	dbErr := errors.New("connection reset")
	f.purchases.On("FindLatestByIdentity", mock.Anything, "ticket", "Ana", "ana@x.com").Return(int64(5), nil)
	f.purchases.On("SetProof", mock.Anything, "ticket", int64(5), proofURL).Return(dbErr)
	f.audit.On("Create", mock.Anything, "ticket", mock.Anything).Return(dbErr)
	f.events.On("Publish", mock.Anything, queue.ProofAttachedQueue, mock.Anything).Return(errors.New("broker down"))

	out, err := f.svc.Attach(context.Background(), submission("ticket"))
	require.NoError(t, err)
	assert.Equal(t, proofURL, out.URL)
	assert.False(t, out.Linked)
	require.True(t, out.Degraded())
	steps := []Step{}
	for _, s := range out.Soft {
		steps = append(steps, s.Step)
	}
	assert.Equal(t, []Step{StepLink, StepAudit, StepNotify}, steps)
}

func TestAttachLookupErrorIsSoft(t *testing.T) {
	f := newFixture(t)
	f.stored()
	f.purchases.On("FindLatestByIdentity", mock.Anything, "ticket", "Ana", "ana@x.com").Return(int64(0), errors.New("timeout"))
	f.audit.On("Create", mock.Anything, "ticket", mock.Anything).Return(nil)
	f.events.On("Publish", mock.Anything, queue.ProofAttachedQueue, mock.Anything).Return(nil)

	out, err := f.svc.Attach(context.Background(), submission("ticket"))
	require.NoError(t, err)
	require.Len(t, out.Soft, 1)
	assert.Equal(t, StepResolve, out.Soft[0].Step)
}

func TestAttachStorageFailureIsHard(t *testing.T) {
	f := newFixture(t)
	f.files.On("Save", mock.Anything, mock.Anything).Return(storage.Stored{}, storage.ErrTypeNotAllowed)

	_, err := f.svc.Attach(context.Background(), submission("ticket"))
	require.ErrorIs(t, err, storage.ErrTypeNotAllowed)
	f.purchases.AssertNotCalled(t, "FindLatestByIdentity", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.audit.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestSecondProofOverwritesAndAuditsTwice(t *testing.T) {
	f := newFixture(t)
	f.stored()
	f.purchases.On("FindLatestByIdentity", mock.Anything, "ticket", "Ana", "ana@x.com").Return(int64(7), nil).Twice()
	f.purchases.On("SetProof", mock.Anything, "ticket", int64(7), proofURL).Return(nil).Twice()
	f.audit.On("Create", mock.Anything, "ticket", mock.Anything).Return(nil).Twice()
	f.events.On("Publish", mock.Anything, queue.ProofAttachedQueue, mock.Anything).Return(nil).Twice()

	first, err := f.svc.Attach(context.Background(), submission("ticket"))
	require.NoError(t, err)
	second, err := f.svc.Attach(context.Background(), submission("ticket"))
	require.NoError(t, err)
	assert.NotEqual(t, first.AuditID, second.AuditID)
	f.audit.AssertNumberOfCalls(t, "Create", 2)
}

func TestAttachWithoutPublisher(t *testing.T) {
	f := newFixture(t)
	f.svc.Events = nil
	f.stored()
	f.purchases.On("FindLatestByIdentity", mock.Anything, "ticket", "Ana", "ana@x.com").Return(int64(0), repository.ErrNotFound)
	f.audit.On("Create", mock.Anything, "ticket", mock.Anything).Return(nil)

	out, err := f.svc.Attach(context.Background(), submission("ticket"))
	require.NoError(t, err)
	assert.False(t, out.Degraded())
}
