package billing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/quickbill/backend/internal/domain/billing"
	"github.com/quickbill/backend/internal/domain/identity"
	"github.com/quickbill/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockInvoiceRepository is a mock implementation of InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) Create(ctx context.Context, invoice *billing.Invoice) error {
	args := m.Called(ctx, invoice)
	if args.Error(0) == nil {
		_ = invoice.MarkPersisted(uuid.New(), time.Now())
	}
	return args.Error(0)
}

func (m *MockInvoiceRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]billing.Invoice, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

var _ billing.InvoiceRepository = (*MockInvoiceRepository)(nil)

// fakeProvider is an in-memory identity.Provider for tests.
type fakeProvider struct {
	mu       sync.Mutex
	operator *identity.Operator
	changes  chan identity.Change
}

func newFakeProvider(op *identity.Operator) *fakeProvider {
	return &fakeProvider{operator: op, changes: make(chan identity.Change, 4)}
}

func (f *fakeProvider) Current(ctx context.Context) (identity.Operator, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.operator == nil {
		return identity.Operator{}, false
	}
	return *f.operator, true
}

func (f *fakeProvider) Changes() <-chan identity.Change {
	return f.changes
}

func (f *fakeProvider) logout() {
	f.mu.Lock()
	f.operator = nil
	f.mu.Unlock()
	f.changes <- identity.Change{Kind: identity.ChangeLogout}
}

var _ identity.Provider = (*fakeProvider)(nil)

func testOperator() *identity.Operator {
	return &identity.Operator{ID: uuid.New(), Name: "asha"}
}

func testItems(t *testing.T) []billing.LineItem {
	t.Helper()
	item, err := billing.NewLineItem(catalogProduct(1, "Groundnut Oil 1L", 250), 3)
	require.NoError(t, err)
	return []billing.LineItem{*item}
}

func newLifecycle(repo billing.InvoiceRepository, provider identity.Provider) *Lifecycle {
	return NewLifecycle(repo, provider, decimal.NewFromFloat(0.05), "INV", zap.NewNop())
}

func TestLifecycleGenerateDraft(t *testing.T) {
	ctx := context.Background()

	t.Run("fails unauthorized with no identity and no state change", func(t *testing.T) {
		repo := new(MockInvoiceRepository)
		l := newLifecycle(repo, newFakeProvider(nil))

		_, err := l.GenerateDraft(ctx, "Asha", "", testItems(t))
		require.ErrorIs(t, err, shared.ErrUnauthorized)
		assert.Equal(t, StateNoDraft, l.State())
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("computes totals and transitions to DraftComputed", func(t *testing.T) {
		repo := new(MockInvoiceRepository)
		op := testOperator()
		l := newLifecycle(repo, newFakeProvider(op))

		draft, err := l.GenerateDraft(ctx, "Asha", "9876543210", testItems(t))
		require.NoError(t, err)

		assert.Equal(t, StateDraftComputed, l.State())
		assert.Equal(t, op.ID, draft.OwnerID)
		assert.Equal(t, "787.50", draft.GrandTotal.StringFixed(2))
		assert.False(t, draft.IsPersisted())
	})

	t.Run("re-invocation replaces the draft with no remote effect", func(t *testing.T) {
		repo := new(MockInvoiceRepository)
		l := newLifecycle(repo, newFakeProvider(testOperator()))

		first, err := l.GenerateDraft(ctx, "Asha", "", testItems(t))
		require.NoError(t, err)

		item, err := billing.NewLineItem(catalogProduct(2, "Sesame Oil 500ml", 180), 2)
		require.NoError(t, err)
		second, err := l.GenerateDraft(ctx, "Asha", "", []billing.LineItem{*item})
		require.NoError(t, err)

		assert.Equal(t, StateDraftComputed, l.State())
		assert.NotEqual(t, first.Subtotal, second.Subtotal)
		current, ok := l.Current()
		require.True(t, ok)
		assert.True(t, current.Subtotal.Equal(second.Subtotal))
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestLifecycleSaveDraft(t *testing.T) {
	ctx := context.Background()

	t.Run("persists the draft and attaches the remote id", func(t *testing.T) {
		repo := new(MockInvoiceRepository)
		l := newLifecycle(repo, newFakeProvider(testOperator()))
		repo.On("Create", ctx, mock.AnythingOfType("*billing.Invoice")).Return(nil)

		_, err := l.GenerateDraft(ctx, "Asha", "", testItems(t))
		require.NoError(t, err)

		saved, err := l.SaveDraft(ctx)
		require.NoError(t, err)

		assert.Equal(t, StatePersisted, l.State())
		assert.True(t, saved.IsPersisted())
		assert.NotNil(t, saved.CreatedAt)
	})

	t.Run("fails from NoDraft", func(t *testing.T) {
		repo := new(MockInvoiceRepository)
		l := newLifecycle(repo, newFakeProvider(testOperator()))

		_, err := l.SaveDraft(ctx)
		require.ErrorIs(t, err, shared.ErrInvalidState)
	})

	t.Run("fails unauthorized when identity is gone", func(t *testing.T) {
		repo := new(MockInvoiceRepository)
		provider := newFakeProvider(testOperator())
		l := newLifecycle(repo, provider)

		_, err := l.GenerateDraft(ctx, "Asha", "", testItems(t))
		require.NoError(t, err)

		provider.mu.Lock()
		provider.operator = nil
		provider.mu.Unlock()

		_, err = l.SaveDraft(ctx)
		require.ErrorIs(t, err, shared.ErrUnauthorized)
	})

	t.Run("remote failure keeps the draft and a retry succeeds", func(t *testing.T) {
		repo := new(MockInvoiceRepository)
		l := newLifecycle(repo, newFakeProvider(testOperator()))

		repo.On("Create", ctx, mock.AnythingOfType("*billing.Invoice")).Return(errors.New("network down")).Once()
		repo.On("Create", ctx, mock.AnythingOfType("*billing.Invoice")).Return(nil).Once()

		draft, err := l.GenerateDraft(ctx, "Asha", "", testItems(t))
		require.NoError(t, err)

		_, err = l.SaveDraft(ctx)
		require.ErrorIs(t, err, shared.ErrRemoteWrite)
		assert.Equal(t, StateDraftComputed, l.State())

		saved, err := l.SaveDraft(ctx)
		require.NoError(t, err)
		assert.Equal(t, draft.InvoiceNumber, saved.InvoiceNumber)
		assert.Equal(t, StatePersisted, l.State())
	})
}

func TestLifecycleDiscard(t *testing.T) {
	ctx := context.Background()
	repo := new(MockInvoiceRepository)
	l := newLifecycle(repo, newFakeProvider(testOperator()))

	_, err := l.GenerateDraft(ctx, "Asha", "", testItems(t))
	require.NoError(t, err)

	l.Discard()

	assert.Equal(t, StateNoDraft, l.State())
	_, ok := l.Current()
	assert.False(t, ok)
}

func TestLifecycleView(t *testing.T) {
	repo := new(MockInvoiceRepository)
	l := newLifecycle(repo, newFakeProvider(testOperator()))

	t.Run("enters viewing with a persisted invoice without recomputing", func(t *testing.T) {
		inv, err := billing.NewInvoice(uuid.New(), "Asha", "", testItems(t), decimal.NewFromFloat(0.05), "INV", time.Now())
		require.NoError(t, err)
		require.NoError(t, inv.MarkPersisted(uuid.New(), time.Now()))
		storedTotal := inv.GrandTotal

		require.NoError(t, l.View(*inv))

		assert.Equal(t, StateViewing, l.State())
		current, ok := l.Current()
		require.True(t, ok)
		assert.True(t, current.GrandTotal.Equal(storedTotal))
	})

	t.Run("rejects an unpersisted invoice", func(t *testing.T) {
		inv, err := billing.NewInvoice(uuid.New(), "Asha", "", testItems(t), decimal.NewFromFloat(0.05), "INV", time.Now())
		require.NoError(t, err)

		require.ErrorIs(t, l.View(*inv), shared.ErrInvalidState)
	})
}

func TestLifecycleIdentityChangeResets(t *testing.T) {
	ctx := context.Background()
	repo := new(MockInvoiceRepository)
	provider := newFakeProvider(testOperator())
	l := newLifecycle(repo, provider)

	_, err := l.GenerateDraft(ctx, "Asha", "", testItems(t))
	require.NoError(t, err)
	require.Equal(t, StateDraftComputed, l.State())

	provider.logout()

	assert.Eventually(t, func() bool {
		return l.State() == StateNoDraft
	}, time.Second, 10*time.Millisecond)
}
