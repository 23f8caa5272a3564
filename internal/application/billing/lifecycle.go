package billing

import (
	"context"
	"sync"
	"time"

	"github.com/quickbill/backend/internal/domain/billing"
	"github.com/quickbill/backend/internal/domain/identity"
	"github.com/quickbill/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// State is the lifecycle state of the active bill.
type State string

const (
	StateNoDraft       State = "NO_DRAFT"
	StateDraftComputed State = "DRAFT_COMPUTED"
	StatePersisted     State = "PERSISTED"
	StateViewing       State = "VIEWING" // recalled historical invoice, read-only
)

// Lifecycle orchestrates the transition of a bill from draft (computed,
// unsaved) to persisted invoice (remote id assigned). It is the sole
// owner of the draft; any identity change (login/logout) resets it to
// NoDraft.
type Lifecycle struct {
	invoices      billing.InvoiceRepository
	operators     identity.Provider
	log           *zap.Logger
	taxRate       decimal.Decimal
	invoicePrefix string
	clock         func() time.Time

	mu    sync.Mutex
	state State
	draft *billing.Invoice
}

// NewLifecycle creates a controller in NoDraft and subscribes to
// identity changes.
func NewLifecycle(invoices billing.InvoiceRepository, operators identity.Provider, taxRate decimal.Decimal, invoicePrefix string, log *zap.Logger) *Lifecycle {
	l := &Lifecycle{
		invoices:      invoices,
		operators:     operators,
		log:           log,
		taxRate:       taxRate,
		invoicePrefix: invoicePrefix,
		clock:         time.Now,
		state:         StateNoDraft,
	}
	go l.watchIdentity()
	return l
}

// GenerateDraft computes totals for the composed line items and stamps
// an invoice number from the wall clock. Fails with ErrUnauthorized when
// no operator identity is present, with no state transition and no
// remote call. Re-invocation while still in DraftComputed recomputes and
// replaces the draft; there is no remote effect until SaveDraft.
func (l *Lifecycle) GenerateDraft(ctx context.Context, customerName, customerPhone string, items []billing.LineItem) (*billing.Invoice, error) {
	operator, ok := l.operators.Current(ctx)
	if !ok {
		return nil, shared.ErrUnauthorized
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != StateNoDraft && l.state != StateDraftComputed {
		return nil, shared.ErrInvalidState
	}

	draft, err := billing.NewInvoice(operator.ID, customerName, customerPhone, items, l.taxRate, l.invoicePrefix, l.clock())
	if err != nil {
		return nil, err
	}

	l.draft = draft
	l.state = StateDraftComputed
	l.log.Info("draft computed",
		zap.String("invoice_number", draft.InvoiceNumber),
		zap.Int("items", len(draft.Items)),
		zap.String("grand_total", draft.GrandTotal.String()))
	return draft, nil
}

// SaveDraft writes the computed draft to the remote store with a
// server-assigned creation timestamp. On success the controller
// transitions to Persisted and the remote id is attached to the
// in-memory copy. On failure the state stays DraftComputed: the same
// draft can be retried once the remote failure clears. No uniqueness
// check against the remote store is performed; the timestamp-embedded
// invoice number makes collisions astronomically unlikely within one
// operator's session.
func (l *Lifecycle) SaveDraft(ctx context.Context) (*billing.Invoice, error) {
	if _, ok := l.operators.Current(ctx); !ok {
		return nil, shared.ErrUnauthorized
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != StateDraftComputed || l.draft == nil {
		return nil, shared.ErrInvalidState
	}

	if err := l.invoices.Create(ctx, l.draft); err != nil {
		l.log.Error("invoice save failed, draft retained",
			zap.String("invoice_number", l.draft.InvoiceNumber),
			zap.Error(err))
		return nil, shared.ErrRemoteWrite
	}

	l.state = StatePersisted
	l.log.Info("invoice persisted",
		zap.String("invoice_number", l.draft.InvoiceNumber),
		zap.Stringer("persisted_id", l.draft.PersistedID))
	return l.draft, nil
}

// Discard drops any unsaved draft and returns to NoDraft. Valid from any
// state; no remote effect.
func (l *Lifecycle) Discard() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reset()
}

// View enters the read-only Viewing state with a previously fetched
// invoice. Stored totals are displayed as-is, never recomputed.
func (l *Lifecycle) View(invoice billing.Invoice) error {
	if !invoice.IsPersisted() {
		return shared.ErrInvalidState
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.draft = &invoice
	l.state = StateViewing
	return nil
}

// State returns the current lifecycle state.
func (l *Lifecycle) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Current returns the active draft or viewed invoice, if any.
func (l *Lifecycle) Current() (*billing.Invoice, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.draft == nil {
		return nil, false
	}
	inv := *l.draft
	return &inv, true
}

func (l *Lifecycle) reset() {
	l.draft = nil
	l.state = StateNoDraft
}

// watchIdentity resets the controller whenever the operator identity
// changes, dropping any unsaved draft.
func (l *Lifecycle) watchIdentity() {
	for change := range l.operators.Changes() {
		l.mu.Lock()
		hadDraft := l.state == StateDraftComputed
		l.reset()
		l.mu.Unlock()

		if hadDraft {
			l.log.Info("identity changed, unsaved draft discarded", zap.String("change", string(change.Kind)))
		}
	}
}
