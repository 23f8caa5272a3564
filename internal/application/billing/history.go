package billing

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/quickbill/backend/internal/domain/billing"
	"github.com/quickbill/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DateDisplayFormat is how invoice dates are rendered for display and
// for date-substring filtering.
const DateDisplayFormat = "02 Jan 2006"

// History reads persisted invoices back for display and recall. The
// results are a read-only cached view; the remote store stays the source
// of truth.
type History struct {
	invoices billing.InvoiceRepository
	log      *zap.Logger
}

// NewHistory creates a history query service.
func NewHistory(invoices billing.InvoiceRepository, log *zap.Logger) *History {
	return &History{invoices: invoices, log: log}
}

// List returns the operator's invoices ordered by server-assigned
// creation timestamp descending. Any remote failure surfaces as
// ErrRemoteRead with no partial data.
func (h *History) List(ctx context.Context, ownerID uuid.UUID) ([]billing.Invoice, error) {
	if ownerID == uuid.Nil {
		return nil, shared.ErrUnauthorized
	}

	invoices, err := h.invoices.FindByOwner(ctx, ownerID)
	if err != nil {
		h.log.Error("invoice history query failed", zap.Stringer("owner_id", ownerID), zap.Error(err))
		return nil, shared.ErrRemoteRead
	}
	return invoices, nil
}

// Filter narrows an already-fetched result set by a case-insensitive
// substring match on invoice number, customer name, or formatted date.
// It never triggers a new remote query. An empty query returns the input
// unchanged.
func (h *History) Filter(invoices []billing.Invoice, query string) []billing.Invoice {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return invoices
	}

	matched := make([]billing.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if matchesQuery(inv, query) {
			matched = append(matched, inv)
		}
	}
	return matched
}

func matchesQuery(inv billing.Invoice, query string) bool {
	if strings.Contains(strings.ToLower(inv.InvoiceNumber), query) {
		return true
	}
	if strings.Contains(strings.ToLower(inv.CustomerName), query) {
		return true
	}
	date := inv.Date
	if inv.CreatedAt != nil {
		date = *inv.CreatedAt
	}
	return strings.Contains(strings.ToLower(date.Format(DateDisplayFormat)), query)
}
