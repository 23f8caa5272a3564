package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/quickbill/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Invoice is a bill with computed totals. It is a draft while PersistedID
// is absent (mutable only by discard or save) and immutable once the
// remote store has assigned an id. Re-displaying a persisted invoice
// never recomputes its stored totals.
type Invoice struct {
	PersistedID   *uuid.UUID      `json:"persisted_id,omitempty"`
	InvoiceNumber string          `json:"invoice_number"`
	Date          time.Time       `json:"date"`
	CustomerName  string          `json:"customer_name"`
	CustomerPhone string          `json:"customer_phone"`
	Items         []LineItem      `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
	OwnerID       uuid.UUID       `json:"owner_id"`
	CreatedAt     *time.Time      `json:"created_at,omitempty"` // server-assigned
}

// NumberFromClock stamps an invoice number from the wall clock:
// "<prefix>-<epoch-millis>". Uniqueness rests on the embedded timestamp;
// no remote uniqueness check is performed.
func NumberFromClock(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%d", prefix, now.UnixMilli())
}

// NewInvoice builds a draft invoice from the composed line items,
// computing totals exactly. Item order is entry order and is preserved.
func NewInvoice(ownerID uuid.UUID, customerName, customerPhone string, items []LineItem, taxRate decimal.Decimal, prefix string, now time.Time) (*Invoice, error) {
	if ownerID == uuid.Nil {
		return nil, shared.ErrUnauthorized
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Cannot generate an invoice without line items")
	}

	copied := make([]LineItem, len(items))
	copy(copied, items)

	totals := ComputeTotals(copied, taxRate)
	return &Invoice{
		InvoiceNumber: NumberFromClock(prefix, now),
		Date:          now,
		CustomerName:  customerName,
		CustomerPhone: customerPhone,
		Items:         copied,
		Subtotal:      totals.Subtotal,
		TaxAmount:     totals.TaxAmount,
		GrandTotal:    totals.GrandTotal,
		OwnerID:       ownerID,
	}, nil
}

// IsPersisted reports whether the remote store has assigned an id.
func (inv *Invoice) IsPersisted() bool {
	return inv.PersistedID != nil
}

// MarkPersisted attaches the remote-assigned id and server timestamp.
// Valid once; a persisted invoice is immutable thereafter.
func (inv *Invoice) MarkPersisted(id uuid.UUID, createdAt time.Time) error {
	if inv.IsPersisted() {
		return shared.ErrInvalidState
	}
	if id == uuid.Nil {
		return shared.NewDomainError("VALIDATION_ERROR", "Persisted id cannot be empty")
	}
	inv.PersistedID = &id
	inv.CreatedAt = &createdAt
	return nil
}
