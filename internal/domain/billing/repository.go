package billing

import (
	"context"

	"github.com/google/uuid"
)

// InvoiceRepository is the remote collection of persisted invoices.
type InvoiceRepository interface {
	// Create writes the invoice with a server-assigned creation
	// timestamp and marks it persisted on success.
	Create(ctx context.Context, invoice *Invoice) error

	// FindByOwner returns invoices for one operator ordered by the
	// server-assigned creation timestamp descending.
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]Invoice, error)
}
