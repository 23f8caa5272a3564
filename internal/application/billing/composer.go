package billing

import (
	"github.com/google/uuid"
	"github.com/quickbill/backend/internal/domain/billing"
	"github.com/quickbill/backend/internal/domain/catalog"
	"github.com/quickbill/backend/internal/domain/shared"
)

// Composer accumulates the in-progress bill for the active session:
// line items keyed by line id plus free-text customer details. Purely
// in-memory, no network access. The draft is destroyed by Clear (on
// navigation away or after a successful save).
type Composer struct {
	lines         []billing.LineItem // entry order, preserved
	customerName  string
	customerPhone string
}

// NewComposer creates an empty bill composer.
func NewComposer() *Composer {
	return &Composer{}
}

// AddLine snapshots the product by value and appends a new line item.
// The same product may be added twice as distinct lines.
func (c *Composer) AddLine(product catalog.Product, quantity int64) (*billing.LineItem, error) {
	item, err := billing.NewLineItem(product, quantity)
	if err != nil {
		return nil, err
	}
	c.lines = append(c.lines, *item)
	return item, nil
}

// RemoveLine drops the line with the given id.
func (c *Composer) RemoveLine(lineID uuid.UUID) error {
	for idx, line := range c.lines {
		if line.LineID == lineID {
			c.lines = append(c.lines[:idx], c.lines[idx+1:]...)
			return nil
		}
	}
	return shared.ErrNotFound
}

// SetQuantity adjusts the quantity of an existing line. Quantities below
// 1 are rejected and the line is left unchanged.
func (c *Composer) SetQuantity(lineID uuid.UUID, quantity int64) error {
	for idx := range c.lines {
		if c.lines[idx].LineID == lineID {
			return c.lines[idx].SetQuantity(quantity)
		}
	}
	return shared.ErrNotFound
}

// SetCustomer records the free-text customer details for the bill.
func (c *Composer) SetCustomer(name, phone string) {
	c.customerName = name
	c.customerPhone = phone
}

// Customer returns the recorded customer details.
func (c *Composer) Customer() (name, phone string) {
	return c.customerName, c.customerPhone
}

// Lines returns a copy of the current line items in entry order.
func (c *Composer) Lines() []billing.LineItem {
	lines := make([]billing.LineItem, len(c.lines))
	copy(lines, c.lines)
	return lines
}

// Clear discards all lines and customer details.
func (c *Composer) Clear() {
	c.lines = nil
	c.customerName = ""
	c.customerPhone = ""
}

// IsEmpty reports whether the bill has no lines.
func (c *Composer) IsEmpty() bool {
	return len(c.lines) == 0
}
