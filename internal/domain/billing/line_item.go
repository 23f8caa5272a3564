package billing

import (
	"github.com/google/uuid"
	"github.com/quickbill/backend/internal/domain/catalog"
	"github.com/quickbill/backend/internal/domain/shared"
	"github.com/quickbill/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// LineItem is one line of a bill. Product is copied by value at the time
// the line is added, not held as a live reference: deleting a catalog
// product never touches invoices that reference it. The same product may
// appear on multiple lines; LineID disambiguates.
type LineItem struct {
	LineID   uuid.UUID       `json:"line_id"`
	Product  catalog.Product `json:"product"`
	Quantity int64           `json:"quantity"`
}

// NewLineItem creates a line item from a product snapshot and quantity.
func NewLineItem(product catalog.Product, quantity int64) (*LineItem, error) {
	if product.Name == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Line item product name cannot be empty")
	}
	if product.Price.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Line item product price must be positive")
	}
	if quantity < 1 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Quantity must be at least 1")
	}

	return &LineItem{
		LineID:   uuid.New(),
		Product:  product,
		Quantity: quantity,
	}, nil
}

// SetQuantity replaces the quantity. Quantities below 1 are rejected and
// the line is left unchanged.
func (i *LineItem) SetQuantity(quantity int64) error {
	if quantity < 1 {
		return shared.NewDomainError("VALIDATION_ERROR", "Quantity must be at least 1")
	}
	i.Quantity = quantity
	return nil
}

// Amount returns price x quantity on exact decimals.
func (i *LineItem) Amount() decimal.Decimal {
	return i.Product.Price.Mul(decimal.NewFromInt(i.Quantity))
}

// AmountMoney returns the line amount as a Money value object
func (i *LineItem) AmountMoney() valueobject.Money {
	return valueobject.NewMoneyINR(i.Amount())
}
