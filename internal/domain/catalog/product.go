package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/quickbill/backend/internal/domain/shared"
	"github.com/quickbill/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Product represents a product in the working catalog. CatalogID is the
// operator-visible integer identity, unique within the active catalog
// snapshot and assigned client-side. RemoteRef is the remote store's key
// and is the authoritative handle for delete operations once persisted.
type Product struct {
	RemoteRef uuid.UUID       `gorm:"type:uuid;primaryKey;column:remote_ref" json:"remote_ref"`
	CatalogID int             `gorm:"not null;index;column:catalog_id" json:"id"`
	Name      string          `gorm:"type:varchar(200);not null" json:"name"`
	Price     decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"price"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new catalog product with a client-assigned
// catalog id. The remote ref is assigned on the confirmed remote write.
func NewProduct(catalogID int, name string, price valueobject.Money) (*Product, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validatePrice(price.Amount()); err != nil {
		return nil, err
	}
	if catalogID <= 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Catalog id must be positive")
	}

	now := time.Now()
	return &Product{
		RemoteRef: uuid.New(),
		CatalogID: catalogID,
		Name:      name,
		Price:     price.Amount(),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// PriceMoney returns the price as a Money value object
func (p *Product) PriceMoney() valueobject.Money {
	return valueobject.NewMoneyINR(p.Price)
}

// NextCatalogID computes the next client-assigned catalog id:
// max(existing ids, 0) + 1.
func NextCatalogID(products []Product) int {
	maxID := 0
	for _, p := range products {
		if p.CatalogID > maxID {
			maxID = p.CatalogID
		}
	}
	return maxID + 1
}

func validateName(name string) error {
	if name == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("VALIDATION_ERROR", "Product name cannot exceed 200 characters")
	}
	return nil
}

func validatePrice(price decimal.Decimal) error {
	if price.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("VALIDATION_ERROR", "Product price must be positive")
	}
	return nil
}
