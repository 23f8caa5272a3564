package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/quickbill/backend/internal/domain/billing"
	"github.com/quickbill/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// invoiceRecord is the storage shape of a persisted invoice. CreatedAt is
// assigned here, on the write path, never by the client.
type invoiceRecord struct {
	ID            uuid.UUID           `gorm:"type:uuid;primaryKey"`
	InvoiceNumber string              `gorm:"type:varchar(64);not null;index"`
	Date          time.Time           `gorm:"not null"`
	CustomerName  string              `gorm:"type:varchar(200)"`
	CustomerPhone string              `gorm:"type:varchar(32)"`
	Subtotal      decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	TaxAmount     decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	GrandTotal    decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	OwnerID       uuid.UUID           `gorm:"type:uuid;not null;index"`
	CreatedAt     time.Time           `gorm:"not null;index"`
	Items         []invoiceItemRecord `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
}

func (invoiceRecord) TableName() string {
	return "invoices"
}

// invoiceItemRecord stores the product snapshot taken when the line was
// composed. Position preserves entry order.
type invoiceItemRecord struct {
	LineID           uuid.UUID       `gorm:"type:uuid;primaryKey;column:line_id"`
	InvoiceID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position         int             `gorm:"not null"`
	ProductRemoteRef uuid.UUID       `gorm:"type:uuid;column:product_remote_ref"`
	CatalogID        int             `gorm:"not null;column:catalog_id"`
	ProductName      string          `gorm:"type:varchar(200);not null"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Quantity         int64           `gorm:"not null"`
}

func (invoiceItemRecord) TableName() string {
	return "invoice_items"
}

// GormInvoiceRepository implements billing.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db, now: time.Now}
}

// Create persists a draft invoice and marks it with the assigned id and
// server timestamp. The draft is left untouched on failure.
func (r *GormInvoiceRepository) Create(ctx context.Context, invoice *billing.Invoice) error {
	rec := toInvoiceRecord(invoice)
	rec.ID = uuid.New()
	rec.CreatedAt = r.now().UTC()
	for i := range rec.Items {
		rec.Items[i].InvoiceID = rec.ID
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&rec).Error
	})
	if err != nil {
		return err
	}
	return invoice.MarkPersisted(rec.ID, rec.CreatedAt)
}

// FindByOwner returns the owner's invoices newest first, ordered by the
// server-assigned creation timestamp.
func (r *GormInvoiceRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]billing.Invoice, error) {
	var records []invoiceRecord
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Find(&records).Error; err != nil {
		return nil, err
	}

	invoices := make([]billing.Invoice, 0, len(records))
	for _, rec := range records {
		invoices = append(invoices, fromInvoiceRecord(rec))
	}
	return invoices, nil
}

func toInvoiceRecord(invoice *billing.Invoice) invoiceRecord {
	items := make([]invoiceItemRecord, 0, len(invoice.Items))
	for i, item := range invoice.Items {
		items = append(items, invoiceItemRecord{
			LineID:           item.LineID,
			Position:         i,
			ProductRemoteRef: item.Product.RemoteRef,
			CatalogID:        item.Product.CatalogID,
			ProductName:      item.Product.Name,
			UnitPrice:        item.Product.Price,
			Quantity:         item.Quantity,
		})
	}
	return invoiceRecord{
		InvoiceNumber: invoice.InvoiceNumber,
		Date:          invoice.Date,
		CustomerName:  invoice.CustomerName,
		CustomerPhone: invoice.CustomerPhone,
		Subtotal:      invoice.Subtotal,
		TaxAmount:     invoice.TaxAmount,
		GrandTotal:    invoice.GrandTotal,
		OwnerID:       invoice.OwnerID,
		Items:         items,
	}
}

func fromInvoiceRecord(rec invoiceRecord) billing.Invoice {
	items := make([]billing.LineItem, 0, len(rec.Items))
	for _, item := range rec.Items {
		items = append(items, billing.LineItem{
			LineID: item.LineID,
			Product: catalog.Product{
				RemoteRef: item.ProductRemoteRef,
				CatalogID: item.CatalogID,
				Name:      item.ProductName,
				Price:     item.UnitPrice,
			},
			Quantity: item.Quantity,
		})
	}

	id := rec.ID
	createdAt := rec.CreatedAt
	return billing.Invoice{
		PersistedID:   &id,
		InvoiceNumber: rec.InvoiceNumber,
		Date:          rec.Date,
		CustomerName:  rec.CustomerName,
		CustomerPhone: rec.CustomerPhone,
		Items:         items,
		Subtotal:      rec.Subtotal,
		TaxAmount:     rec.TaxAmount,
		GrandTotal:    rec.GrandTotal,
		OwnerID:       rec.OwnerID,
		CreatedAt:     &createdAt,
	}
}

// Ensure GormInvoiceRepository implements InvoiceRepository
var _ billing.InvoiceRepository = (*GormInvoiceRepository)(nil)
