package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/quickbill/backend/internal/domain/catalog"
	"github.com/quickbill/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// Create stores a new product
func (r *GormProductRepository) Create(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// FindAll returns the full catalog ordered by catalog id ascending
func (r *GormProductRepository) FindAll(ctx context.Context) ([]catalog.Product, error) {
	var products []catalog.Product
	if err := r.db.WithContext(ctx).
		Order("catalog_id ASC").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Delete removes a product by its remote ref
func (r *GormProductRepository) Delete(ctx context.Context, remoteRef uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&catalog.Product{}, "remote_ref = ?", remoteRef)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
