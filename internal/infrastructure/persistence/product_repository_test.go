package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/quickbill/backend/internal/domain/catalog"
	"github.com/quickbill/backend/internal/domain/shared"
	"github.com/quickbill/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupProductTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&catalog.Product{})
	require.NoError(t, err)

	return db
}

func mustProduct(t *testing.T, catalogID int, name, price string) *catalog.Product {
	t.Helper()
	money, err := valueobject.NewMoneyINRFromString(price)
	require.NoError(t, err)
	p, err := catalog.NewProduct(catalogID, name, money)
	require.NoError(t, err)
	return p
}

func TestGormProductRepository_CreateAndFindAll(t *testing.T) {
	db := setupProductTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	t.Run("empty catalog returns no rows", func(t *testing.T) {
		products, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, products)
	})

	t.Run("returns products ordered by catalog id", func(t *testing.T) {
		for _, p := range []*catalog.Product{
			mustProduct(t, 2, "Sesame Oil 500ml", "180"),
			mustProduct(t, 1, "Groundnut Oil 1L", "250"),
			mustProduct(t, 3, "Coconut Oil 1L", "320"),
		} {
			require.NoError(t, repo.Create(ctx, p))
		}

		products, err := repo.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, products, 3)
		assert.Equal(t, 1, products[0].CatalogID)
		assert.Equal(t, 2, products[1].CatalogID)
		assert.Equal(t, 3, products[2].CatalogID)
		assert.Equal(t, "Groundnut Oil 1L", products[0].Name)
		assert.True(t, products[0].Price.Equal(products[0].PriceMoney().Amount()))
	})
}

func TestGormProductRepository_Delete(t *testing.T) {
	db := setupProductTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	t.Run("deletes existing product", func(t *testing.T) {
		p := mustProduct(t, 1, "Mustard Oil 500ml", "110")
		require.NoError(t, repo.Create(ctx, p))

		require.NoError(t, repo.Delete(ctx, p.RemoteRef))

		products, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, products)
	})

	t.Run("unknown remote ref returns not found", func(t *testing.T) {
		err := repo.Delete(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
