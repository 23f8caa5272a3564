package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepository is the remote collection of products. The working
// catalog consumes it; it never implements it.
type ProductRepository interface {
	// Create writes a product to the remote collection. The product's
	// RemoteRef becomes authoritative only after Create returns nil.
	Create(ctx context.Context, product *Product) error

	// FindAll returns all products ordered by catalog id ascending.
	FindAll(ctx context.Context) ([]Product, error)

	// Delete removes a product by its remote ref.
	Delete(ctx context.Context, remoteRef uuid.UUID) error
}
