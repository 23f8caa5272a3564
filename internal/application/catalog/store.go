package catalog

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/quickbill/backend/internal/domain/catalog"
	"github.com/quickbill/backend/internal/domain/shared"
	"github.com/quickbill/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// Store owns the working catalog: the in-memory product list the billing
// UI works against, reconciled from the remote collection with a
// built-in default fallback. All catalog mutations route through here;
// the presentation layer only issues commands.
//
// Mutations are remote-first: the working catalog changes only after the
// remote store confirms the write, so a failed write never corrupts
// local state and the operation stays retryable.
type Store struct {
	repo catalog.ProductRepository
	log  *zap.Logger

	mu       sync.Mutex
	products []catalog.Product
	pending  bool // a remote mutation is in flight
}

// NewStore creates a catalog store seeded with the built-in defaults.
// Call Load to reconcile with the remote collection.
func NewStore(repo catalog.ProductRepository, log *zap.Logger) *Store {
	return &Store{
		repo:     repo,
		log:      log,
		products: catalog.DefaultCatalog(),
	}
}

// Load fetches all products from the remote collection and replaces the
// working catalog. On any failure, or an empty result, it falls back to
// the built-in default catalog: billing must stay usable when the remote
// store is unreachable. Load never fails the caller.
func (s *Store) Load(ctx context.Context) {
	products, err := s.repo.FindAll(ctx)
	if err != nil {
		s.log.Warn("catalog load failed, falling back to default catalog", zap.Error(err))
		s.replace(catalog.DefaultCatalog())
		return
	}
	if len(products) == 0 {
		s.log.Info("remote catalog is empty, using default catalog")
		s.replace(catalog.DefaultCatalog())
		return
	}

	s.replace(products)
	s.log.Info("catalog loaded", zap.Int("products", len(products)))
}

// Add validates and writes a new product to the remote collection, then
// appends it to the working catalog. The catalog id is assigned from the
// latest confirmed catalog, never from a stale snapshot: a second Add
// while one is pending is rejected with ErrMutationInFlight.
func (s *Store) Add(ctx context.Context, name string, price valueobject.Money) (*catalog.Product, error) {
	s.mu.Lock()
	if s.pending {
		s.mu.Unlock()
		return nil, shared.ErrMutationInFlight
	}

	product, err := catalog.NewProduct(catalog.NextCatalogID(s.products), name, price)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.pending = true
	s.mu.Unlock()

	if err := s.repo.Create(ctx, product); err != nil {
		s.finish(nil)
		s.log.Error("remote product create failed", zap.String("name", name), zap.Error(err))
		return nil, shared.ErrRemoteWrite
	}

	s.finish(func() {
		s.products = append(s.products, *product)
	})
	s.log.Info("product added",
		zap.Int("catalog_id", product.CatalogID),
		zap.String("name", product.Name))
	return product, nil
}

// Delete removes a product remote-first. The remote ref is preferred;
// when absent it is resolved by scanning the working catalog for the
// catalog id. Local removal happens only after the remote delete
// succeeds. Previously persisted invoices are untouched: their line
// items are snapshots.
func (s *Store) Delete(ctx context.Context, catalogID int, remoteRef uuid.UUID) error {
	s.mu.Lock()
	if s.pending {
		s.mu.Unlock()
		return shared.ErrMutationInFlight
	}

	if remoteRef == uuid.Nil {
		for _, p := range s.products {
			if p.CatalogID == catalogID {
				remoteRef = p.RemoteRef
				break
			}
		}
	}
	if remoteRef == uuid.Nil {
		s.mu.Unlock()
		return shared.NewDomainError("VALIDATION_ERROR", "Product has no remote reference to delete")
	}
	s.pending = true
	s.mu.Unlock()

	if err := s.repo.Delete(ctx, remoteRef); err != nil {
		s.finish(nil)
		s.log.Error("remote product delete failed", zap.Int("catalog_id", catalogID), zap.Error(err))
		return shared.ErrRemoteWrite
	}

	s.finish(func() {
		kept := s.products[:0]
		for _, p := range s.products {
			if p.RemoteRef != remoteRef {
				kept = append(kept, p)
			}
		}
		s.products = kept
	})
	s.log.Info("product deleted", zap.Int("catalog_id", catalogID))
	return nil
}

// Products returns a copy of the working catalog snapshot.
func (s *Store) Products() []catalog.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := make([]catalog.Product, len(s.products))
	copy(snapshot, s.products)
	return snapshot
}

// FindByCatalogID looks up a product in the working catalog.
func (s *Store) FindByCatalogID(catalogID int) (catalog.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.CatalogID == catalogID {
			return p, true
		}
	}
	return catalog.Product{}, false
}

func (s *Store) replace(products []catalog.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = products
}

// finish clears the pending flag, applying the local update first when
// the remote write was confirmed.
func (s *Store) finish(apply func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if apply != nil {
		apply()
	}
	s.pending = false
}
