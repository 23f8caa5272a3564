package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// defaultEntries is the built-in catalog used when the remote store is
// unreachable or empty. Billing must stay usable offline.
var defaultEntries = []struct {
	id    int
	name  string
	price string
}{
	{1, "Groundnut Oil 1L", "250"},
	{2, "Sesame Oil 500ml", "180"},
	{3, "Coconut Oil 1L", "320"},
	{4, "Sunflower Oil 1L", "145"},
	{5, "Mustard Oil 500ml", "110"},
	{6, "Castor Oil 200ml", "60"},
}

// DefaultCatalog returns a fresh copy of the built-in default catalog,
// ordered by catalog id ascending. Entries carry no remote ref: they were
// never written to the remote store and cannot be deleted remotely.
func DefaultCatalog() []Product {
	now := time.Now()
	products := make([]Product, 0, len(defaultEntries))
	for _, e := range defaultEntries {
		price, err := decimal.NewFromString(e.price)
		if err != nil {
			panic("invalid default catalog price: " + e.price)
		}
		products = append(products, Product{
			RemoteRef: uuid.Nil,
			CatalogID: e.id,
			Name:      e.name,
			Price:     price,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return products
}
