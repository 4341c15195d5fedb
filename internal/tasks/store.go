package tasks

import (
	"context"
	"fmt"
	"sort"

	"aniq/internal/models"
	"aniq/internal/services"
	"aniq/internal/shared"
)

// AllCollection is the reserved collection name for the full catalog. It is
// materialized lazily from the catalog snapshot on first reference and cached
// for the remainder of the store's lifetime, so every step in a chain sees
// the identical snapshot.
const AllCollection = "ALL"

// CollectionStore is the process-scoped mapping from collection name to an
// ordered sequence of media records. One store is threaded through an entire
// chain; it is owned by the executor and accessed from a single goroutine.
type CollectionStore struct {
	catalog     services.Catalog
	collections map[string][]models.MediaRecord
	all         []models.MediaRecord
	allLoaded   bool
}

// NewCollectionStore creates an empty store backed by the given catalog.
// The catalog may be nil when no chain references [AllCollection].
func NewCollectionStore(catalog services.Catalog) *CollectionStore {
	return &CollectionStore{
		catalog:     catalog,
		collections: make(map[string][]models.MediaRecord),
	}
}

// Get returns the named collection. There is no implicit creation: an
// undefined name fails with [shared.ErrUnknownCollection]. The reserved
// [AllCollection] name is not served here; use [CollectionStore.Resolve].
func (s *CollectionStore) Get(name string) ([]models.MediaRecord, error) {
	records, ok := s.collections[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", shared.ErrUnknownCollection, name)
	}
	return records, nil
}

// Put stores the collection under name, overwriting any prior collection of
// that name.
func (s *CollectionStore) Put(name string, records []models.MediaRecord) {
	s.collections[name] = records
}

// Exists reports whether the named collection has been written.
func (s *CollectionStore) Exists(name string) bool {
	_, ok := s.collections[name]
	return ok
}

// Names returns the defined collection names in sorted order.
func (s *CollectionStore) Names() []string {
	names := make([]string, 0, len(s.collections))
	for name := range s.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the named collection, materializing the reserved
// [AllCollection] from the catalog on first use.
func (s *CollectionStore) Resolve(ctx context.Context, name string) ([]models.MediaRecord, error) {
	if name == AllCollection {
		return s.resolveAll(ctx)
	}
	return s.Get(name)
}

func (s *CollectionStore) resolveAll(ctx context.Context) ([]models.MediaRecord, error) {
	if s.allLoaded {
		return s.all, nil
	}

	if s.catalog == nil {
		return nil, fmt.Errorf("%w: no catalog configured", shared.ErrCatalogUnavailable)
	}

	records, err := s.catalog.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	s.all = records
	s.allLoaded = true
	return s.all, nil
}
