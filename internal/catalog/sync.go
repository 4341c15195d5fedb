package catalog

import (
	"context"
	"fmt"

	"aniq/internal/models"
	"aniq/internal/services"
)

// DefaultPerPage is the page size used when syncing the catalog.
const DefaultPerPage = 50

// Sync pages the catalog out of src and replaces the snapshot in store.
// Records arrive ordered by popularity (most popular first); each record's
// popularity percentile is derived from its rank in that ordering, so lower
// percentiles mean more popular titles. The onPage callback, if non-nil, is
// invoked after each fetched page with the page number and running total.
//
// Returns the number of records stored.
func Sync(ctx context.Context, src services.CatalogSource, store *Store, maxPages int, onPage func(page, total int)) (int, error) {
	if maxPages <= 0 {
		maxPages = 1
	}

	var records []models.MediaRecord
	for page := 1; page <= maxPages; page++ {
		pageRecords, hasNext, err := src.FetchCatalogPage(ctx, page, DefaultPerPage)
		if err != nil {
			return 0, fmt.Errorf("catalog sync failed at page %d: %w", page, err)
		}

		records = append(records, pageRecords...)
		if onPage != nil {
			onPage(page, len(records))
		}

		if !hasNext {
			break
		}
	}

	if len(records) == 0 {
		return 0, fmt.Errorf("catalog sync returned no records")
	}

	AssignPercentiles(records)

	if err := store.ReplaceAll(ctx, records); err != nil {
		return 0, err
	}

	return len(records), nil
}

// AssignPercentiles sets each record's popularity percentile from its rank in
// the slice: index 0 gets 0 (most popular), the last record approaches 100.
func AssignPercentiles(records []models.MediaRecord) {
	n := len(records)
	if n == 0 {
		return
	}
	for i := range records {
		records[i].Popularity = (i * 100) / n
	}
}
