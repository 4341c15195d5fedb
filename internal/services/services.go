// package services defines interfaces for the remote list service and the
// local catalog collaborators
package services

import (
	"context"

	"aniq/internal/models"
)

// ListService defines the operations the reconciler needs against a remote
// media-list provider (AniList).
type ListService interface {
	// FetchUserList retrieves all list entries for the given username.
	// An empty username fetches the authenticated viewer's list.
	FetchUserList(ctx context.Context, username string) ([]models.ListEntry, error)

	// SaveEntry adds the media to the authenticated user's list with the
	// given status, or updates the status if the media is already listed.
	SaveEntry(ctx context.Context, mediaID int, status models.Status) (*models.ListEntry, error)

	// DeleteEntry removes a list entry by its entry ID.
	DeleteEntry(ctx context.Context, entryID int) error

	// Viewer returns the authenticated user's name, or an error if the
	// client is not authenticated.
	Viewer(ctx context.Context) (string, error)

	// Name returns the name of the service (e.g., "AniList")
	Name() string
}

// Catalog supplies the locally materialized catalog snapshot.
type Catalog interface {
	// LoadAll returns every record in the snapshot. Fails with
	// [shared.ErrCatalogUnavailable] if no snapshot has been synced yet.
	LoadAll(ctx context.Context) ([]models.MediaRecord, error)
}

// CatalogSource fetches catalog pages from the remote service, used by
// `catalog sync` to build the local snapshot.
type CatalogSource interface {
	// FetchCatalogPage returns one page of catalog records ordered by
	// popularity and whether more pages remain.
	FetchCatalogPage(ctx context.Context, page, perPage int) ([]models.MediaRecord, bool, error)
}
