package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"aniq/internal/catalog"
	"aniq/internal/shared"
)

// CatalogSync downloads the catalog into the local snapshot.
func (r *Runner) CatalogSync(ctx context.Context, cmd *cli.Command) error {
	if r.source == nil {
		return fmt.Errorf("%w: no catalog source configured", shared.ErrServiceUnavailable)
	}

	store, err := r.openCatalog()
	if err != nil {
		return err
	}

	pages := int(cmd.Int("pages"))
	if pages <= 0 {
		pages = r.config.Catalog.SyncPages
	}

	r.logger.Info("syncing catalog", "pages", pages)
	r.writePlain("Syncing catalog (%d pages max)...\n", pages)

	count, err := catalog.Sync(ctx, r.source, store, pages, func(page, total int) {
		r.writePlain("  page %d: %d entries\n", page, total)
	})
	if err != nil {
		return err
	}

	return r.writePlain("✓ Synced %d catalog entries\n", count)
}

// CatalogInfo shows snapshot location and entry count.
func (r *Runner) CatalogInfo(ctx context.Context, cmd *cli.Command) error {
	store, err := r.openCatalog()
	if err != nil {
		return err
	}

	count, err := store.Count(ctx)
	if err != nil {
		return err
	}

	path := r.config.Catalog.Path
	if path == "" {
		path = "catalog.db"
	}

	r.writePlain("Snapshot: %s\n", path)
	return r.writePlain("Entries: %d\n", count)
}
