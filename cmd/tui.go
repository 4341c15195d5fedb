package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"aniq/internal/models"
	"aniq/internal/ui"
)

// TUI launches the interactive browser over a user's list, or over the
// catalog snapshot when no username is given.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	username := cmd.StringArg("username")

	var title string
	var records []models.MediaRecord

	if username == "" {
		store, err := r.openCatalog()
		if err != nil {
			return err
		}
		records, err = store.LoadAll(ctx)
		if err != nil {
			return err
		}
		title = fmt.Sprintf("Catalog (%d entries)", len(records))
	} else {
		entries, err := r.anilist.FetchUserList(ctx, username)
		if err != nil {
			return err
		}
		byID := r.catalogLookup(ctx)
		for _, entry := range entries {
			if record, ok := byID[entry.MediaID]; ok {
				records = append(records, record)
				continue
			}
			records = append(records, models.MediaRecord{ID: entry.MediaID, Title: entry.Title})
		}
		title = fmt.Sprintf("%s (%d entries)", username, len(records))
	}

	return ui.RunBrowse(title, records)
}

// catalogLookup indexes the snapshot by media ID; an empty map when no
// snapshot exists.
func (r *Runner) catalogLookup(ctx context.Context) map[int]models.MediaRecord {
	byID := map[int]models.MediaRecord{}

	store, err := r.openCatalog()
	if err != nil {
		return byID
	}
	records, err := store.LoadAll(ctx)
	if err != nil {
		return byID
	}

	for _, record := range records {
		byID[record.ID] = record
	}
	return byID
}
