package ui

import (
	"testing"

	"aniq/internal/models"
)

func TestMediaItem(t *testing.T) {
	t.Run("full description", func(t *testing.T) {
		item := mediaItem{media: models.MediaRecord{
			Title:      "Cowboy Bebop",
			Year:       1998,
			Popularity: 0,
			Genres:     []string{"Action", "Sci-Fi"},
			Format:     "TV",
		}}

		if item.Title() != "Cowboy Bebop" {
			t.Errorf("unexpected title: %q", item.Title())
		}
		if item.FilterValue() != "Cowboy Bebop" {
			t.Errorf("unexpected filter value: %q", item.FilterValue())
		}
		want := "1998 • TV • Action/Sci-Fi • top 1%"
		if item.Description() != want {
			t.Errorf("expected %q, got %q", want, item.Description())
		}
	})

	t.Run("sparse record", func(t *testing.T) {
		item := mediaItem{media: models.MediaRecord{Title: "Untitled", Popularity: 49}}

		if item.Description() != "top 50%" {
			t.Errorf("expected popularity only, got %q", item.Description())
		}
	})

	t.Run("mediaItems preserves order", func(t *testing.T) {
		records := []models.MediaRecord{{ID: 1, Title: "A"}, {ID: 2, Title: "B"}}

		items := mediaItems(records)
		if len(items) != 2 {
			t.Fatalf("expected 2 items, got %d", len(items))
		}
		if items[0].(mediaItem).media.ID != 1 || items[1].(mediaItem).media.ID != 2 {
			t.Error("items out of order")
		}
	})
}
