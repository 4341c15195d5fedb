package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"

	"aniq/internal/models"
)

var _ list.Item = mediaItem{}

// mediaItem wraps [models.MediaRecord] to implement [list.Item].
type mediaItem struct {
	media models.MediaRecord
}

func (i mediaItem) FilterValue() string { return i.media.Title }
func (i mediaItem) Title() string       { return i.media.Title }
func (i mediaItem) Description() string {
	var parts []string
	if i.media.Year > 0 {
		parts = append(parts, fmt.Sprintf("%d", i.media.Year))
	}
	if i.media.Format != "" {
		parts = append(parts, i.media.Format)
	}
	if len(i.media.Genres) > 0 {
		parts = append(parts, strings.Join(i.media.Genres, "/"))
	}
	parts = append(parts, fmt.Sprintf("top %d%%", i.media.Popularity+1))
	return strings.Join(parts, " • ")
}

func mediaItems(records []models.MediaRecord) []list.Item {
	items := make([]list.Item, len(records))
	for i, m := range records {
		items[i] = mediaItem{media: m}
	}
	return items
}
