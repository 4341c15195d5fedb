package formatter

import (
	"strings"
	"testing"

	"aniq/internal/models"
)

func formatterRecords() []models.MediaRecord {
	return []models.MediaRecord{
		{ID: 1, Title: "Cowboy Bebop", Year: 1998, Popularity: 0, Genres: []string{"Action", "Sci-Fi"}, Format: "TV", Episodes: 26},
		{ID: 2, Title: "Untitled", Popularity: 99},
	}
}

func TestExportToCSV(t *testing.T) {
	t.Run("headers and rows", func(t *testing.T) {
		out, err := ExportToCSV(formatterRecords())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		lines := strings.Split(strings.TrimSpace(string(out)), "\n")
		if len(lines) != 3 {
			t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
		}
		if lines[0] != "ID,Title,Year,Popularity,Genres,Format,Episodes" {
			t.Errorf("unexpected header: %q", lines[0])
		}
		if lines[1] != "1,Cowboy Bebop,1998,0,Action;Sci-Fi,TV,26" {
			t.Errorf("unexpected first row: %q", lines[1])
		}
		if lines[2] != "2,Untitled,0,99,,,0" {
			t.Errorf("unexpected second row: %q", lines[2])
		}
	})

	t.Run("titles with commas are quoted", func(t *testing.T) {
		out, err := ExportToCSV([]models.MediaRecord{{ID: 1, Title: "Love, Chunibyo"}})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(string(out), `"Love, Chunibyo"`) {
			t.Errorf("expected quoted title, got %q", string(out))
		}
	})

	t.Run("empty collection", func(t *testing.T) {
		out, err := ExportToCSV(nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if strings.TrimSpace(string(out)) != "ID,Title,Year,Popularity,Genres,Format,Episodes" {
			t.Errorf("expected headers only, got %q", string(out))
		}
	})
}

func TestExportToMarkdown(t *testing.T) {
	out := string(ExportToMarkdown("picks", formatterRecords()))

	if !strings.HasPrefix(out, "# picks\n") {
		t.Errorf("expected heading, got %q", out)
	}
	if !strings.Contains(out, "**Entries**: 2") {
		t.Errorf("expected entry count, got %q", out)
	}
	if !strings.Contains(out, "1. Cowboy Bebop (1998, TV, Action/Sci-Fi)") {
		t.Errorf("expected numbered entry with attributes, got %q", out)
	}
	if !strings.Contains(out, "2. Untitled\n") {
		t.Errorf("expected bare entry without suffix, got %q", out)
	}
}

func TestExportToText(t *testing.T) {
	out := string(ExportToText("picks", formatterRecords()))

	if !strings.HasPrefix(out, "picks (2 entries)\n") {
		t.Errorf("expected header line, got %q", out)
	}
	if !strings.Contains(out, "1\tCowboy Bebop (1998, TV, Action/Sci-Fi)") {
		t.Errorf("expected record line, got %q", out)
	}
}
