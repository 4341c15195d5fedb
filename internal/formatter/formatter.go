// package formatter renders collections to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"aniq/internal/models"
)

// ExportToCSV converts a collection to CSV with columns: ID, Title, Year, Popularity, Genres, Format, Episodes
func ExportToCSV(records []models.MediaRecord) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Year", "Popularity", "Genres", "Format", "Episodes"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, m := range records {
		record := []string{
			strconv.Itoa(m.ID),
			m.Title,
			strconv.Itoa(m.Year),
			strconv.Itoa(m.Popularity),
			strings.Join(m.Genres, ";"),
			m.Format,
			strconv.Itoa(m.Episodes),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a collection to a Markdown listing.
func ExportToMarkdown(name string, records []models.MediaRecord) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", name))
	buf.WriteString(fmt.Sprintf("**Entries**: %d\n\n", len(records)))

	for i, m := range records {
		buf.WriteString(fmt.Sprintf("%d. %s%s\n", i+1, m.Title, describe(m)))
	}

	return buf.Bytes()
}

// ExportToText converts a collection to plain text.
func ExportToText(name string, records []models.MediaRecord) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("%s (%d entries)\n", name, len(records)))
	for _, m := range records {
		buf.WriteString(fmt.Sprintf("  %d\t%s%s\n", m.ID, m.Title, describe(m)))
	}

	return buf.Bytes()
}

// describe renders the parenthetical attribute suffix shared by the text and
// markdown formats.
func describe(m models.MediaRecord) string {
	var parts []string
	if m.Year > 0 {
		parts = append(parts, strconv.Itoa(m.Year))
	}
	if m.Format != "" {
		parts = append(parts, m.Format)
	}
	if len(m.Genres) > 0 {
		parts = append(parts, strings.Join(m.Genres, "/"))
	}
	if len(parts) == 0 {
		return ""
	}
	return fmt.Sprintf(" (%s)", strings.Join(parts, ", "))
}
