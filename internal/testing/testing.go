// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"net/http"

	"aniq/internal/models"
)

// MockListService is a configurable test double for [services.ListService].
//
// Entries seeds the remote list snapshot; SaveFunc and DeleteFunc, when set,
// decide per-call outcomes. Every call is recorded for assertions.
type MockListService struct {
	Entries    []models.ListEntry
	FetchErr   error
	SaveFunc   func(mediaID int, status models.Status) error
	DeleteFunc func(entryID int) error

	FetchCalls int
	Saves      []SavedEntry
	Deletes    []int
}

// SavedEntry records one SaveEntry call.
type SavedEntry struct {
	MediaID int
	Status  models.Status
}

func (m *MockListService) FetchUserList(ctx context.Context, username string) ([]models.ListEntry, error) {
	m.FetchCalls++
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	entries := make([]models.ListEntry, len(m.Entries))
	copy(entries, m.Entries)
	return entries, nil
}

func (m *MockListService) SaveEntry(ctx context.Context, mediaID int, status models.Status) (*models.ListEntry, error) {
	if m.SaveFunc != nil {
		if err := m.SaveFunc(mediaID, status); err != nil {
			return nil, err
		}
	}
	m.Saves = append(m.Saves, SavedEntry{MediaID: mediaID, Status: status})
	return &models.ListEntry{EntryID: mediaID, MediaID: mediaID, Status: status}, nil
}

func (m *MockListService) DeleteEntry(ctx context.Context, entryID int) error {
	if m.DeleteFunc != nil {
		if err := m.DeleteFunc(entryID); err != nil {
			return err
		}
	}
	m.Deletes = append(m.Deletes, entryID)
	return nil
}

func (m *MockListService) Viewer(ctx context.Context) (string, error) {
	return "mockuser", nil
}

func (m *MockListService) Name() string { return "mock" }

// MockCatalog is a test double for [services.Catalog] that counts loads.
type MockCatalog struct {
	Records []models.MediaRecord
	Err     error
	Calls   int
}

func (m *MockCatalog) LoadAll(ctx context.Context) ([]models.MediaRecord, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Records, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	RoundTripFunc func(*http.Request) (*http.Response, error)
}

func (m *MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.RoundTripFunc(req)
}
