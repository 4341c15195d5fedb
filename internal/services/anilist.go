// AniList GraphQL client for list reads, per-entry mutations, and catalog sync
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"aniq/internal/models"
	"aniq/internal/shared"
)

// DefaultEndpoint is the public AniList GraphQL endpoint.
const DefaultEndpoint = "https://graphql.anilist.co"

// maxListPages bounds the pagination loop when fetching a user list.
const maxListPages = 1000

const userListQuery = `
query ($username: String, $page: Int) {
	Page (page: $page) {
		pageInfo {
			hasNextPage
		}
		mediaList (userName: $username) {
			id
			mediaId
			status
			media {
				id
				title {
					romaji
				}
			}
		}
	}
}`

const saveEntryMutation = `
mutation ($mediaId: Int, $status: MediaListStatus) {
	SaveMediaListEntry (mediaId: $mediaId, status: $status) {
		id
		mediaId
		status
		media {
			title {
				romaji
			}
		}
	}
}`

const deleteEntryMutation = `
mutation ($id: Int) {
	DeleteMediaListEntry (id: $id) {
		deleted
	}
}`

const viewerQuery = `
query {
	Viewer {
		id
		name
	}
}`

const catalogPageQuery = `
query ($page: Int, $perPage: Int) {
	Page (page: $page, perPage: $perPage) {
		pageInfo {
			hasNextPage
		}
		media (type: ANIME, sort: POPULARITY_DESC) {
			id
			title {
				romaji
			}
			seasonYear
			genres
			format
			episodes
		}
	}
}`

// AniListClient talks to the AniList GraphQL API.
// Implements [ListService] and [CatalogSource].
type AniListClient struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

var (
	_ ListService   = (*AniListClient)(nil)
	_ CatalogSource = (*AniListClient)(nil)
)

// NewAniListClient creates a client for the given endpoint. An empty endpoint
// uses [DefaultEndpoint]; a nil client uses [http.DefaultClient]. The token
// may be empty for read-only queries.
func NewAniListClient(endpoint, token string, client *http.Client) *AniListClient {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &AniListClient{
		endpoint:   endpoint,
		token:      token,
		httpClient: client,
	}
}

// Name returns the service name.
func (a *AniListClient) Name() string { return "AniList" }

// SetToken replaces the bearer token used for authenticated requests.
func (a *AniListClient) SetToken(token string) { a.token = token }

type gqlError struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

type gqlEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []gqlError      `json:"errors"`
}

// do executes one GraphQL request and unmarshals the data payload into out.
func (a *AniListClient) do(ctx context.Context, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(map[string]any{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp.StatusCode); err != nil {
		return err
	}

	var envelope gqlEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if len(envelope.Errors) > 0 {
		first := envelope.Errors[0]
		if err := classifyStatus(first.Status); err != nil {
			return fmt.Errorf("%w: %s", err, first.Message)
		}
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, first.Message)
	}

	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("failed to decode data payload: %w", err)
		}
	}

	return nil
}

// classifyStatus maps an HTTP or GraphQL status code onto the shared error
// taxonomy. Returns nil for 2xx and unrecognized codes below 400.
func classifyStatus(code int) error {
	switch {
	case code == http.StatusTooManyRequests:
		return shared.ErrRateLimited
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return shared.ErrNotAuthenticated
	case code == http.StatusNotFound:
		return shared.ErrMediaNotFound
	case code >= 500:
		return fmt.Errorf("%w: status %d", shared.ErrServiceUnavailable, code)
	case code >= 400:
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, code)
	default:
		return nil
	}
}

type mediaListPage struct {
	Page struct {
		PageInfo struct {
			HasNextPage bool `json:"hasNextPage"`
		} `json:"pageInfo"`
		MediaList []struct {
			ID      int    `json:"id"`
			MediaID int    `json:"mediaId"`
			Status  string `json:"status"`
			Media   struct {
				ID    int `json:"id"`
				Title struct {
					Romaji string `json:"romaji"`
				} `json:"title"`
			} `json:"media"`
		} `json:"mediaList"`
	} `json:"Page"`
}

// FetchUserList retrieves every entry on the given user's list, following
// pagination until the API reports no further pages.
func (a *AniListClient) FetchUserList(ctx context.Context, username string) ([]models.ListEntry, error) {
	if username == "" {
		viewer, err := a.Viewer(ctx)
		if err != nil {
			return nil, err
		}
		username = viewer
	}

	var entries []models.ListEntry
	for page := 1; page <= maxListPages; page++ {
		var data mediaListPage
		err := a.do(ctx, userListQuery, map[string]any{
			"username": username,
			"page":     page,
		}, &data)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch list page %d for %s: %w", page, username, err)
		}

		for _, m := range data.Page.MediaList {
			status, err := models.ParseStatus(m.Status)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
			}
			entries = append(entries, models.ListEntry{
				EntryID: m.ID,
				MediaID: m.MediaID,
				Title:   m.Media.Title.Romaji,
				Status:  status,
			})
		}

		if !data.Page.PageInfo.HasNextPage {
			break
		}
	}

	return entries, nil
}

// SaveEntry adds or updates a list entry for the authenticated user.
func (a *AniListClient) SaveEntry(ctx context.Context, mediaID int, status models.Status) (*models.ListEntry, error) {
	if a.token == "" {
		return nil, fmt.Errorf("%w: access token required for mutations", shared.ErrNotAuthenticated)
	}

	var data struct {
		SaveMediaListEntry struct {
			ID      int    `json:"id"`
			MediaID int    `json:"mediaId"`
			Status  string `json:"status"`
			Media   struct {
				Title struct {
					Romaji string `json:"romaji"`
				} `json:"title"`
			} `json:"media"`
		} `json:"SaveMediaListEntry"`
	}

	err := a.do(ctx, saveEntryMutation, map[string]any{
		"mediaId": mediaID,
		"status":  string(status),
	}, &data)
	if err != nil {
		return nil, err
	}

	saved := data.SaveMediaListEntry
	return &models.ListEntry{
		EntryID: saved.ID,
		MediaID: saved.MediaID,
		Title:   saved.Media.Title.Romaji,
		Status:  models.Status(saved.Status),
	}, nil
}

// DeleteEntry removes a list entry by its entry ID.
func (a *AniListClient) DeleteEntry(ctx context.Context, entryID int) error {
	if a.token == "" {
		return fmt.Errorf("%w: access token required for mutations", shared.ErrNotAuthenticated)
	}

	var data struct {
		DeleteMediaListEntry struct {
			Deleted bool `json:"deleted"`
		} `json:"DeleteMediaListEntry"`
	}

	err := a.do(ctx, deleteEntryMutation, map[string]any{"id": entryID}, &data)
	if err != nil {
		return err
	}

	if !data.DeleteMediaListEntry.Deleted {
		return fmt.Errorf("%w: entry %d was not deleted", shared.ErrAPIRequest, entryID)
	}

	return nil
}

// Viewer returns the authenticated user's name.
func (a *AniListClient) Viewer(ctx context.Context) (string, error) {
	if a.token == "" {
		return "", fmt.Errorf("%w: no access token configured", shared.ErrNotAuthenticated)
	}

	var data struct {
		Viewer struct {
			ID   int    `json:"id"`
			Name string `json:"name"`
		} `json:"Viewer"`
	}

	if err := a.do(ctx, viewerQuery, nil, &data); err != nil {
		return "", err
	}

	return data.Viewer.Name, nil
}

type catalogPage struct {
	Page struct {
		PageInfo struct {
			HasNextPage bool `json:"hasNextPage"`
		} `json:"pageInfo"`
		Media []struct {
			ID    int `json:"id"`
			Title struct {
				Romaji string `json:"romaji"`
			} `json:"title"`
			SeasonYear int      `json:"seasonYear"`
			Genres     []string `json:"genres"`
			Format     string   `json:"format"`
			Episodes   int      `json:"episodes"`
		} `json:"media"`
	} `json:"Page"`
}

// FetchCatalogPage returns one catalog page ordered by popularity (most
// popular first) and whether more pages remain. Popularity percentiles are
// assigned by the catalog sync task once the total count is known.
func (a *AniListClient) FetchCatalogPage(ctx context.Context, page, perPage int) ([]models.MediaRecord, bool, error) {
	var data catalogPage
	err := a.do(ctx, catalogPageQuery, map[string]any{
		"page":    page,
		"perPage": perPage,
	}, &data)
	if err != nil {
		return nil, false, fmt.Errorf("failed to fetch catalog page %d: %w", page, err)
	}

	records := make([]models.MediaRecord, 0, len(data.Page.Media))
	for _, m := range data.Page.Media {
		records = append(records, models.MediaRecord{
			ID:       m.ID,
			Title:    m.Title.Romaji,
			Year:     m.SeasonYear,
			Genres:   m.Genres,
			Format:   m.Format,
			Episodes: m.Episodes,
		})
	}

	return records, data.Page.PageInfo.HasNextPage, nil
}
