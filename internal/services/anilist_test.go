package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"aniq/internal/models"
	"aniq/internal/shared"
	tu "aniq/internal/testing"
)

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

// decodeRequest pulls the GraphQL query and variables out of a request body.
func decodeRequest(t *testing.T, req *http.Request) (string, map[string]any) {
	t.Helper()
	var payload struct {
		Query     string         `json:"query"`
		Variables map[string]any `json:"variables"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode request body: %v", err)
	}
	return payload.Query, payload.Variables
}

func newMockClient(token string, fn func(*http.Request) (*http.Response, error)) *AniListClient {
	httpClient := &http.Client{Transport: &tu.MockRoundTripper{RoundTripFunc: fn}}
	return NewAniListClient("", token, httpClient)
}

func TestAniListClient(t *testing.T) {
	ctx := context.Background()

	t.Run("FetchUserList", func(t *testing.T) {
		t.Run("follows pagination", func(t *testing.T) {
			pages := []string{
				`{"data": {"Page": {"pageInfo": {"hasNextPage": true}, "mediaList": [
					{"id": 11, "mediaId": 1, "status": "COMPLETED", "media": {"id": 1, "title": {"romaji": "One"}}}
				]}}}`,
				`{"data": {"Page": {"pageInfo": {"hasNextPage": false}, "mediaList": [
					{"id": 12, "mediaId": 2, "status": "PLANNING", "media": {"id": 2, "title": {"romaji": "Two"}}}
				]}}}`,
			}

			var requested []float64
			client := newMockClient("", func(req *http.Request) (*http.Response, error) {
				_, vars := decodeRequest(t, req)
				page := vars["page"].(float64)
				requested = append(requested, page)
				return jsonResponse(200, pages[int(page)-1]), nil
			})

			entries, err := client.FetchUserList(ctx, "alice")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(entries) != 2 {
				t.Fatalf("expected 2 entries, got %d", len(entries))
			}
			if len(requested) != 2 || requested[0] != 1 || requested[1] != 2 {
				t.Errorf("unexpected page sequence: %v", requested)
			}
			if entries[0].EntryID != 11 || entries[0].Title != "One" || entries[0].Status != models.StatusCompleted {
				t.Errorf("unexpected first entry: %+v", entries[0])
			}
			if entries[1].MediaID != 2 || entries[1].Status != models.StatusPlanning {
				t.Errorf("unexpected second entry: %+v", entries[1])
			}
		})

		t.Run("empty username resolves the viewer", func(t *testing.T) {
			client := newMockClient("token", func(req *http.Request) (*http.Response, error) {
				query, vars := decodeRequest(t, req)
				if strings.Contains(query, "Viewer") {
					return jsonResponse(200, `{"data": {"Viewer": {"id": 7, "name": "me"}}}`), nil
				}
				if vars["username"] != "me" {
					t.Errorf("expected username me, got %v", vars["username"])
				}
				return jsonResponse(200, `{"data": {"Page": {"pageInfo": {"hasNextPage": false}, "mediaList": []}}}`), nil
			})

			if _, err := client.FetchUserList(ctx, ""); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})

		t.Run("unknown status from the API", func(t *testing.T) {
			client := newMockClient("", func(req *http.Request) (*http.Response, error) {
				return jsonResponse(200, `{"data": {"Page": {"pageInfo": {"hasNextPage": false}, "mediaList": [
					{"id": 1, "mediaId": 1, "status": "WAITING", "media": {"id": 1, "title": {"romaji": "X"}}}
				]}}}`), nil
			})

			_, err := client.FetchUserList(ctx, "alice")
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})
	})

	t.Run("status classification", func(t *testing.T) {
		cases := []struct {
			code int
			want error
		}{
			{429, shared.ErrRateLimited},
			{401, shared.ErrNotAuthenticated},
			{403, shared.ErrNotAuthenticated},
			{404, shared.ErrMediaNotFound},
			{500, shared.ErrServiceUnavailable},
			{503, shared.ErrServiceUnavailable},
			{400, shared.ErrAPIRequest},
		}

		for _, tc := range cases {
			client := newMockClient("", func(req *http.Request) (*http.Response, error) {
				return jsonResponse(tc.code, `{}`), nil
			})

			_, err := client.FetchUserList(ctx, "alice")
			if !errors.Is(err, tc.want) {
				t.Errorf("status %d: expected %v, got %v", tc.code, tc.want, err)
			}
		}
	})

	t.Run("GraphQL error payload", func(t *testing.T) {
		client := newMockClient("", func(req *http.Request) (*http.Response, error) {
			return jsonResponse(200, `{"errors": [{"message": "Too Many Requests.", "status": 429}]}`), nil
		})

		_, err := client.FetchUserList(ctx, "alice")
		if !errors.Is(err, shared.ErrRateLimited) {
			t.Errorf("expected ErrRateLimited, got %v", err)
		}
	})

	t.Run("network failure", func(t *testing.T) {
		client := newMockClient("", func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		})

		_, err := client.FetchUserList(ctx, "alice")
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("SaveEntry", func(t *testing.T) {
		t.Run("requires a token", func(t *testing.T) {
			client := newMockClient("", func(req *http.Request) (*http.Response, error) {
				t.Error("no request should be issued without a token")
				return nil, nil
			})

			_, err := client.SaveEntry(ctx, 1, models.StatusPlanning)
			if !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
		})

		t.Run("sends mutation with bearer token", func(t *testing.T) {
			client := newMockClient("secret", func(req *http.Request) (*http.Response, error) {
				if got := req.Header.Get("Authorization"); got != "Bearer secret" {
					t.Errorf("expected bearer token, got %q", got)
				}
				query, vars := decodeRequest(t, req)
				if !strings.Contains(query, "SaveMediaListEntry") {
					t.Errorf("expected save mutation, got %q", query)
				}
				if vars["mediaId"].(float64) != 42 || vars["status"] != "COMPLETED" {
					t.Errorf("unexpected variables: %v", vars)
				}
				return jsonResponse(200, `{"data": {"SaveMediaListEntry": {
					"id": 7, "mediaId": 42, "status": "COMPLETED",
					"media": {"title": {"romaji": "Forty Two"}}
				}}}`), nil
			})

			entry, err := client.SaveEntry(ctx, 42, models.StatusCompleted)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if entry.EntryID != 7 || entry.MediaID != 42 || entry.Title != "Forty Two" {
				t.Errorf("unexpected entry: %+v", entry)
			}
		})
	})

	t.Run("DeleteEntry", func(t *testing.T) {
		t.Run("requires a token", func(t *testing.T) {
			client := newMockClient("", nil)

			err := client.DeleteEntry(ctx, 7)
			if !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
		})

		t.Run("deleted flag", func(t *testing.T) {
			client := newMockClient("secret", func(req *http.Request) (*http.Response, error) {
				return jsonResponse(200, `{"data": {"DeleteMediaListEntry": {"deleted": true}}}`), nil
			})
			if err := client.DeleteEntry(ctx, 7); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			client = newMockClient("secret", func(req *http.Request) (*http.Response, error) {
				return jsonResponse(200, `{"data": {"DeleteMediaListEntry": {"deleted": false}}}`), nil
			})
			if err := client.DeleteEntry(ctx, 7); !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest when nothing was deleted, got %v", err)
			}
		})
	})

	t.Run("Viewer without token", func(t *testing.T) {
		client := newMockClient("", nil)

		_, err := client.Viewer(ctx)
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("FetchCatalogPage", func(t *testing.T) {
		client := newMockClient("", func(req *http.Request) (*http.Response, error) {
			_, vars := decodeRequest(t, req)
			if vars["page"].(float64) != 2 || vars["perPage"].(float64) != 50 {
				t.Errorf("unexpected variables: %v", vars)
			}
			return jsonResponse(200, `{"data": {"Page": {"pageInfo": {"hasNextPage": true}, "media": [
				{"id": 5, "title": {"romaji": "Five"}, "seasonYear": 2015, "genres": ["Action"], "format": "TV", "episodes": 12}
			]}}}`), nil
		})

		records, more, err := client.FetchCatalogPage(ctx, 2, 50)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !more {
			t.Error("expected hasNextPage")
		}
		if len(records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(records))
		}
		r := records[0]
		if r.ID != 5 || r.Title != "Five" || r.Year != 2015 || r.Format != "TV" || r.Episodes != 12 {
			t.Errorf("unexpected record: %+v", r)
		}
	})
}
