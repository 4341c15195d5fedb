// Package services defines the interfaces the pipeline core depends on and
// the AniList GraphQL client implementing them.
//
// # Interfaces
//
//   - [ListService] : Read a user's media list and issue per-entry mutations
//   - [Catalog] : Load the locally materialized catalog snapshot
//   - [CatalogSource] : Fetch catalog pages from the remote service for sync
//
// # AniList client
//
// [AniListClient] talks to the AniList GraphQL API (https://graphql.anilist.co)
// over plain HTTP POST. Remote failures are classified into the shared error
// taxonomy by HTTP status: 429 maps to [shared.ErrRateLimited], 401/403 to
// [shared.ErrNotAuthenticated], 404 to [shared.ErrMediaNotFound], and 5xx to
// [shared.ErrServiceUnavailable]. Callers use errors.Is to decide whether a
// failure is retryable.
package services
