// Package catalog persists the locally materialized media catalog snapshot
// in SQLite.
//
// The snapshot is built by `aniq catalog sync`, which pages the full catalog
// out of the remote service ordered by popularity and stores it with a
// popularity percentile derived from that ordering (0 = most popular). The
// pipeline's reserved ALL collection is served from this snapshot, so a chain
// sees one consistent catalog for its whole run.
//
// [Store] implements [services.Catalog].
package catalog
