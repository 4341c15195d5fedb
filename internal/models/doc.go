// Package models defines domain entities for the aniq media-list pipeline.
//
// The package contains three categories of types:
//
// 1. Catalog values: immutable records read from the local catalog snapshot or the remote service
//   - [MediaRecord] : A catalog entry with its filterable attributes
//   - [ListEntry] : A (media, status) pair on a user's remote list
//
// 2. Sampling configuration:
//   - [SampleSpec] : Filter predicates plus size/offset/seed for deterministic sampling
//
// 3. Reconciliation results:
//   - [ListEntryTarget] : A desired (media, status) pair produced by a commit
//   - [MutationPlan] : The ordered remote writes needed to reach a target collection
//   - [MutationReport] : Per-identifier outcome of executing a plan
//
// MediaRecord values are shared read-only across collections and are never
// mutated after they are read.
package models
