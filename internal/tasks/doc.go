// Package tasks implements the pipeline core: the collection store threaded
// through a command chain, the deterministic sampler, and the reconciler that
// aligns a user's remote list with a target collection.
//
// # Pipeline execution
//
// A chain is an ordered list of command groups separated by the [Terminator]
// token. [ParseChain] turns raw CLI arguments into [Step] values and
// [Executor.Execute] runs them strictly in order against one
// [CollectionStore]. Every step is validated before the first one executes:
// bad arguments and references to undefined collections abort the chain
// before any I/O happens. Collections written by earlier steps are not rolled
// back when a later step fails, mirroring the fact that remote mutations
// already issued cannot be undone.
//
// # Sampling
//
// [Sample] filters a collection through a conjunction of predicates and
// orders the eligible records by a per-record hash of (seed, media ID). The
// rank depends only on the seed and the record's stable identifier, never on
// its position in the source, so adding or removing other records does not
// reshuffle the survivors. Offset and size then slice the ranked order,
// which makes offset-consecutive samples disjoint and concatenable.
//
// # Reconciliation
//
// [Reconciler.Commit] reads the remote list once, diffs it against the
// target collection, and issues the needed mutations sequentially behind a
// rate limiter. Transient failures are retried with bounded exponential
// backoff; every identifier's final outcome lands in a
// [models.MutationReport]. A failed entry never aborts the rest of the plan.
//
// # Progress reporting
//
// Long operations emit [ProgressUpdate] values through a non-blocking
// channel for display by the CLI layer. Updates use select with default so
// reporting never stalls execution.
package tasks
