// Package executor applies approved organization plans against the forge.
//
// The executor takes the flattened operation list produced by pkg/plan and
// runs it with bounded parallelism. List creations run first, sequentially,
// so that membership additions can resolve the IDs of freshly created lists.
// The remaining operations (membership updates, unstars) are partitioned
// into fixed-size batches; each batch runs concurrently and is fully awaited
// before the next batch starts, which keeps the request rate against the
// forge API predictable.
//
// Individual failures never abort a batch: every operation produces an
// ExecutionResult with a success/failed/skipped status, and the caller
// decides how to present partial failure. Because the forge replaces a
// repository's full list membership on update, additions for the same
// repository are coalesced into a single update carrying the union of its
// current and newly assigned lists.
package executor
