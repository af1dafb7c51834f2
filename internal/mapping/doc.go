// Package mapping keeps the aws-auth ConfigMap in line with the declared
// IAMIdentityMapping resources.
//
// Three entry points share one [Mapper]:
//
//   - [Reconciler] applies a single create, update, or delete event.
//   - [FullSync] upserts every declared mapping in one write, optionally
//     pruning entries this operator wrote earlier that are no longer declared.
//   - [DriftDetector] compares declared usernames with the document and
//     reports an [OutOfSyncError] when they differ.
//
// Every mutation is a fetch, modify, write cycle against an [authmap.Store].
// Cycles are serialized in process and restarted from the fetch when the
// store reports [authmap.ErrConflict].
package mapping
