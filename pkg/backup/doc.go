// Package backup provides local snapshots of the user's starred repositories
// and lists, plus restore planning.
//
// A snapshot captures everything the organize flow can mutate: the full set
// of starred repositories (with starred-at timestamps) and the user's lists
// with their memberships. Snapshots are written as pretty-printed JSON files
// named <version>_backup.json inside the backup directory, where version is
// a UTC timestamp (yyyyMMddHHmmss).
//
// Alongside the snapshots lives starkeeper.sum, an integrity manifest using
// chained SHA256 hashing: each file's hash incorporates the previous file's
// hash, and the first line carries a total hash over all file hashes. Every
// write path (create, prune) rewrites the sum file, so Verify detects any
// out-of-band modification or removal of a backup.
//
// Restore is additive only: PlanRestore produces operations that re-star
// missing repositories, recreate missing lists, and re-add missing
// memberships. It never unstars or deletes anything.
package backup
