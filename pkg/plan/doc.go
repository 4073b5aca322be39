// Package plan models the organization plan the wizard walks the user
// through: the proposed categories, the repository assignments, and the
// cleanup (unstar) candidates.
//
// A plan is built from the organizer's output plus the lists that already
// exist on the forge, edited in place by the wizard (rename, merge, remove,
// move, keep), and finally flattened into an ordered operation list for the
// executor. List creation always precedes membership additions, and cleanup
// unstars come last.
package plan
