// Package term provides the interactive terminal plumbing used by the
// wizard: line prompts, confirmations, index selection, hidden secret
// entry, and a progress spinner that disables itself when output is not a
// terminal.
package term
