// Package format renders plans, operations, and execution reports for the
// terminal. Styling goes through lipgloss; constructing a Formatter without
// color produces plain output suitable for pipes and golden tests.
package format
