// Package utils provides small shared helpers used across the starkeeper
// codebase, currently validation for forge list and category names.
package utils
