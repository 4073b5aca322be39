package utils

import (
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

const (
	// MaxListNameLen is the forge's limit on list names.
	MaxListNameLen = 32

	// MaxListDescriptionLen is the forge's limit on list descriptions.
	MaxListDescriptionLen = 160
)

// ValidateListName checks that a list or category name is non-empty after
// trimming and within the forge's length limit.
func ValidateListName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return errors.New("name cannot be empty")
	}
	if utf8.RuneCountInString(trimmed) > MaxListNameLen {
		return errors.Errorf("name %q exceeds %d characters", trimmed, MaxListNameLen)
	}

	return nil
}

// ValidateListDescription checks that a list description is within the
// forge's length limit. Empty descriptions are fine.
func ValidateListDescription(description string) error {
	if utf8.RuneCountInString(description) > MaxListDescriptionLen {
		return errors.Errorf("description exceeds %d characters", MaxListDescriptionLen)
	}

	return nil
}
