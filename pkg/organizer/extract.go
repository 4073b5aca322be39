package organizer

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// ExtractJSON returns the first well-formed JSON array or object substring
// in text. Models frequently wrap their JSON in prose or markdown fences;
// this scans for an opener, matches brackets with string/escape awareness,
// and validates the candidate before returning it.
func ExtractJSON(text string) (string, error) {
	for i := 0; i < len(text); i++ {
		if text[i] != '{' && text[i] != '[' {
			continue
		}

		end := matchBalanced(text, i)
		if end < 0 {
			continue
		}

		candidate := text[i:end]
		if json.Valid([]byte(candidate)) {
			return candidate, nil
		}
	}

	return "", errors.New("no JSON array or object found in response")
}

// matchBalanced returns the index just past the bracket that balances the
// opener at start, or -1 when the text ends before balance is reached.
// Brackets inside JSON strings are ignored.
func matchBalanced(text string, start int) int {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}

	return -1
}
