package organizer_test

import (
	"testing"

	. "github.com/pseudomuto/starkeeper/pkg/organizer"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	t.Run("bare array", func(t *testing.T) {
		out, err := ExtractJSON(`[{"repo": 1}]`)
		require.NoError(t, err)
		require.Equal(t, `[{"repo": 1}]`, out)
	})

	t.Run("object wrapped in prose", func(t *testing.T) {
		out, err := ExtractJSON("Sure! Here you go:\n\n{\"categories\": []}\n\nLet me know.")
		require.NoError(t, err)
		require.Equal(t, `{"categories": []}`, out)
	})

	t.Run("markdown fence", func(t *testing.T) {
		out, err := ExtractJSON("```json\n[{\"repo\": 2, \"action\": \"keep\"}]\n```")
		require.NoError(t, err)
		require.Equal(t, `[{"repo": 2, "action": "keep"}]`, out)
	})

	t.Run("brackets inside strings are ignored", func(t *testing.T) {
		out, err := ExtractJSON(`{"reason": "uses [unusual] {braces} and \"quotes\""}`)
		require.NoError(t, err)
		require.Equal(t, `{"reason": "uses [unusual] {braces} and \"quotes\""}`, out)
	})

	t.Run("skips invalid candidates", func(t *testing.T) {
		out, err := ExtractJSON(`{broken} then ["ok"]`)
		require.NoError(t, err)
		require.Equal(t, `["ok"]`, out)
	})

	t.Run("no json", func(t *testing.T) {
		_, err := ExtractJSON("I could not produce a classification.")
		require.Error(t, err)
		require.Contains(t, err.Error(), "no JSON array or object")
	})

	t.Run("unbalanced", func(t *testing.T) {
		_, err := ExtractJSON(`[{"repo": 1}`)
		require.Error(t, err)
	})
}
