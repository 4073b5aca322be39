package plan_test

import (
	"strings"
	"testing"

	"github.com/pseudomuto/starkeeper/pkg/forge"
	"github.com/pseudomuto/starkeeper/pkg/organizer"
	. "github.com/pseudomuto/starkeeper/pkg/plan"
	"github.com/stretchr/testify/require"
)

func repo(fullName string) forge.Repo {
	return forge.Repo{ID: "R_" + fullName, FullName: fullName}
}

func sampleResult() *organizer.Result {
	return &organizer.Result{
		Assignments: []organizer.Assignment{
			{Repo: repo("octo/alpha"), Category: "Tools", Action: organizer.ActionAssign},
			{Repo: repo("octo/bravo"), Category: "Tools", Action: organizer.ActionAssign},
			{Repo: repo("octo/charlie"), Action: organizer.ActionKeep},
			{Repo: repo("legacy/old"), Action: organizer.ActionUnstar, Reason: "archived"},
		},
		Unresolved: []string{"octo/mystery"},
	}
}

func sampleCategories() []organizer.Category {
	return []organizer.Category{
		{Name: "Tools", Description: "developer tooling"},
		{Name: "Reading"},
	}
}

func TestNew(t *testing.T) {
	t.Run("builds from organizer result", func(t *testing.T) {
		p := New(sampleCategories(), sampleResult(), nil)

		require.Len(t, p.Assignments, 2)
		require.Len(t, p.Cleanup, 1)
		require.Equal(t, "legacy/old", p.Cleanup[0].Repo.FullName)
		require.Equal(t, []string{"octo/mystery"}, p.Unresolved)
		require.False(t, p.Empty())
	})

	t.Run("collapses already-listed repos", func(t *testing.T) {
		existing := []forge.List{{ID: "UL_1", Name: "tools", Repos: []string{"octo/alpha"}}}

		p := New(sampleCategories(), sampleResult(), existing)
		require.Len(t, p.Assignments, 1)
		require.Equal(t, "octo/bravo", p.Assignments[0].Repo.FullName)
	})
}

func TestCategoryEdits(t *testing.T) {
	t.Run("rename", func(t *testing.T) {
		p := New(sampleCategories(), sampleResult(), nil)

		require.NoError(t, p.RenameCategory("tools", "Go Tooling"))
		require.Nil(t, p.Category("Tools"))
		require.NotNil(t, p.Category("go tooling"))
		require.Len(t, p.Members("Go Tooling"), 2)

		require.Error(t, p.RenameCategory("missing", "X"))
		require.Error(t, p.RenameCategory("Go Tooling", "Reading"))
		require.Error(t, p.RenameCategory("Go Tooling", "  "))
	})

	t.Run("remove reverts members to keep", func(t *testing.T) {
		p := New(sampleCategories(), sampleResult(), nil)

		require.NoError(t, p.RemoveCategory("Tools"))
		require.Nil(t, p.Category("Tools"))
		require.Empty(t, p.Assignments)
		require.Len(t, p.Cleanup, 1, "cleanup candidates are unaffected")

		require.Error(t, p.RemoveCategory("Tools"))
	})

	t.Run("merge", func(t *testing.T) {
		p := New(sampleCategories(), sampleResult(), nil)

		require.NoError(t, p.MergeCategories("Tools", "Reading"))
		require.Nil(t, p.Category("Tools"))
		require.Len(t, p.Members("Reading"), 2)

		require.Error(t, p.MergeCategories("Reading", "Reading"))
		require.Error(t, p.MergeCategories("missing", "Reading"))
	})

	t.Run("add", func(t *testing.T) {
		p := New(sampleCategories(), sampleResult(), nil)

		require.NoError(t, p.AddCategory("Datastores", "databases and caches"))
		require.NotNil(t, p.Category("Datastores"))

		require.Error(t, p.AddCategory("datastores", ""))
		require.Error(t, p.AddCategory("", ""))
		require.Error(t, p.AddCategory(strings.Repeat("x", 40), ""), "forge list name limit")
	})
}

func TestRepoEdits(t *testing.T) {
	t.Run("move between categories", func(t *testing.T) {
		p := New(sampleCategories(), sampleResult(), nil)

		require.NoError(t, p.MoveRepo("octo/alpha", "Reading"))
		require.Len(t, p.Members("Reading"), 1)
		require.Len(t, p.Members("Tools"), 1)
	})

	t.Run("move rescues cleanup candidate", func(t *testing.T) {
		p := New(sampleCategories(), sampleResult(), nil)

		require.NoError(t, p.MoveRepo("legacy/old", "Reading"))
		require.Empty(t, p.Cleanup)
		require.Len(t, p.Members("Reading"), 1)
	})

	t.Run("keep clears cleanup mark", func(t *testing.T) {
		p := New(sampleCategories(), sampleResult(), nil)

		require.NoError(t, p.KeepRepo("legacy/old"))
		require.Empty(t, p.Cleanup)

		require.NoError(t, p.KeepRepo("octo/alpha"))
		require.Len(t, p.Assignments, 1)

		require.Error(t, p.KeepRepo("octo/unknown"))
	})
}

func TestOperations(t *testing.T) {
	t.Run("orders creates before adds before unstars", func(t *testing.T) {
		p := New(sampleCategories(), sampleResult(), nil)

		ops := p.Operations(nil)
		require.Len(t, ops, 4)

		require.Equal(t, OpCreateList, ops[0].Kind)
		require.Equal(t, "Tools", ops[0].ListName)
		require.Equal(t, "developer tooling", ops[0].ListDescription)

		require.Equal(t, OpAddToList, ops[1].Kind)
		require.Equal(t, OpAddToList, ops[2].Kind)

		require.Equal(t, OpUnstar, ops[3].Kind)
		require.Equal(t, "legacy/old", ops[3].Repo.FullName)
	})

	t.Run("skips existing lists and memberships", func(t *testing.T) {
		existing := []forge.List{{ID: "UL_1", Name: "Tools", Repos: []string{"octo/alpha"}}}

		p := New(sampleCategories(), sampleResult(), nil)
		ops := p.Operations(existing)

		// No create (list exists), one add (alpha already on it), one unstar
		require.Len(t, ops, 2)
		require.Equal(t, OpAddToList, ops[0].Kind)
		require.Equal(t, "octo/bravo", ops[0].Repo.FullName)
		require.Equal(t, OpUnstar, ops[1].Kind)
	})

	t.Run("empty categories produce no create", func(t *testing.T) {
		p := New(sampleCategories(), &organizer.Result{}, nil)
		require.Empty(t, p.Operations(nil))
		require.True(t, p.Empty())
	})
}

func TestOperationString(t *testing.T) {
	require.Equal(t, "create list Tools", Operation{Kind: OpCreateList, ListName: "Tools"}.String())
	require.Equal(t, "add octo/alpha to Tools", Operation{Kind: OpAddToList, ListName: "Tools", Repo: repo("octo/alpha")}.String())
	require.Equal(t, "unstar octo/alpha", Operation{Kind: OpUnstar, Repo: repo("octo/alpha")}.String())
	require.Equal(t, "star octo/alpha", Operation{Kind: OpStar, Repo: repo("octo/alpha")}.String())
}
