package backup_test

import (
	"testing"

	. "github.com/pseudomuto/starkeeper/pkg/backup"
	"github.com/pseudomuto/starkeeper/pkg/forge"
	"github.com/pseudomuto/starkeeper/pkg/plan"
	"github.com/stretchr/testify/require"
)

func TestPlanRestore(t *testing.T) {
	snapshot := &Snapshot{
		Version: "20250101120000",
		Login:   "octocat",
		Stars: []forge.Repo{
			{ID: "R_1", Owner: "octo", Name: "alpha", FullName: "octo/alpha"},
			{ID: "R_2", Owner: "octo", Name: "bravo", FullName: "octo/bravo"},
		},
		Lists: []forge.List{
			{ID: "UL_1", Name: "Tools", Description: "tooling", Repos: []string{"octo/alpha", "octo/bravo"}},
		},
	}

	t.Run("no-op when nothing changed", func(t *testing.T) {
		ops := PlanRestore(snapshot, snapshot.Stars, snapshot.Lists)
		require.Empty(t, ops)
	})

	t.Run("restars missing stars", func(t *testing.T) {
		current := []forge.Repo{snapshot.Stars[0]}

		ops := PlanRestore(snapshot, current, snapshot.Lists)
		require.Len(t, ops, 1)
		require.Equal(t, plan.OpStar, ops[0].Kind)
		require.Equal(t, "octo/bravo", ops[0].Repo.FullName)
	})

	t.Run("recreates missing lists with memberships", func(t *testing.T) {
		ops := PlanRestore(snapshot, snapshot.Stars, nil)
		require.Len(t, ops, 3)

		require.Equal(t, plan.OpCreateList, ops[0].Kind)
		require.Equal(t, "Tools", ops[0].ListName)
		require.Equal(t, "tooling", ops[0].ListDescription)

		require.Equal(t, plan.OpAddToList, ops[1].Kind)
		require.Equal(t, "octo/alpha", ops[1].Repo.FullName)
		require.Equal(t, plan.OpAddToList, ops[2].Kind)
	})

	t.Run("re-adds missing memberships only", func(t *testing.T) {
		current := []forge.List{{ID: "UL_1", Name: "tools", Repos: []string{"octo/alpha"}}}

		ops := PlanRestore(snapshot, snapshot.Stars, current)
		require.Len(t, ops, 1)
		require.Equal(t, plan.OpAddToList, ops[0].Kind)
		require.Equal(t, "octo/bravo", ops[0].Repo.FullName)
		require.Equal(t, "R_2", ops[0].Repo.ID, "repo resolved from snapshot stars")
	})

	t.Run("never unstars or deletes", func(t *testing.T) {
		extraStars := append([]forge.Repo{{ID: "R_9", FullName: "new/thing"}}, snapshot.Stars...)
		extraLists := append([]forge.List{{ID: "UL_9", Name: "New"}}, snapshot.Lists...)

		ops := PlanRestore(snapshot, extraStars, extraLists)
		require.Empty(t, ops)
	})

	t.Run("falls back to parsed owner and name for unknown members", func(t *testing.T) {
		orphaned := &Snapshot{
			Lists: []forge.List{{Name: "Tools", Repos: []string{"gone/away"}}},
		}

		ops := PlanRestore(orphaned, nil, nil)
		require.Len(t, ops, 2)
		require.Equal(t, plan.OpAddToList, ops[1].Kind)
		require.Equal(t, "gone", ops[1].Repo.Owner)
		require.Equal(t, "away", ops[1].Repo.Name)
		require.Empty(t, ops[1].Repo.ID)
	})
}
