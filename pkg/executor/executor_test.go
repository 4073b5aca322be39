package executor_test

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/pseudomuto/starkeeper/pkg/executor"
	"github.com/pseudomuto/starkeeper/pkg/forge"
	"github.com/pseudomuto/starkeeper/pkg/plan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeForge struct {
	mu      sync.Mutex
	creates []string
	updates map[string][]string
	unstars []string
	stars   []string

	createErr func(name string) error
	updateErr func(repoID string) error
	unstarErr func(owner, name string) error
}

func newFakeForge() *fakeForge {
	return &fakeForge{updates: make(map[string][]string)}
}

func (f *fakeForge) CreateList(_ context.Context, name, _ string) (*forge.List, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		if err := f.createErr(name); err != nil {
			return nil, err
		}
	}

	f.creates = append(f.creates, name)
	return &forge.List{ID: "UL_" + name, Name: name}, nil
}

func (f *fakeForge) UpdateRepoLists(_ context.Context, repoID string, listIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.updateErr != nil {
		if err := f.updateErr(repoID); err != nil {
			return err
		}
	}

	f.updates[repoID] = append([]string(nil), listIDs...)
	return nil
}

func (f *fakeForge) Unstar(_ context.Context, owner, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.unstarErr != nil {
		if err := f.unstarErr(owner, name); err != nil {
			return err
		}
	}

	f.unstars = append(f.unstars, owner+"/"+name)
	return nil
}

func (f *fakeForge) Star(_ context.Context, owner, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.stars = append(f.stars, owner+"/"+name)
	return nil
}

func repo(owner, name string) forge.Repo {
	return forge.Repo{ID: "R_" + owner + "_" + name, Owner: owner, Name: name, FullName: owner + "/" + name}
}

func TestExecutor_Execute(t *testing.T) {
	t.Run("applies creates then adds then unstars", func(t *testing.T) {
		fake := newFakeForge()
		exec := executor.New(executor.Config{Forge: fake, Concurrency: 2})

		ops := []plan.Operation{
			{Kind: plan.OpCreateList, ListName: "Tools", ListDescription: "developer tooling"},
			{Kind: plan.OpAddToList, ListName: "Tools", Repo: repo("octo", "alpha")},
			{Kind: plan.OpAddToList, ListName: "Tools", Repo: repo("octo", "bravo")},
			{Kind: plan.OpUnstar, Repo: repo("legacy", "old")},
		}

		results := exec.Execute(context.Background(), ops)
		require.Len(t, results, len(ops))
		for i, result := range results {
			assert.Equal(t, executor.StatusSuccess, result.Status, "result %d", i)
			assert.Equal(t, ops[i], result.Operation, "result %d", i)
		}

		require.Equal(t, []string{"Tools"}, fake.creates)
		require.Equal(t, []string{"UL_Tools"}, fake.updates["R_octo_alpha"])
		require.Equal(t, []string{"UL_Tools"}, fake.updates["R_octo_bravo"])
		require.Equal(t, []string{"legacy/old"}, fake.unstars)
	})

	t.Run("coalesces adds per repo and preserves current membership", func(t *testing.T) {
		fake := newFakeForge()
		exec := executor.New(executor.Config{
			Forge: fake,
			Existing: []forge.List{
				{ID: "UL_Reading", Name: "Reading", Repos: []string{"octo/alpha"}},
			},
		})

		ops := []plan.Operation{
			{Kind: plan.OpCreateList, ListName: "Tools"},
			{Kind: plan.OpCreateList, ListName: "Infra"},
			{Kind: plan.OpAddToList, ListName: "Tools", Repo: repo("octo", "alpha")},
			{Kind: plan.OpAddToList, ListName: "Infra", Repo: repo("octo", "alpha")},
		}

		results := exec.Execute(context.Background(), ops)
		require.Len(t, results, len(ops))
		for _, result := range results {
			require.Equal(t, executor.StatusSuccess, result.Status)
		}

		// One update per repo carrying the union of old and new lists.
		require.Len(t, fake.updates, 1)
		got := fake.updates["R_octo_alpha"]
		sort.Strings(got)
		require.Equal(t, []string{"UL_Infra", "UL_Reading", "UL_Tools"}, got)
	})

	t.Run("resolves existing lists without creating them", func(t *testing.T) {
		fake := newFakeForge()
		exec := executor.New(executor.Config{
			Forge:    fake,
			Existing: []forge.List{{ID: "UL_1", Name: "Tools"}},
		})

		ops := []plan.Operation{
			{Kind: plan.OpAddToList, ListName: "tools", Repo: repo("octo", "alpha")},
		}

		results := exec.Execute(context.Background(), ops)
		require.Equal(t, executor.StatusSuccess, results[0].Status)
		require.Empty(t, fake.creates)
		require.Equal(t, []string{"UL_1"}, fake.updates["R_octo_alpha"])
	})

	t.Run("failed create fails dependent adds", func(t *testing.T) {
		fake := newFakeForge()
		fake.createErr = func(name string) error {
			if name == "Tools" {
				return errors.New("boom")
			}
			return nil
		}

		exec := executor.New(executor.Config{Forge: fake})
		ops := []plan.Operation{
			{Kind: plan.OpCreateList, ListName: "Tools"},
			{Kind: plan.OpCreateList, ListName: "Infra"},
			{Kind: plan.OpAddToList, ListName: "Tools", Repo: repo("octo", "alpha")},
			{Kind: plan.OpAddToList, ListName: "Infra", Repo: repo("octo", "bravo")},
		}

		results := exec.Execute(context.Background(), ops)
		require.Equal(t, executor.StatusFailed, results[0].Status)
		require.Equal(t, executor.StatusSuccess, results[1].Status)
		require.Equal(t, executor.StatusFailed, results[2].Status)
		require.ErrorContains(t, results[2].Error, `list "Tools" does not exist`)
		require.Equal(t, executor.StatusSuccess, results[3].Status)
	})

	t.Run("failures do not abort the batch", func(t *testing.T) {
		fake := newFakeForge()
		fake.unstarErr = func(owner, _ string) error {
			if owner == "bad" {
				return errors.New("rate limited")
			}
			return nil
		}

		exec := executor.New(executor.Config{Forge: fake, Concurrency: 4})
		ops := []plan.Operation{
			{Kind: plan.OpUnstar, Repo: repo("bad", "one")},
			{Kind: plan.OpUnstar, Repo: repo("octo", "two")},
			{Kind: plan.OpUnstar, Repo: repo("octo", "three")},
		}

		results := exec.Execute(context.Background(), ops)
		require.Equal(t, executor.StatusFailed, results[0].Status)
		require.ErrorContains(t, results[0].Error, "failed to unstar bad/one")
		require.Equal(t, executor.StatusSuccess, results[1].Status)
		require.Equal(t, executor.StatusSuccess, results[2].Status)
	})

	t.Run("unstar of a missing star is skipped", func(t *testing.T) {
		fake := newFakeForge()
		fake.unstarErr = func(_, _ string) error {
			return &forge.APIError{StatusCode: http.StatusNotFound, Message: "Not Found"}
		}

		exec := executor.New(executor.Config{Forge: fake})
		results := exec.Execute(context.Background(), []plan.Operation{
			{Kind: plan.OpUnstar, Repo: repo("octo", "gone")},
		})

		require.Equal(t, executor.StatusSkipped, results[0].Status)
		require.NoError(t, results[0].Error)
	})

	t.Run("canceled context skips remaining work", func(t *testing.T) {
		fake := newFakeForge()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		exec := executor.New(executor.Config{Forge: fake})
		results := exec.Execute(ctx, []plan.Operation{
			{Kind: plan.OpCreateList, ListName: "Tools"},
			{Kind: plan.OpUnstar, Repo: repo("octo", "alpha")},
		})

		require.Len(t, results, 2)
		require.Equal(t, executor.StatusSkipped, results[0].Status)
		require.Equal(t, executor.StatusSkipped, results[1].Status)
		require.Empty(t, fake.creates)
		require.Empty(t, fake.unstars)
	})

	t.Run("star operations for restore", func(t *testing.T) {
		fake := newFakeForge()
		exec := executor.New(executor.Config{Forge: fake})

		results := exec.Execute(context.Background(), []plan.Operation{
			{Kind: plan.OpStar, Repo: repo("octo", "alpha")},
		})

		require.Equal(t, executor.StatusSuccess, results[0].Status)
		require.Equal(t, []string{"octo/alpha"}, fake.stars)
	})
}

func TestSummarize(t *testing.T) {
	results := []*executor.ExecutionResult{
		{Status: executor.StatusSuccess},
		{Status: executor.StatusSuccess},
		{Status: executor.StatusSkipped},
		{Status: executor.StatusFailed, Error: errors.New("rate limited")},
		{Status: executor.StatusFailed, Error: errors.New("rate limited")},
		{Status: executor.StatusFailed, Error: errors.New("boom")},
	}

	report := executor.Summarize(results)
	assert.Equal(t, 6, report.Total)
	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 3, report.Failed)
	assert.Equal(t, []string{"boom", "rate limited"}, report.Errors)
}

func TestSummarize_CapsDistinctErrors(t *testing.T) {
	var results []*executor.ExecutionResult
	for _, msg := range []string{"e1", "e2", "e3", "e4", "e5", "e6", "e7"} {
		results = append(results, &executor.ExecutionResult{
			Status: executor.StatusFailed,
			Error:  errors.New(msg),
		})
	}

	report := executor.Summarize(results)
	assert.Equal(t, 7, report.Failed)
	assert.Len(t, report.Errors, 5)
}
