package backup

import (
	"strings"

	"github.com/pseudomuto/starkeeper/pkg/forge"
	"github.com/pseudomuto/starkeeper/pkg/plan"
)

// PlanRestore computes the operations that converge the live account back
// toward the snapshot. Restore is additive only: it stars repositories that
// lost their star, recreates missing lists, and re-adds missing list
// memberships. It never unstars or deletes. Repositories that disappeared
// upstream still produce operations; the executor surfaces them as failures
// with the forge's not-found message.
func PlanRestore(snapshot *Snapshot, currentStars []forge.Repo, currentLists []forge.List) []plan.Operation {
	var ops []plan.Operation

	starred := make(map[string]forge.Repo, len(currentStars))
	for _, repo := range currentStars {
		starred[strings.ToLower(repo.FullName)] = repo
	}

	for _, repo := range snapshot.Stars {
		if _, ok := starred[strings.ToLower(repo.FullName)]; ok {
			continue
		}
		ops = append(ops, plan.Operation{Kind: plan.OpStar, Repo: repo})
	}

	for _, list := range snapshot.Lists {
		current := findList(currentLists, list.Name)
		if current == nil {
			ops = append(ops, plan.Operation{
				Kind:            plan.OpCreateList,
				ListName:        list.Name,
				ListDescription: list.Description,
			})
		}

		for _, fullName := range list.Repos {
			if current != nil && current.HasRepo(fullName) {
				continue
			}
			ops = append(ops, plan.Operation{
				Kind:     plan.OpAddToList,
				ListName: list.Name,
				Repo:     resolveRepo(snapshot, starred, fullName),
			})
		}
	}

	// Creates must precede adds for the executor to resolve new list IDs.
	ordered := make([]plan.Operation, 0, len(ops))
	for _, op := range ops {
		if op.Kind == plan.OpCreateList {
			ordered = append(ordered, op)
		}
	}
	for _, op := range ops {
		if op.Kind != plan.OpCreateList {
			ordered = append(ordered, op)
		}
	}

	return ordered
}

// resolveRepo recovers a full repository record for a list member, trying
// the snapshot's stars first, then the live stars, and finally parsing the
// owner/name pair (the forge rejects the update if the repo is gone).
func resolveRepo(snapshot *Snapshot, starred map[string]forge.Repo, fullName string) forge.Repo {
	if repo := snapshot.FindRepo(fullName); repo != nil {
		return *repo
	}
	if repo, ok := starred[strings.ToLower(fullName)]; ok {
		return repo
	}

	owner, name, _ := strings.Cut(fullName, "/")
	return forge.Repo{Owner: owner, Name: name, FullName: fullName}
}

func findList(lists []forge.List, name string) *forge.List {
	for i := range lists {
		if strings.EqualFold(lists[i].Name, name) {
			return &lists[i]
		}
	}
	return nil
}
