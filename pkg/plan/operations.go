package plan

import (
	"github.com/pseudomuto/starkeeper/pkg/forge"
)

type (
	// OpKind identifies a remote mutation.
	OpKind string

	// Operation is one remote side-effecting mutation to apply. Operations
	// are independent of each other except that CreateList must run before
	// the AddToList operations naming the same list.
	Operation struct {
		// Kind identifies the mutation
		Kind OpKind

		// ListName is the target list for CreateList and AddToList
		ListName string

		// ListDescription is the list description for CreateList
		ListDescription string

		// Repo is the subject for AddToList, Unstar and Star
		Repo forge.Repo
	}
)

const (
	// OpCreateList creates a list on the forge
	OpCreateList OpKind = "create_list"

	// OpAddToList adds a repository to a list
	OpAddToList OpKind = "add_to_list"

	// OpUnstar removes the user's star from a repository
	OpUnstar OpKind = "unstar"

	// OpStar restores the user's star on a repository (restore path only)
	OpStar OpKind = "star"
)

// String returns the human-readable form shown in dry-run listings.
func (o Operation) String() string {
	switch o.Kind {
	case OpCreateList:
		return "create list " + o.ListName
	case OpAddToList:
		return "add " + o.Repo.FullName + " to " + o.ListName
	case OpUnstar:
		return "unstar " + o.Repo.FullName
	case OpStar:
		return "star " + o.Repo.FullName
	default:
		return string(o.Kind)
	}
}

// Operations flattens the approved plan into an ordered mutation list:
// CreateList for every non-empty category without an existing forge list,
// then AddToList for every assignment not already on its list, then Unstar
// for every cleanup candidate. Empty categories produce no CreateList.
func (p *Plan) Operations(existing []forge.List) []Operation {
	var ops []Operation

	for _, cat := range p.Categories {
		if len(p.Members(cat.Name)) == 0 {
			continue
		}
		if findList(existing, cat.Name) != nil {
			continue
		}

		ops = append(ops, Operation{
			Kind:            OpCreateList,
			ListName:        cat.Name,
			ListDescription: cat.Description,
		})
	}

	for _, a := range p.Assignments {
		if list := findList(existing, a.Category); list != nil && list.HasRepo(a.Repo.FullName) {
			continue
		}

		ops = append(ops, Operation{
			Kind:     OpAddToList,
			ListName: a.Category,
			Repo:     a.Repo,
		})
	}

	for _, c := range p.Cleanup {
		ops = append(ops, Operation{Kind: OpUnstar, Repo: c.Repo})
	}

	return ops
}
