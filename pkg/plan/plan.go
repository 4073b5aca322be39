package plan

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/starkeeper/pkg/forge"
	"github.com/pseudomuto/starkeeper/pkg/organizer"
	"github.com/pseudomuto/starkeeper/pkg/utils"
)

type (
	// Assignment places one repository into one category.
	Assignment struct {
		// Repo is the repository to file
		Repo forge.Repo

		// Category is the target category name
		Category string

		// Reason is the model's short justification (may be empty)
		Reason string
	}

	// Candidate is a repository the model flagged for unstarring.
	Candidate struct {
		// Repo is the cleanup candidate
		Repo forge.Repo

		// Reason is the model's short justification (may be empty)
		Reason string
	}

	// Plan is the reviewed unit of work: what to create, what to file
	// where, and what to unstar.
	Plan struct {
		// Categories are the approved category definitions, in proposal order
		Categories []organizer.Category

		// Assignments are the pending repository filings
		Assignments []Assignment

		// Cleanup are the pending unstar candidates
		Cleanup []Candidate

		// Unresolved lists repositories the pipeline could not classify;
		// they are shown to the user and left untouched
		Unresolved []string
	}
)

// New builds a plan from the organizer's stage outputs and the lists that
// already exist on the forge. Assignments whose repository is already on the
// matching list collapse to keep (they produce no work), and keep verdicts
// are dropped entirely.
func New(categories []organizer.Category, result *organizer.Result, existing []forge.List) *Plan {
	p := &Plan{
		Categories: append([]organizer.Category(nil), categories...),
		Unresolved: append([]string(nil), result.Unresolved...),
	}

	for _, a := range result.Assignments {
		switch a.Action {
		case organizer.ActionAssign:
			if list := findList(existing, a.Category); list != nil && list.HasRepo(a.Repo.FullName) {
				continue
			}
			p.Assignments = append(p.Assignments, Assignment{Repo: a.Repo, Category: a.Category, Reason: a.Reason})
		case organizer.ActionUnstar:
			p.Cleanup = append(p.Cleanup, Candidate{Repo: a.Repo, Reason: a.Reason})
		}
	}

	return p
}

// Category returns the category with the given name (case-insensitive), or
// nil when the plan has no such category.
func (p *Plan) Category(name string) *organizer.Category {
	for i := range p.Categories {
		if strings.EqualFold(p.Categories[i].Name, name) {
			return &p.Categories[i]
		}
	}
	return nil
}

// Members returns the assignments filed under the named category.
func (p *Plan) Members(category string) []Assignment {
	var members []Assignment
	for _, a := range p.Assignments {
		if strings.EqualFold(a.Category, category) {
			members = append(members, a)
		}
	}
	return members
}

// AddCategory appends a user-defined category. The name must be valid as a
// forge list name and unique within the plan.
func (p *Plan) AddCategory(name, description string) error {
	name = strings.TrimSpace(name)
	if err := utils.ValidateListName(name); err != nil {
		return err
	}
	if err := utils.ValidateListDescription(description); err != nil {
		return err
	}
	if p.Category(name) != nil {
		return errors.Errorf("category %q already exists", name)
	}

	p.Categories = append(p.Categories, organizer.Category{Name: name, Description: description})
	return nil
}

// RenameCategory renames a category and rewrites its assignments. The new
// name must not collide with another category.
func (p *Plan) RenameCategory(from, to string) error {
	to = strings.TrimSpace(to)
	if err := utils.ValidateListName(to); err != nil {
		return err
	}

	cat := p.Category(from)
	if cat == nil {
		return errors.Errorf("no category named %q", from)
	}
	if other := p.Category(to); other != nil && other != cat {
		return errors.Errorf("category %q already exists", to)
	}

	for i := range p.Assignments {
		if strings.EqualFold(p.Assignments[i].Category, cat.Name) {
			p.Assignments[i].Category = to
		}
	}
	cat.Name = to

	return nil
}

// RemoveCategory drops a category; its members revert to keep (they simply
// fall out of the plan).
func (p *Plan) RemoveCategory(name string) error {
	cat := p.Category(name)
	if cat == nil {
		return errors.Errorf("no category named %q", name)
	}

	kept := p.Assignments[:0]
	for _, a := range p.Assignments {
		if !strings.EqualFold(a.Category, cat.Name) {
			kept = append(kept, a)
		}
	}
	p.Assignments = kept

	for i := range p.Categories {
		if strings.EqualFold(p.Categories[i].Name, cat.Name) {
			p.Categories = append(p.Categories[:i], p.Categories[i+1:]...)
			break
		}
	}

	return nil
}

// MergeCategories moves every assignment from src into dst and removes src.
func (p *Plan) MergeCategories(src, dst string) error {
	srcCat := p.Category(src)
	if srcCat == nil {
		return errors.Errorf("no category named %q", src)
	}
	dstCat := p.Category(dst)
	if dstCat == nil {
		return errors.Errorf("no category named %q", dst)
	}
	if srcCat == dstCat {
		return errors.New("cannot merge a category into itself")
	}

	for i := range p.Assignments {
		if strings.EqualFold(p.Assignments[i].Category, srcCat.Name) {
			p.Assignments[i].Category = dstCat.Name
		}
	}

	return p.RemoveCategory(srcCat.Name)
}

// MoveRepo files the repository under a different category. The repository
// may currently be assigned elsewhere or sitting on the cleanup pile; either
// way it ends up assigned to the target category.
func (p *Plan) MoveRepo(fullName, category string) error {
	cat := p.Category(category)
	if cat == nil {
		return errors.Errorf("no category named %q", category)
	}

	for i := range p.Assignments {
		if strings.EqualFold(p.Assignments[i].Repo.FullName, fullName) {
			p.Assignments[i].Category = cat.Name
			return nil
		}
	}

	for i, c := range p.Cleanup {
		if strings.EqualFold(c.Repo.FullName, fullName) {
			p.Cleanup = append(p.Cleanup[:i], p.Cleanup[i+1:]...)
			p.Assignments = append(p.Assignments, Assignment{Repo: c.Repo, Category: cat.Name})
			return nil
		}
	}

	return errors.Errorf("no repository named %q in the plan", fullName)
}

// KeepRepo removes the repository from the plan entirely: it stays starred
// and unfiled. Used to unmark cleanup candidates and to pull repositories
// out of categories.
func (p *Plan) KeepRepo(fullName string) error {
	for i, a := range p.Assignments {
		if strings.EqualFold(a.Repo.FullName, fullName) {
			p.Assignments = append(p.Assignments[:i], p.Assignments[i+1:]...)
			return nil
		}
	}

	for i, c := range p.Cleanup {
		if strings.EqualFold(c.Repo.FullName, fullName) {
			p.Cleanup = append(p.Cleanup[:i], p.Cleanup[i+1:]...)
			return nil
		}
	}

	return errors.Errorf("no repository named %q in the plan", fullName)
}

// Empty reports whether the plan contains no work.
func (p *Plan) Empty() bool {
	return len(p.Assignments) == 0 && len(p.Cleanup) == 0
}

func findList(lists []forge.List, name string) *forge.List {
	for i := range lists {
		if strings.EqualFold(lists[i].Name, name) {
			return &lists[i]
		}
	}
	return nil
}
