package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/starkeeper/pkg/backup"
	"github.com/pseudomuto/starkeeper/pkg/config"
	"github.com/pseudomuto/starkeeper/pkg/executor"
	"github.com/pseudomuto/starkeeper/pkg/format"
	"github.com/pseudomuto/starkeeper/pkg/organizer"
	"github.com/pseudomuto/starkeeper/pkg/plan"
	"github.com/pseudomuto/starkeeper/pkg/term"
	"github.com/pseudomuto/starkeeper/pkg/utils"
	"github.com/urfave/cli/v3"
)

// organize creates the organize command: the interactive wizard that fetches
// the starred set, asks the model for categories and cleanup candidates,
// walks the user through review, and applies the approved plan.
//
// Example usage:
//
//	# Full interactive run
//	starkeeper organize
//
//	# See what would happen without touching the forge
//	starkeeper organize --dry-run
//
//	# Non-interactive, accepting the model's plan as-is
//	starkeeper organize --yes
func organize(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:   "organize",
		Usage:  "Categorize starred repositories with LLM assistance",
		Before: requireConfig(cfg),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Show the plan without applying it",
			},
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Skip all review prompts and apply the model's plan",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Only organize the first N starred repositories",
			},
			&cli.StringFlag{
				Name:  "provider",
				Usage: "Override the configured LLM provider",
			},
			&cli.StringFlag{
				Name:  "model",
				Usage: "Override the configured LLM model",
			},
			&cli.BoolFlag{
				Name:  "no-backup",
				Usage: "Skip the automatic backup before applying changes",
			},
			&cli.BoolFlag{
				Name:  "no-cleanup",
				Usage: "Ignore the model's unstar suggestions",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runOrganize(ctx, cmd, cfg)
		},
	}
}

func runOrganize(ctx context.Context, cmd *cli.Command, cfg *config.Config) error {
	w := cmd.Writer
	prompter := term.NewPrompter(os.Stdin, w)
	spin := term.NewSpinner(w)
	fmtr := newFormatter()

	token, err := resolveToken(prompter)
	if err != nil {
		return err
	}
	client := forgeClient(cfg, token)

	llmc, model, err := llmClient(cfg, cmd.String("provider"), cmd.String("model"))
	if err != nil {
		return err
	}

	slog.Debug("Starting organize run",
		"model", model,
		"dry_run", cmd.Bool("dry-run"),
	)

	state, err := fetchAccount(ctx, client, spin, int(cmd.Int("limit")))
	if err != nil {
		return err
	}
	if len(state.stars) == 0 {
		fmt.Fprintln(w, "No starred repositories found.")
		return nil
	}
	fmt.Fprintf(w, "Found %d starred repositories for %s\n", len(state.stars), state.login)

	dryRun := cmd.Bool("dry-run")
	if !cmd.Bool("no-backup") && !dryRun {
		store := backupStore(cfg)
		snapshot := backup.NewSnapshot(state.login, "before organize", state.stars, state.lists)
		if err := store.Create(snapshot); err != nil {
			return errors.Wrap(err, "failed to create backup")
		}
		fmt.Fprintf(w, "Backup %s created\n", snapshot.Version)
	}

	org := organizer.New(llmc, organizer.Options{
		Model:         model,
		MaxCategories: cfg.LLM.MaxCategories,
		BatchSize:     cfg.LLM.BatchSize,
		Attempts:      cfg.LLM.Attempts,
	})

	spin.Start("Proposing categories")
	proposal, err := org.ProposeCategories(ctx, state.stars)
	spin.Stop()
	if err != nil {
		return err
	}

	categories := proposal.Categories
	assumeYes := cmd.Bool("yes")
	if !assumeYes {
		categories, err = reviewCategories(prompter, w, categories)
		if err != nil {
			return err
		}
	}
	if len(categories) == 0 {
		return errors.New("no categories approved")
	}

	spin.Start("Classifying repositories")
	result, err := org.ClassifyRepos(ctx, state.stars, categories)
	spin.Stop()
	if err != nil {
		return err
	}

	pln := plan.New(categories, result, state.lists)

	switch {
	case cmd.Bool("no-cleanup"):
		for _, candidate := range append([]plan.Candidate(nil), pln.Cleanup...) {
			_ = pln.KeepRepo(candidate.Repo.FullName)
		}
	case !assumeYes:
		if err := reviewCleanup(prompter, w, fmtr, pln); err != nil {
			return err
		}
	}

	fmt.Fprint(w, "\n"+fmtr.Proposal(pln))

	ops := pln.Operations(state.lists)
	if len(ops) == 0 {
		fmt.Fprintln(w, "Nothing to do - everything is already organized.")
		return nil
	}

	fmt.Fprint(w, "\n"+fmtr.Operations(ops))

	if dryRun {
		fmt.Fprintln(w, "\nDry run - no changes applied.")
		return nil
	}

	if !assumeYes {
		ok, err := prompter.Confirm("Apply these operations?", false)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(w, "Aborted.")
			return nil
		}
	}

	exec := executor.New(executor.Config{
		Forge:       client,
		Existing:    state.lists,
		Concurrency: cfg.Executor.Concurrency,
	})

	results := exec.Execute(ctx, ops)
	report := executor.Summarize(results)
	fmt.Fprint(w, "\n"+fmtr.Report(report))

	if report.Failed > 0 {
		return errors.Errorf("%d of %d operations failed", report.Failed, report.Total)
	}

	return nil
}

// reviewCategories lets the user adjust the proposed category set before
// classification. It loops until the user is done.
func reviewCategories(prompter *term.Prompter, w io.Writer, categories []organizer.Category) ([]organizer.Category, error) {
	for {
		fmt.Fprintln(w, "\nProposed categories:")
		for i, cat := range categories {
			if cat.Description != "" {
				fmt.Fprintf(w, "  %d. %s - %s\n", i+1, cat.Name, cat.Description)
			} else {
				fmt.Fprintf(w, "  %d. %s\n", i+1, cat.Name)
			}
		}

		answer, err := prompter.Input("Edit categories (add/rename/remove/done)", "done")
		if err != nil {
			return nil, err
		}

		switch strings.ToLower(answer) {
		case "done", "":
			return categories, nil

		case "add":
			name, desc, err := promptCategory(prompter, w, "")
			if err != nil {
				return nil, err
			}
			if name == "" {
				continue
			}
			if hasCategory(categories, name) {
				fmt.Fprintf(w, "Category %q already exists.\n", name)
				continue
			}
			categories = append(categories, organizer.Category{Name: name, Description: desc})

		case "rename":
			idx, err := promptCategoryNumber(prompter, w, len(categories))
			if err != nil {
				return nil, err
			}
			if idx == 0 {
				continue
			}
			name, err := prompter.Input("New name", categories[idx-1].Name)
			if err != nil {
				return nil, err
			}
			if verr := utils.ValidateListName(name); verr != nil {
				fmt.Fprintln(w, verr.Error())
				continue
			}
			name = strings.TrimSpace(name)
			if !strings.EqualFold(categories[idx-1].Name, name) && hasCategory(categories, name) {
				fmt.Fprintf(w, "Category %q already exists.\n", name)
				continue
			}
			categories[idx-1].Name = name

		case "remove":
			idx, err := promptCategoryNumber(prompter, w, len(categories))
			if err != nil {
				return nil, err
			}
			if idx == 0 {
				continue
			}
			categories = append(categories[:idx-1], categories[idx:]...)

		default:
			fmt.Fprintln(w, "Please answer add, rename, remove, or done.")
		}
	}
}

// reviewCleanup shows the unstar candidates and prunes the plan down to the
// user's selection. Unselected candidates stay starred.
func reviewCleanup(prompter *term.Prompter, w io.Writer, fmtr *format.Formatter, pln *plan.Plan) error {
	if len(pln.Cleanup) == 0 {
		return nil
	}

	fmt.Fprint(w, "\n"+fmtr.Cleanup(pln.Cleanup))

	sel, err := prompter.SelectIndexes("Unstar which candidates?", len(pln.Cleanup))
	if err != nil {
		return err
	}
	if sel.All {
		return nil
	}

	selected := make(map[int]bool, len(sel.Indexes))
	for _, idx := range sel.Indexes {
		selected[idx] = true
	}

	var kept []string
	for i, candidate := range pln.Cleanup {
		if sel.None || !selected[i+1] {
			kept = append(kept, candidate.Repo.FullName)
		}
	}
	for _, fullName := range kept {
		if err := pln.KeepRepo(fullName); err != nil {
			return err
		}
	}

	return nil
}

func hasCategory(categories []organizer.Category, name string) bool {
	for _, cat := range categories {
		if strings.EqualFold(cat.Name, name) {
			return true
		}
	}

	return false
}

func promptCategory(prompter *term.Prompter, w io.Writer, defName string) (string, string, error) {
	name, err := prompter.Input("Name", defName)
	if err != nil {
		return "", "", err
	}
	if verr := utils.ValidateListName(name); verr != nil {
		fmt.Fprintln(w, verr.Error())
		return "", "", nil
	}

	desc, err := prompter.Input("Description", "")
	if err != nil {
		return "", "", err
	}
	if verr := utils.ValidateListDescription(desc); verr != nil {
		fmt.Fprintln(w, verr.Error())
		desc = ""
	}

	return strings.TrimSpace(name), strings.TrimSpace(desc), nil
}

func promptCategoryNumber(prompter *term.Prompter, w io.Writer, max int) (int, error) {
	answer, err := prompter.Input("Category number", "")
	if err != nil {
		return 0, err
	}

	idx, err := strconv.Atoi(strings.TrimSpace(answer))
	if err != nil || idx < 1 || idx > max {
		fmt.Fprintf(w, "Please enter a number between 1 and %d.\n", max)
		return 0, nil
	}

	return idx, nil
}
