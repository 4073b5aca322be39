package executor

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/pseudomuto/starkeeper/pkg/consts"
	"github.com/pseudomuto/starkeeper/pkg/forge"
	"github.com/pseudomuto/starkeeper/pkg/plan"
	"golang.org/x/sync/errgroup"
)

type (
	// ForgeAPI defines the forge mutations required by the executor.
	ForgeAPI interface {
		CreateList(ctx context.Context, name, description string) (*forge.List, error)
		UpdateRepoLists(ctx context.Context, repoID string, listIDs []string) error
		Unstar(ctx context.Context, owner, name string) error
		Star(ctx context.Context, owner, name string) error
	}

	// Executor applies plan operations against the forge with bounded
	// parallelism.
	//
	// Example usage:
	//
	//	exec := executor.New(executor.Config{
	//		Forge:    client,
	//		Existing: lists,
	//	})
	//
	//	results := exec.Execute(ctx, plan.Operations(lists))
	//	for _, result := range results {
	//		fmt.Printf("%s: %s\n", result.Operation, result.Status)
	//	}
	Executor struct {
		forge       ForgeAPI
		existing    []forge.List
		concurrency int
	}

	// Config contains configuration options for creating a new Executor.
	Config struct {
		// Forge client for remote mutations
		Forge ForgeAPI

		// Existing lists on the forge, used to resolve list names to IDs
		// and to compute current membership for full-replacement updates
		Existing []forge.List

		// Concurrency is the batch size for parallel operations
		// (default consts.DefaultConcurrency)
		Concurrency int
	}

	// ExecutionResult contains the result of executing a single operation.
	ExecutionResult struct {
		// Operation is the operation that was executed
		Operation plan.Operation

		// Status indicates the outcome of the operation
		Status ExecutionStatus

		// Error contains any error that occurred during execution
		Error error

		// Duration records how long the operation took to execute
		Duration time.Duration
	}

	// ExecutionStatus represents the outcome of an operation.
	ExecutionStatus string

	// Report aggregates execution results for display.
	Report struct {
		// Total is the number of operations executed
		Total int

		// Succeeded is the number of successful operations
		Succeeded int

		// Failed is the number of failed operations
		Failed int

		// Skipped is the number of skipped operations
		Skipped int

		// Errors holds up to maxReportErrors distinct failure reasons
		Errors []string
	}

	// task is a unit of concurrent work covering one or more operations.
	// Additions for the same repository share a task because the forge
	// replaces the repository's full membership on update.
	task struct {
		indexes []int
		run     func(context.Context) (ExecutionStatus, error)
	}
)

const (
	// StatusSuccess indicates the operation was applied successfully
	StatusSuccess ExecutionStatus = "success"

	// StatusFailed indicates the operation failed
	StatusFailed ExecutionStatus = "failed"

	// StatusSkipped indicates the operation required no work (e.g. the
	// star was already removed) or was never attempted
	StatusSkipped ExecutionStatus = "skipped"
)

// maxReportErrors caps the distinct failure reasons carried by a Report.
const maxReportErrors = 5

// New creates a new executor with the provided configuration.
func New(config Config) *Executor {
	concurrency := config.Concurrency
	if concurrency <= 0 {
		concurrency = consts.DefaultConcurrency
	}

	return &Executor{
		forge:       config.Forge,
		existing:    config.Existing,
		concurrency: concurrency,
	}
}

// Execute applies the operations and returns one result per operation, in
// operation order.
//
// CreateList operations run first, sequentially, so later additions can
// resolve the new list IDs. Everything else runs in fixed-size concurrent
// batches; a failure marks its own result failed and the batch continues.
// When the context is canceled, operations that have not started are marked
// skipped.
func (e *Executor) Execute(ctx context.Context, ops []plan.Operation) []*ExecutionResult {
	results := make([]*ExecutionResult, len(ops))

	listIDs := make(map[string]string)
	membership := make(map[string][]string)
	for _, list := range e.existing {
		listIDs[strings.ToLower(list.Name)] = list.ID
		for _, repo := range list.Repos {
			key := strings.ToLower(repo)
			membership[key] = append(membership[key], list.ID)
		}
	}

	// Phase 1: list creations, sequential so adds can resolve IDs.
	for i, op := range ops {
		if op.Kind != plan.OpCreateList {
			continue
		}

		if err := ctx.Err(); err != nil {
			results[i] = &ExecutionResult{Operation: op, Status: StatusSkipped}
			continue
		}

		start := time.Now()
		list, err := e.forge.CreateList(ctx, op.ListName, op.ListDescription)
		if err != nil {
			results[i] = &ExecutionResult{
				Operation: op,
				Status:    StatusFailed,
				Error:     errors.Wrapf(err, "failed to create list %q", op.ListName),
				Duration:  time.Since(start),
			}
			continue
		}

		listIDs[strings.ToLower(op.ListName)] = list.ID
		results[i] = &ExecutionResult{Operation: op, Status: StatusSuccess, Duration: time.Since(start)}
	}

	// Phase 2: everything else in concurrent batches.
	tasks := e.buildTasks(ops, results, listIDs, membership)

	for start := 0; start < len(tasks); start += e.concurrency {
		end := min(start+e.concurrency, len(tasks))

		g, gctx := errgroup.WithContext(ctx)
		for _, t := range tasks[start:end] {
			g.Go(func() error {
				began := time.Now()

				status, err := StatusSkipped, error(nil)
				if gctx.Err() == nil {
					status, err = t.run(gctx)
				}

				duration := time.Since(began)
				for _, idx := range t.indexes {
					results[idx] = &ExecutionResult{
						Operation: ops[idx],
						Status:    status,
						Error:     err,
						Duration:  duration,
					}
				}
				return nil
			})
		}
		_ = g.Wait()
	}

	return results
}

// buildTasks converts the non-create operations into concurrent tasks,
// grouping additions by repository. Additions naming a list that does not
// exist (its creation failed or was never planned) fail immediately.
func (e *Executor) buildTasks(ops []plan.Operation, results []*ExecutionResult, listIDs map[string]string, membership map[string][]string) []task {
	var tasks []task
	addGroups := make(map[string]*addGroup)
	var groupOrder []string

	for i, op := range ops {
		switch op.Kind {
		case plan.OpCreateList:
			continue

		case plan.OpAddToList:
			listID, ok := listIDs[strings.ToLower(op.ListName)]
			if !ok {
				results[i] = &ExecutionResult{
					Operation: op,
					Status:    StatusFailed,
					Error:     errors.Errorf("list %q does not exist", op.ListName),
				}
				continue
			}

			key := strings.ToLower(op.Repo.FullName)
			group, ok := addGroups[key]
			if !ok {
				group = &addGroup{repo: op.Repo}
				addGroups[key] = group
				groupOrder = append(groupOrder, key)
			}
			group.indexes = append(group.indexes, i)
			group.listIDs = append(group.listIDs, listID)

		case plan.OpUnstar:
			repo := op.Repo
			tasks = append(tasks, task{
				indexes: []int{i},
				run: func(ctx context.Context) (ExecutionStatus, error) {
					err := e.forge.Unstar(ctx, repo.Owner, repo.Name)
					if forge.IsNotFound(err) {
						// Already unstarred (or the repo is gone).
						return StatusSkipped, nil
					}
					if err != nil {
						return StatusFailed, errors.Wrapf(err, "failed to unstar %s", repo.FullName)
					}
					return StatusSuccess, nil
				},
			})

		case plan.OpStar:
			repo := op.Repo
			tasks = append(tasks, task{
				indexes: []int{i},
				run: func(ctx context.Context) (ExecutionStatus, error) {
					err := e.forge.Star(ctx, repo.Owner, repo.Name)
					if forge.IsNotFound(err) {
						return StatusSkipped, nil
					}
					if err != nil {
						return StatusFailed, errors.Wrapf(err, "failed to star %s", repo.FullName)
					}
					return StatusSuccess, nil
				},
			})
		}
	}

	for _, key := range groupOrder {
		group := addGroups[key]
		target := unionIDs(membership[key], group.listIDs)

		tasks = append(tasks, task{
			indexes: group.indexes,
			run: func(ctx context.Context) (ExecutionStatus, error) {
				if err := e.forge.UpdateRepoLists(ctx, group.repo.ID, target); err != nil {
					return StatusFailed, errors.Wrapf(err, "failed to update lists for %s", group.repo.FullName)
				}
				return StatusSuccess, nil
			},
		})
	}

	return tasks
}

type addGroup struct {
	repo    forge.Repo
	indexes []int
	listIDs []string
}

// unionIDs merges the repository's current list IDs with the newly assigned
// ones, preserving current membership (the forge update is a full
// replacement).
func unionIDs(current, added []string) []string {
	seen := make(map[string]bool, len(current)+len(added))
	var ids []string

	for _, id := range append(append([]string(nil), current...), added...) {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}

	return ids
}

// Summarize aggregates results into a Report with per-status counts and up
// to maxReportErrors distinct failure reasons.
func Summarize(results []*ExecutionResult) Report {
	report := Report{Total: len(results)}
	seen := make(map[string]bool)

	for _, result := range results {
		switch result.Status {
		case StatusSuccess:
			report.Succeeded++
		case StatusSkipped:
			report.Skipped++
		case StatusFailed:
			report.Failed++
			if result.Error == nil {
				continue
			}
			msg := result.Error.Error()
			if !seen[msg] {
				seen[msg] = true
				report.Errors = append(report.Errors, msg)
			}
		}
	}

	sort.Strings(report.Errors)
	if len(report.Errors) > maxReportErrors {
		report.Errors = report.Errors[:maxReportErrors]
	}

	return report
}
