package organizer

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/starkeeper/pkg/consts"
	"github.com/pseudomuto/starkeeper/pkg/forge"
	"github.com/pseudomuto/starkeeper/pkg/llm"
)

type (
	// Category is one proposed organizational bucket. Approved categories
	// become lists on the forge.
	Category struct {
		// Name is the category name, unique within a proposal
		Name string `json:"name"`

		// Description is a one-line explanation of what belongs here
		Description string `json:"description,omitempty"`
	}

	// Proposal is the stage-one output: the category set the model suggests
	// for the starred repositories.
	Proposal struct {
		Categories []Category `json:"categories"`
	}

	// Action is what the model recommends doing with one repository.
	Action string

	// Assignment is the stage-two verdict for one repository.
	Assignment struct {
		// Repo is the repository being classified
		Repo forge.Repo

		// Category is the category name for ActionAssign, empty otherwise
		Category string

		// Action is the recommended action
		Action Action

		// Reason is the model's short justification (may be empty)
		Reason string
	}

	// Result is the stage-two output for the whole starred set.
	Result struct {
		// Assignments holds one verdict per classified repository, in input order
		Assignments []Assignment

		// Unresolved lists full names of repositories whose batch never
		// produced a usable reply; they are left untouched
		Unresolved []string
	}

	// Options configures the pipeline.
	Options struct {
		// Model is the provider-specific model identifier
		Model string

		// MaxCategories caps the stage-one category count
		MaxCategories int

		// BatchSize is the number of repositories per stage-two call
		BatchSize int

		// Attempts is the fixed retry count per LLM call (no backoff)
		Attempts int

		// Temperature is passed through to the model
		Temperature float64
	}

	// Organizer runs the two-stage pipeline against an llm.Client.
	Organizer struct {
		llm  llm.Client
		opts Options
	}
)

const (
	// ActionKeep leaves the repository starred and uncategorized
	ActionKeep Action = "keep"

	// ActionAssign puts the repository on a category list
	ActionAssign Action = "assign"

	// ActionUnstar marks the repository as a cleanup candidate
	ActionUnstar Action = "unstar"
)

// New creates an Organizer. Zero option values fall back to the defaults
// from pkg/consts.
func New(client llm.Client, opts Options) *Organizer {
	if opts.Model == "" {
		opts.Model = consts.DefaultLLMModel
	}
	if opts.MaxCategories <= 0 {
		opts.MaxCategories = consts.DefaultMaxCategories
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = consts.DefaultBatchSize
	}
	if opts.Attempts <= 0 {
		opts.Attempts = consts.DefaultAttempts
	}

	return &Organizer{llm: client, opts: opts}
}

// ProposeCategories runs stage one: it sends a digest of the starred set and
// returns the model's category proposal, deduplicated case-insensitively and
// capped at MaxCategories.
func (o *Organizer) ProposeCategories(ctx context.Context, repos []forge.Repo) (*Proposal, error) {
	if len(repos) == 0 {
		return nil, errors.New("no starred repositories to organize")
	}

	raw, err := o.completeJSON(ctx, proposeSystem, proposePrompt(repos, o.opts.MaxCategories))
	if err != nil {
		return nil, errors.Wrap(err, "category proposal failed")
	}

	var proposal Proposal
	if err := json.Unmarshal([]byte(raw), &proposal); err != nil {
		return nil, errors.Wrap(err, "failed to parse category proposal")
	}

	proposal.Categories = dedupeCategories(proposal.Categories, o.opts.MaxCategories)
	if len(proposal.Categories) == 0 {
		return nil, errors.New("model proposed no usable categories")
	}

	return &proposal, nil
}

// classifyEntry is the wire shape of one stage-two verdict.
type classifyEntry struct {
	Repo     int    `json:"repo"`
	Category int    `json:"category"`
	Action   string `json:"action"`
	Reason   string `json:"reason"`
}

// ClassifyRepos runs stage two: repositories are classified against the
// categories in batches of BatchSize. A batch whose call fails all attempts
// marks its repositories unresolved; the remaining batches still run.
//
// Malformed verdicts are demoted rather than dropped: an out-of-range
// category number or unknown action becomes ActionKeep, and repositories the
// model skipped are reported unresolved.
func (o *Organizer) ClassifyRepos(ctx context.Context, repos []forge.Repo, categories []Category) (*Result, error) {
	if len(categories) == 0 {
		return nil, errors.New("no categories to classify against")
	}

	result := &Result{}

	for start := 0; start < len(repos); start += o.opts.BatchSize {
		end := min(start+o.opts.BatchSize, len(repos))
		batch := repos[start:end]

		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "classification cancelled")
		}

		raw, err := o.completeJSON(ctx, classifySystem, classifyPrompt(batch, categories))
		if err != nil {
			for _, repo := range batch {
				result.Unresolved = append(result.Unresolved, repo.FullName)
			}
			continue
		}

		entries, err := parseClassifyEntries(raw)
		if err != nil {
			for _, repo := range batch {
				result.Unresolved = append(result.Unresolved, repo.FullName)
			}
			continue
		}

		o.mergeBatch(result, batch, categories, entries)
	}

	return result, nil
}

// mergeBatch folds one batch's verdicts into the result, normalizing bad
// entries to ActionKeep and recording skipped repositories as unresolved.
func (o *Organizer) mergeBatch(result *Result, batch []forge.Repo, categories []Category, entries []classifyEntry) {
	verdicts := make(map[int]classifyEntry, len(entries))
	for _, e := range entries {
		if e.Repo >= 1 && e.Repo <= len(batch) {
			verdicts[e.Repo] = e
		}
	}

	for i, repo := range batch {
		entry, ok := verdicts[i+1]
		if !ok {
			result.Unresolved = append(result.Unresolved, repo.FullName)
			continue
		}

		assignment := Assignment{Repo: repo, Reason: entry.Reason}

		switch Action(strings.ToLower(strings.TrimSpace(entry.Action))) {
		case ActionAssign:
			if entry.Category >= 1 && entry.Category <= len(categories) {
				assignment.Action = ActionAssign
				assignment.Category = categories[entry.Category-1].Name
			} else {
				assignment.Action = ActionKeep
			}
		case ActionUnstar:
			assignment.Action = ActionUnstar
		default:
			assignment.Action = ActionKeep
		}

		result.Assignments = append(result.Assignments, assignment)
	}
}

// completeJSON calls the model up to Attempts times, returning the first
// extractable JSON payload. There is deliberately no backoff; transient
// provider errors either clear immediately or the batch is given up on.
func (o *Organizer) completeJSON(ctx context.Context, system, prompt string) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= o.opts.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		resp, err := o.llm.Complete(ctx, llm.Request{
			Model:       o.opts.Model,
			System:      system,
			Prompt:      prompt,
			Temperature: o.opts.Temperature,
		})
		if err != nil {
			lastErr = err
			continue
		}

		raw, err := ExtractJSON(resp.Text)
		if err != nil {
			lastErr = err
			continue
		}

		return raw, nil
	}

	return "", errors.Wrapf(lastErr, "llm call failed after %d attempts", o.opts.Attempts)
}

// parseClassifyEntries accepts either a bare array or an object wrapping one
// (some models insist on {"results": [...]}).
func parseClassifyEntries(raw string) ([]classifyEntry, error) {
	var entries []classifyEntry
	if err := json.Unmarshal([]byte(raw), &entries); err == nil {
		return entries, nil
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &wrapped); err != nil {
		return nil, errors.New("classification reply is neither an array nor an object")
	}

	for _, value := range wrapped {
		if err := json.Unmarshal(value, &entries); err == nil {
			return entries, nil
		}
	}

	return nil, errors.New("classification object contains no entry array")
}

func dedupeCategories(categories []Category, max int) []Category {
	seen := make(map[string]bool, len(categories))
	out := make([]Category, 0, len(categories))

	for _, cat := range categories {
		name := strings.TrimSpace(cat.Name)
		if name == "" {
			continue
		}

		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true

		out = append(out, Category{Name: name, Description: strings.TrimSpace(cat.Description)})
		if len(out) == max {
			break
		}
	}

	return out
}
