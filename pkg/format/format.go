package format

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/pseudomuto/starkeeper/pkg/backup"
	"github.com/pseudomuto/starkeeper/pkg/executor"
	"github.com/pseudomuto/starkeeper/pkg/plan"
)

// Formatter renders wizard and report output. All styling is applied
// through its lipgloss styles; the no-color form leaves them unset so the
// rendered text is the plain string.
type Formatter struct {
	title   lipgloss.Style
	dim     lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
	warning lipgloss.Style
}

// New creates a Formatter. When color is false every style is a no-op,
// which keeps piped output and golden files free of ANSI escapes.
func New(color bool) *Formatter {
	f := &Formatter{}
	if color {
		f.title = lipgloss.NewStyle().Bold(true)
		f.dim = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
		f.success = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
		f.failure = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
		f.warning = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	}
	return f
}

// Proposal renders the numbered category list with member counts, plus a
// warning line for repositories the pipeline could not classify.
func (f *Formatter) Proposal(p *plan.Plan) string {
	var b strings.Builder

	b.WriteString(f.title.Render("Proposed categories:") + "\n")
	for i, cat := range p.Categories {
		line := fmt.Sprintf("  %d. %s (%s)", i+1, cat.Name, pluralize(len(p.Members(cat.Name)), "repo"))
		if cat.Description != "" {
			line += f.dim.Render(" - " + cat.Description)
		}
		b.WriteString(line + "\n")
	}

	if n := len(p.Unresolved); n > 0 {
		b.WriteString(f.warning.Render(fmt.Sprintf("  %s could not be classified and will be left untouched", pluralize(n, "repo"))) + "\n")
	}

	return b.String()
}

// Assignments renders a numbered member list with the model's reasons.
func (f *Formatter) Assignments(assignments []plan.Assignment) string {
	var b strings.Builder

	for i, a := range assignments {
		line := fmt.Sprintf("  %d. %s", i+1, a.Repo.FullName)
		if a.Reason != "" {
			line += f.dim.Render(" - " + a.Reason)
		}
		b.WriteString(line + "\n")
	}

	return b.String()
}

// Cleanup renders the unstar candidates with the model's reasons.
func (f *Formatter) Cleanup(candidates []plan.Candidate) string {
	var b strings.Builder

	b.WriteString(f.title.Render("Cleanup candidates (will be unstarred):") + "\n")
	for i, c := range candidates {
		line := fmt.Sprintf("  %d. %s", i+1, c.Repo.FullName)
		if c.Reason != "" {
			line += f.dim.Render(" - " + c.Reason)
		}
		b.WriteString(line + "\n")
	}

	return b.String()
}

// Operations renders the dry-run listing of pending mutations.
func (f *Formatter) Operations(ops []plan.Operation) string {
	var b strings.Builder

	b.WriteString(f.title.Render(pluralize(len(ops), "planned operation")+":") + "\n")
	for _, op := range ops {
		style, marker := f.success, "+"
		if op.Kind == plan.OpUnstar {
			style, marker = f.failure, "-"
		}
		b.WriteString("  " + style.Render(marker+" "+op.String()) + "\n")
	}

	return b.String()
}

// Report renders the post-execution summary with up to the capped set of
// distinct failure reasons.
func (f *Formatter) Report(report executor.Report) string {
	var b strings.Builder

	style := f.success
	if report.Failed > 0 {
		style = f.failure
	}

	summary := fmt.Sprintf(
		"Applied %s: %d succeeded, %d failed, %d skipped",
		pluralize(report.Total, "operation"), report.Succeeded, report.Failed, report.Skipped,
	)
	b.WriteString(style.Render(summary) + "\n")

	if len(report.Errors) > 0 {
		b.WriteString(f.title.Render("Errors:") + "\n")
		for _, msg := range report.Errors {
			b.WriteString("  - " + msg + "\n")
		}
	}

	return b.String()
}

// Snapshots renders the backup listing as an aligned table.
func (f *Formatter) Snapshots(snapshots []*backup.Snapshot) string {
	if len(snapshots) == 0 {
		return "No backups found.\n"
	}

	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "VERSION\tCREATED\tSTARS\tLISTS\tDESCRIPTION")
	for _, s := range snapshots {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
			s.Version,
			s.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			len(s.Stars),
			len(s.Lists),
			s.Description,
		)
	}
	_ = w.Flush()

	return b.String()
}

// Success renders a success line.
func (f *Formatter) Success(msg string) string {
	return f.success.Render(msg)
}

// Failure renders a failure line.
func (f *Formatter) Failure(msg string) string {
	return f.failure.Render(msg)
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
