package organizer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pseudomuto/starkeeper/pkg/forge"
)

const (
	// maxDescriptionLen truncates repository descriptions in prompts so a
	// handful of verbose projects can't crowd out the rest of the digest.
	maxDescriptionLen = 120

	proposeSystem = `You are an assistant that organizes a developer's starred repositories.
You reply with JSON only. No prose, no markdown fences.`

	classifySystem = `You are an assistant that files starred repositories into categories
and flags stale ones for cleanup. You reply with JSON only. No prose, no markdown fences.`
)

// proposePrompt renders the stage-one prompt: a digest of the starred set
// and a request for at most maxCategories category definitions.
func proposePrompt(repos []forge.Repo, maxCategories int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Below are %d starred repositories.\n", len(repos))
	fmt.Fprintf(&b, "Propose at most %d categories that organize them into meaningful groups.\n", maxCategories)
	b.WriteString("Category names must be short (at most 5 words) and distinct.\n\n")
	b.WriteString("Respond with exactly this JSON shape:\n")
	b.WriteString(`{"categories": [{"name": "...", "description": "..."}]}`)
	b.WriteString("\n\nRepositories:\n")

	writeRepoDigest(&b, repos)

	return b.String()
}

// classifyPrompt renders a stage-two prompt for one batch. Categories are
// numbered 1-based; repositories are numbered 1-based within the batch.
func classifyPrompt(batch []forge.Repo, categories []Category) string {
	var b strings.Builder

	b.WriteString("Categories:\n")
	for i, cat := range categories {
		fmt.Fprintf(&b, "%d. %s", i+1, cat.Name)
		if cat.Description != "" {
			fmt.Fprintf(&b, " — %s", cat.Description)
		}
		b.WriteString("\n")
	}

	b.WriteString("\nFor each repository below, decide one of:\n")
	b.WriteString(`- "assign": it belongs in one of the categories (set "category" to its number)` + "\n")
	b.WriteString(`- "keep": leave it starred but uncategorized (set "category" to 0)` + "\n")
	b.WriteString(`- "unstar": it looks stale, archived, or no longer useful (set "category" to 0)` + "\n\n")
	b.WriteString("Respond with exactly this JSON shape, one entry per repository:\n")
	b.WriteString(`[{"repo": 1, "category": 2, "action": "assign", "reason": "..."}]`)
	b.WriteString("\n\nRepositories:\n")

	writeRepoDigest(&b, batch)

	return b.String()
}

// writeRepoDigest writes one numbered line per repository: full name,
// language, star count, archived marker, and a truncated description.
func writeRepoDigest(b *strings.Builder, repos []forge.Repo) {
	for i, repo := range repos {
		fmt.Fprintf(b, "%d. %s", i+1, repo.FullName)
		if repo.Language != "" {
			fmt.Fprintf(b, " [%s]", repo.Language)
		}
		fmt.Fprintf(b, " ★%d", repo.Stars)
		if repo.Archived {
			b.WriteString(" (archived)")
		}
		if desc := truncate(repo.Description, maxDescriptionLen); desc != "" {
			fmt.Fprintf(b, " — %s", desc)
		}
		b.WriteString("\n")
	}
}

// truncate cuts s to at most max bytes, backing up to a rune boundary so the
// result is always valid UTF-8.
func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}

	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}

	return strings.TrimSpace(s[:cut]) + "…"
}
