package forge

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// acceptStarJSON asks the forge to include starred_at timestamps with each
// starred repository entry.
const acceptStarJSON = "application/vnd.github.star+json"

type (
	// StarOptions controls starred repository pagination.
	StarOptions struct {
		// PerPage is the page size requested from the forge (default 100,
		// which is the forge maximum)
		PerPage int

		// MaxPages caps how many pages are fetched; zero means no cap
		MaxPages int
	}

	// starredEntry is the wire shape of one starred repository when the
	// star+json media type is requested.
	starredEntry struct {
		StarredAt time.Time `json:"starred_at"`
		Repo      struct {
			NodeID      string `json:"node_id"`
			Name        string `json:"name"`
			FullName    string `json:"full_name"`
			Description string `json:"description"`
			HTMLURL     string `json:"html_url"`
			Language    string `json:"language"`
			Stargazers  int    `json:"stargazers_count"`
			Archived    bool   `json:"archived"`
			PushedAt    time.Time `json:"pushed_at"`
			Owner       struct {
				Login string `json:"login"`
			} `json:"owner"`
		} `json:"repo"`
	}
)

// ListStarred fetches the authenticated user's starred repositories,
// following the Link header's rel="next" URL across pages until exhaustion
// or the MaxPages cap. Pages are merged in arrival order, which the forge
// guarantees to be most-recently-starred first.
//
// If the forge returns a Link header that cannot be parsed, the client falls
// back to sequential page-by-page fetching until an empty page is returned.
func (c *Client) ListStarred(ctx context.Context, opts StarOptions) ([]Repo, error) {
	perPage := opts.PerPage
	if perPage <= 0 {
		perPage = 100
	}

	var repos []Repo

	url := fmt.Sprintf("%s/user/starred?per_page=%d", c.apiURL, perPage)
	for page := 1; ; page++ {
		var entries []starredEntry
		header, err := c.get(ctx, url, acceptStarJSON, &entries)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to fetch starred page %d", page)
		}

		repos = append(repos, toRepos(entries)...)

		if opts.MaxPages > 0 && page >= opts.MaxPages {
			break
		}

		next, err := nextLink(header.Get("Link"))
		if err != nil {
			// Unparsable pagination header: walk explicit page numbers until
			// the forge hands back an empty page.
			rest, err := c.listStarredSequential(ctx, perPage, page+1, opts.MaxPages)
			if err != nil {
				return nil, err
			}
			return append(repos, rest...), nil
		}
		if next == "" {
			break
		}

		url = next
	}

	return repos, nil
}

// listStarredSequential is the fallback fetch path used when the forge's
// pagination header cannot be parsed. It requests numbered pages starting at
// startPage until an empty page is returned or maxPages is reached.
func (c *Client) listStarredSequential(ctx context.Context, perPage, startPage, maxPages int) ([]Repo, error) {
	var repos []Repo

	for page := startPage; ; page++ {
		if maxPages > 0 && page > maxPages {
			break
		}

		url := fmt.Sprintf("%s/user/starred?per_page=%d&page=%d", c.apiURL, perPage, page)

		var entries []starredEntry
		if _, err := c.get(ctx, url, acceptStarJSON, &entries); err != nil {
			return nil, errors.Wrapf(err, "failed to fetch starred page %d", page)
		}

		if len(entries) == 0 {
			break
		}

		repos = append(repos, toRepos(entries)...)
	}

	return repos, nil
}

// Star stars the repository owner/name for the authenticated user. Starring
// an already-starred repository is a no-op on the forge side.
func (c *Client) Star(ctx context.Context, owner, name string) error {
	url := fmt.Sprintf("%s/user/starred/%s/%s", c.apiURL, owner, name)
	if _, err := c.rest(ctx, http.MethodPut, url, "", nil); err != nil {
		return errors.Wrapf(err, "failed to star %s/%s", owner, name)
	}
	return nil
}

// Unstar removes the star on owner/name. A 404 response means the star was
// already gone; callers can detect that with IsNotFound and report the
// operation as skipped.
func (c *Client) Unstar(ctx context.Context, owner, name string) error {
	url := fmt.Sprintf("%s/user/starred/%s/%s", c.apiURL, owner, name)
	if _, err := c.rest(ctx, http.MethodDelete, url, "", nil); err != nil {
		return errors.Wrapf(err, "failed to unstar %s/%s", owner, name)
	}
	return nil
}

// nextLink extracts the rel="next" URL from a Link header. It returns an
// empty string when the header is absent or carries no next relation, and an
// error when the header exists but cannot be parsed.
func nextLink(header string) (string, error) {
	if strings.TrimSpace(header) == "" {
		return "", nil
	}

	for _, part := range strings.Split(header, ",") {
		segments := strings.Split(part, ";")
		if len(segments) < 2 {
			return "", errors.Errorf("malformed link header segment: %q", part)
		}

		target := strings.TrimSpace(segments[0])
		if !strings.HasPrefix(target, "<") || !strings.HasSuffix(target, ">") {
			return "", errors.Errorf("malformed link header target: %q", target)
		}

		for _, param := range segments[1:] {
			param = strings.TrimSpace(param)
			if param == `rel="next"` || param == "rel=next" {
				return strings.Trim(target, "<>"), nil
			}
		}
	}

	return "", nil
}

func toRepos(entries []starredEntry) []Repo {
	repos := make([]Repo, 0, len(entries))
	for _, e := range entries {
		repos = append(repos, Repo{
			ID:          e.Repo.NodeID,
			Owner:       e.Repo.Owner.Login,
			Name:        e.Repo.Name,
			FullName:    e.Repo.FullName,
			Description: e.Repo.Description,
			URL:         e.Repo.HTMLURL,
			Language:    e.Repo.Language,
			Stars:       e.Repo.Stargazers,
			Archived:    e.Repo.Archived,
			PushedAt:    e.Repo.PushedAt,
			StarredAt:   e.StarredAt,
		})
	}
	return repos
}
