package forge

import "time"

type (
	// Repo describes a starred repository as returned by the forge.
	Repo struct {
		// ID is the GraphQL node ID, used for list membership mutations
		ID string `json:"id"`

		// Owner is the login of the owning user or organization
		Owner string `json:"owner"`

		// Name is the repository name without the owner prefix
		Name string `json:"name"`

		// FullName is "owner/name", the form users recognize
		FullName string `json:"full_name"`

		// Description is the repository description (may be empty)
		Description string `json:"description,omitempty"`

		// URL is the canonical web URL of the repository
		URL string `json:"url"`

		// Language is the primary language reported by the forge
		Language string `json:"language,omitempty"`

		// Stars is the stargazer count at fetch time
		Stars int `json:"stars"`

		// Archived reports whether the repository has been archived
		Archived bool `json:"archived,omitempty"`

		// PushedAt is the last push time reported by the forge
		PushedAt time.Time `json:"pushed_at,omitzero"`

		// StarredAt is when the user starred the repository
		StarredAt time.Time `json:"starred_at,omitzero"`
	}

	// List describes a user list (a curated collection of repositories).
	List struct {
		// ID is the GraphQL node ID of the list
		ID string `json:"id"`

		// Name is the list name, unique per user on the forge
		Name string `json:"name"`

		// Description is the list description (may be empty)
		Description string `json:"description,omitempty"`

		// ItemCount is the total number of repositories on the list
		ItemCount int `json:"item_count"`

		// Repos holds the full names of the repositories on the list
		Repos []string `json:"repos,omitempty"`
	}
)

// HasRepo reports whether the list contains the repository with the given
// full name. The comparison is exact; forge full names are case-preserving
// but unique case-insensitively, so callers normalize beforehand if needed.
func (l *List) HasRepo(fullName string) bool {
	for _, r := range l.Repos {
		if r == fullName {
			return true
		}
	}
	return false
}
