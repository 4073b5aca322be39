package forge

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	listsQuery = `query($after: String) {
  viewer {
    lists(first: 100, after: $after) {
      nodes {
        id
        name
        description
        items(first: 100) {
          totalCount
          nodes {
            ... on Repository { nameWithOwner }
          }
          pageInfo {
            endCursor
            hasNextPage
          }
        }
      }
      pageInfo {
        endCursor
        hasNextPage
      }
    }
  }
}`

	listItemsQuery = `query($id: ID!, $after: String) {
  node(id: $id) {
    ... on UserList {
      items(first: 100, after: $after) {
        nodes {
          ... on Repository { nameWithOwner }
        }
        pageInfo {
          endCursor
          hasNextPage
        }
      }
    }
  }
}`

	createListMutation = `mutation($input: CreateUserListInput!) {
  createUserList(input: $input) {
    list { id name description }
  }
}`

	updateItemListsMutation = `mutation($input: UpdateUserListsForItemInput!) {
  updateUserListsForItem(input: $input) {
    lists { id name }
  }
}`
)

type (
	pageInfo struct {
		EndCursor   string `json:"endCursor"`
		HasNextPage bool   `json:"hasNextPage"`
	}

	itemsPayload struct {
		TotalCount int `json:"totalCount"`
		Nodes      []struct {
			NameWithOwner string `json:"nameWithOwner"`
		} `json:"nodes"`
		PageInfo pageInfo `json:"pageInfo"`
	}

	listsPayload struct {
		Viewer struct {
			Lists struct {
				Nodes []struct {
					ID          string       `json:"id"`
					Name        string       `json:"name"`
					Description string       `json:"description"`
					Items       itemsPayload `json:"items"`
				} `json:"nodes"`
				PageInfo pageInfo `json:"pageInfo"`
			} `json:"lists"`
		} `json:"viewer"`
	}

	listItemsPayload struct {
		Node struct {
			Items itemsPayload `json:"items"`
		} `json:"node"`
	}
)

// ListLists fetches all of the viewer's lists, following the GraphQL cursor
// until hasNextPage is false. Each list includes the full names of all of
// its member repositories: when a list has more items than one page holds,
// the item cursor is followed per list until exhaustion. Membership must be
// complete because updateUserListsForItem is a full replacement; a truncated
// membership set would drop a repository from lists it is already on.
func (c *Client) ListLists(ctx context.Context) ([]List, error) {
	var lists []List

	vars := map[string]any{"after": nil}
	for {
		var data listsPayload
		if err := c.execute(ctx, listsQuery, vars, &data); err != nil {
			return nil, errors.Wrap(err, "failed to fetch lists")
		}

		for _, node := range data.Viewer.Lists.Nodes {
			list := List{
				ID:          node.ID,
				Name:        node.Name,
				Description: node.Description,
				ItemCount:   node.Items.TotalCount,
			}
			for _, item := range node.Items.Nodes {
				if item.NameWithOwner != "" {
					list.Repos = append(list.Repos, item.NameWithOwner)
				}
			}

			if node.Items.PageInfo.HasNextPage {
				rest, err := c.listItems(ctx, node.ID, node.Items.PageInfo.EndCursor)
				if err != nil {
					return nil, err
				}
				list.Repos = append(list.Repos, rest...)
			}

			lists = append(lists, list)
		}

		page := data.Viewer.Lists.PageInfo
		if !page.HasNextPage {
			break
		}
		vars["after"] = page.EndCursor
	}

	return lists, nil
}

// listItems fetches the remaining items of one list, continuing from the
// given cursor until hasNextPage is false.
func (c *Client) listItems(ctx context.Context, listID, after string) ([]string, error) {
	var repos []string

	vars := map[string]any{"id": listID, "after": after}
	for {
		var data listItemsPayload
		if err := c.execute(ctx, listItemsQuery, vars, &data); err != nil {
			return nil, errors.Wrapf(err, "failed to fetch items for list %s", listID)
		}

		for _, item := range data.Node.Items.Nodes {
			if item.NameWithOwner != "" {
				repos = append(repos, item.NameWithOwner)
			}
		}

		page := data.Node.Items.PageInfo
		if !page.HasNextPage {
			break
		}
		vars["after"] = page.EndCursor
	}

	return repos, nil
}

// CreateList creates a new list with the given name and description. When
// the forge rejects the name because a list with it already exists, the
// existing list is looked up and returned instead, so callers can treat
// CreateList as idempotent.
func (c *Client) CreateList(ctx context.Context, name, description string) (*List, error) {
	var data struct {
		CreateUserList struct {
			List struct {
				ID          string `json:"id"`
				Name        string `json:"name"`
				Description string `json:"description"`
			} `json:"list"`
		} `json:"createUserList"`
	}

	vars := map[string]any{
		"input": map[string]any{
			"name":             name,
			"description":      description,
			"clientMutationId": uuid.NewString(),
		},
	}

	err := c.execute(ctx, createListMutation, vars, &data)
	if err != nil {
		if isNameTaken(err) {
			return c.findList(ctx, name)
		}
		return nil, errors.Wrapf(err, "failed to create list %q", name)
	}

	return &List{
		ID:          data.CreateUserList.List.ID,
		Name:        data.CreateUserList.List.Name,
		Description: data.CreateUserList.List.Description,
	}, nil
}

// UpdateRepoLists replaces the set of lists the repository (by node ID)
// belongs to. The forge mutation is a full replacement, so callers must pass
// the union of the repository's current list IDs and any additions.
func (c *Client) UpdateRepoLists(ctx context.Context, repoID string, listIDs []string) error {
	vars := map[string]any{
		"input": map[string]any{
			"itemId":           repoID,
			"listIds":          listIDs,
			"clientMutationId": uuid.NewString(),
		},
	}

	if err := c.execute(ctx, updateItemListsMutation, vars, nil); err != nil {
		return errors.Wrapf(err, "failed to update lists for item %s", repoID)
	}

	return nil
}

// findList returns the viewer's list with the given name (case-insensitive).
func (c *Client) findList(ctx context.Context, name string) (*List, error) {
	lists, err := c.ListLists(ctx)
	if err != nil {
		return nil, err
	}

	for i := range lists {
		if strings.EqualFold(lists[i].Name, name) {
			return &lists[i], nil
		}
	}

	return nil, errors.Errorf("list %q reported as existing but not found", name)
}

// isNameTaken matches the forge's duplicate-name error for createUserList.
func isNameTaken(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}

	msg := strings.ToLower(apiErr.Message)
	return strings.Contains(msg, "name has already been taken") ||
		strings.Contains(msg, "already exists")
}
