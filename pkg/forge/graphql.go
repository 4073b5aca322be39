package forge

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

type (
	graphqlRequest struct {
		Query     string         `json:"query"`
		Variables map[string]any `json:"variables,omitempty"`
	}

	graphqlError struct {
		Message string `json:"message"`
		Type    string `json:"type,omitempty"`
	}

	graphqlResponse struct {
		Data   json.RawMessage `json:"data"`
		Errors []graphqlError  `json:"errors,omitempty"`
	}
)

// execute posts a GraphQL query with variables to the forge endpoint and
// decodes the data payload into out. GraphQL-level errors are surfaced as an
// *APIError with the messages joined, so callers handle REST and GraphQL
// failures uniformly.
func (c *Client) execute(ctx context.Context, query string, vars map[string]any, out any) error {
	body, err := json.Marshal(graphqlRequest{Query: query, Variables: vars})
	if err != nil {
		return errors.Wrap(err, "failed to marshal graphql request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.graphqlURL, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "failed to create graphql request")
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "graphql request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.apiError(resp)
	}

	var gqlResp graphqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&gqlResp); err != nil {
		return errors.Wrap(err, "failed to decode graphql response")
	}

	if len(gqlResp.Errors) > 0 {
		msgs := make([]string, 0, len(gqlResp.Errors))
		for _, e := range gqlResp.Errors {
			msgs = append(msgs, e.Message)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: strings.Join(msgs, "; ")}
	}

	if out != nil {
		if err := json.Unmarshal(gqlResp.Data, out); err != nil {
			return errors.Wrap(err, "failed to decode graphql data")
		}
	}

	return nil
}

// Viewer returns the login of the token's user. Commands call this up front
// to validate the token before doing anything else.
func (c *Client) Viewer(ctx context.Context) (string, error) {
	var data struct {
		Viewer struct {
			Login string `json:"login"`
		} `json:"viewer"`
	}

	if err := c.execute(ctx, `query { viewer { login } }`, nil, &data); err != nil {
		return "", errors.Wrap(err, "failed to resolve viewer")
	}

	return data.Viewer.Login, nil
}
