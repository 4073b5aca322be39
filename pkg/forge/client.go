package forge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

const defaultUserAgent = "starkeeper"

type (
	// Client is an authenticated connection to a code forge. It speaks the
	// forge REST API for star operations and the GraphQL endpoint for list
	// operations.
	Client struct {
		apiURL     string
		graphqlURL string
		token      string
		userAgent  string
		http       *http.Client
	}

	// ClientOptions contains configuration options for creating a new Client.
	ClientOptions struct {
		// APIURL is the base URL of the forge REST API (no trailing slash)
		APIURL string

		// GraphQLURL is the URL of the forge GraphQL endpoint
		GraphQLURL string

		// Token is the personal access token used for all requests
		Token string

		// UserAgent overrides the default starkeeper user agent
		UserAgent string

		// HTTPClient overrides the default http.Client (used by tests)
		HTTPClient *http.Client
	}

	// RESTMessage is the error body shape returned by the forge REST API.
	RESTMessage struct {
		Message string `json:"message"`
	}

	// APIError is the error type returned for all failed forge calls.
	APIError struct {
		// StatusCode is the HTTP status of the response
		StatusCode int

		// Message is the forge-provided error message, if any
		Message string

		// RateRemaining is the value of the rate-limit remaining header
		RateRemaining int

		// RateReset is when the rate-limit window resets
		RateReset time.Time
	}
)

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("forge request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("forge request failed with status %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err (or its cause) is an APIError with a 404
// status. Unstar uses this to treat already-unstarred repositories as
// skipped rather than failed.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// NewClient creates a new forge client from the provided options. APIURL,
// GraphQLURL and Token are required; UserAgent and HTTPClient have sensible
// defaults.
//
// Example:
//
//	client := forge.NewClient(forge.ClientOptions{
//		APIURL:     "https://api.github.com",
//		GraphQLURL: "https://api.github.com/graphql",
//		Token:      token,
//	})
//
//	repos, err := client.ListStarred(ctx, forge.StarOptions{})
//	if err != nil {
//		log.Fatal(err)
//	}
func NewClient(opts ClientOptions) *Client {
	c := &Client{
		apiURL:     opts.APIURL,
		graphqlURL: opts.GraphQLURL,
		token:      opts.Token,
		userAgent:  opts.UserAgent,
		http:       opts.HTTPClient,
	}

	if c.userAgent == "" {
		c.userAgent = defaultUserAgent
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 30 * time.Second}
	}

	return c
}

// get performs an authenticated GET against a fully-qualified REST URL,
// decoding the JSON body into out when out is non-nil. The response headers
// are returned so callers can follow pagination links.
func (c *Client) get(ctx context.Context, url, accept string, out any) (http.Header, error) {
	return c.rest(ctx, http.MethodGet, url, accept, out)
}

// rest performs an authenticated REST request. Bodies are never sent; the
// forge star endpoints are all bodyless.
func (c *Client) rest(ctx context.Context, method, url, accept string, out any) (http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create forge request")
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "forge request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.apiError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return nil, errors.Wrap(err, "failed to decode forge response")
		}
	} else {
		_, _ = io.Copy(io.Discard, resp.Body)
	}

	return resp.Header, nil
}

// apiError builds an *APIError from a non-2xx response, pulling the forge
// message and rate-limit headers when present.
func (c *Client) apiError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var msg RESTMessage
	if err := json.NewDecoder(resp.Body).Decode(&msg); err == nil {
		apiErr.Message = msg.Message
	}

	if v := resp.Header.Get("X-RateLimit-Remaining"); v != "" {
		apiErr.RateRemaining, _ = strconv.Atoi(v)
	}
	if v := resp.Header.Get("X-RateLimit-Reset"); v != "" {
		if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
			apiErr.RateReset = time.Unix(secs, 0).UTC()
		}
	}

	return apiErr
}
