// Package forge provides the HTTP client for the code forge hosting the
// user's starred repositories.
//
// Starred repositories are read and mutated through the forge REST API,
// while lists (the forge's user-curated collections of repositories) are
// only reachable through its GraphQL endpoint. The client wraps both
// behind one type so commands deal with a single dependency.
//
// All operations require a personal access token with the scopes needed to
// read and write stars and lists. Non-2xx responses and GraphQL error
// payloads are surfaced as *APIError values.
package forge
