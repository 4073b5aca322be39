// Package llm provides thin clients for the language model services used to
// propose categories and classify starred repositories.
//
// Two providers are supported: Anthropic (via the official Go SDK's Messages
// API) and OpenAI (via the official Go SDK's Chat Completions API). Both are
// exposed behind the Client interface so the organizer never knows which
// provider it is talking to.
package llm
