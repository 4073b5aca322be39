package consts

import "os"

const (
	// ModeDir is the standard file mode for creating directories
	ModeDir = os.FileMode(0o755)

	// ModeFile is the standard file mode for creating files
	ModeFile = os.FileMode(0o644)
)

const (
	// ConfigFile is the name of the project configuration file
	ConfigFile = "starkeeper.yaml"

	// SumFile is the name of the backup integrity file
	SumFile = "starkeeper.sum"

	// DefaultForgeAPIURL is the REST endpoint used when none is configured
	DefaultForgeAPIURL = "https://api.github.com"

	// DefaultForgeGraphQLURL is the GraphQL endpoint used when none is configured
	DefaultForgeGraphQLURL = "https://api.github.com/graphql"

	// DefaultLLMProvider is the LLM provider used when none is configured
	DefaultLLMProvider = "anthropic"

	// DefaultLLMModel is the model used when none is configured
	DefaultLLMModel = "claude-sonnet-4-20250514"

	// DefaultMaxCategories caps the number of categories the LLM may propose
	DefaultMaxCategories = 12

	// DefaultBatchSize is the number of repositories classified per LLM call
	DefaultBatchSize = 25

	// DefaultAttempts is how many times an LLM call is retried on transport
	// or parse failure before its batch is marked unresolved
	DefaultAttempts = 3

	// DefaultConcurrency is the number of forge mutations in flight per batch
	DefaultConcurrency = 10

	// DefaultBackupDir is where snapshots are written, relative to the project
	DefaultBackupDir = "backups"

	// DefaultBackupKeep is how many snapshots prune retains
	DefaultBackupKeep = 10
)
