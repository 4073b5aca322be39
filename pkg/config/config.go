package config

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/pseudomuto/starkeeper/pkg/consts"
	"gopkg.in/yaml.v3"
)

type (
	// Forge contains settings for talking to the code forge hosting the
	// user's starred repositories.
	Forge struct {
		// APIURL is the base URL of the forge REST API
		APIURL string `yaml:"api_url,omitempty"`

		// GraphQLURL is the URL of the forge GraphQL endpoint, used for
		// list queries and mutations
		GraphQLURL string `yaml:"graphql_url,omitempty"`
	}

	// LLM contains settings for the language model used to propose
	// categories and classify repositories.
	LLM struct {
		// Provider selects the LLM backend ("anthropic" or "openai")
		Provider string `yaml:"provider,omitempty"`

		// Model is the provider-specific model identifier
		Model string `yaml:"model,omitempty"`

		// MaxCategories caps the number of categories the model may propose
		MaxCategories int `yaml:"max_categories,omitempty"`

		// BatchSize is the number of repositories classified per call
		BatchSize int `yaml:"batch_size,omitempty"`

		// Attempts is the number of times a call is retried on transport
		// or parse failure before the batch is marked unresolved
		Attempts int `yaml:"attempts,omitempty"`
	}

	// Executor contains settings for applying approved mutations.
	Executor struct {
		// Concurrency is the number of mutations in flight per batch
		Concurrency int `yaml:"concurrency,omitempty"`
	}

	// Backups contains settings for local snapshot management.
	Backups struct {
		// Dir is the snapshot directory, relative to the project root
		Dir string `yaml:"dir,omitempty"`

		// Keep is how many snapshots the prune command retains
		Keep int `yaml:"keep,omitempty"`
	}

	// Config represents the project configuration for starkeeper.
	Config struct {
		// Forge contains code forge connection settings
		Forge Forge `yaml:"forge"`

		// LLM contains language model settings
		LLM LLM `yaml:"llm"`

		// Executor contains mutation execution settings
		Executor Executor `yaml:"executor"`

		// Backups contains snapshot settings
		Backups Backups `yaml:"backups"`
	}
)

// LoadConfig parses a starkeeper configuration from the provided io.Reader.
//
// The function expects YAML-formatted configuration data. Every field is
// optional; missing values are filled in with the defaults from pkg/consts,
// so an empty document is a valid configuration.
//
// Example:
//
//	cfg, err := config.LoadConfig(strings.NewReader(`
//	llm:
//	  provider: openai
//	  model: gpt-4o-mini
//	`))
//	if err != nil {
//		panic(err)
//	}
//
//	fmt.Println(cfg.LLM.Provider) // openai
//	fmt.Println(cfg.Forge.APIURL) // https://api.github.com (default)
func LoadConfig(r io.Reader) (*Config, error) {
	var cfg Config
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal starkeeper config")
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// LoadConfigFile loads a project configuration from the specified file path.
// This is a convenience function that opens the file and calls LoadConfig.
func LoadConfigFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open file: %s", path)
	}
	defer func() { _ = f.Close() }()

	return LoadConfig(f)
}

// Default returns a configuration populated entirely from defaults. It is
// what commands fall back to when no starkeeper.yaml is present.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Forge.APIURL == "" {
		c.Forge.APIURL = consts.DefaultForgeAPIURL
	}
	if c.Forge.GraphQLURL == "" {
		c.Forge.GraphQLURL = consts.DefaultForgeGraphQLURL
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = consts.DefaultLLMProvider
	}
	if c.LLM.Model == "" {
		c.LLM.Model = consts.DefaultLLMModel
	}
	if c.LLM.MaxCategories == 0 {
		c.LLM.MaxCategories = consts.DefaultMaxCategories
	}
	if c.LLM.BatchSize == 0 {
		c.LLM.BatchSize = consts.DefaultBatchSize
	}
	if c.LLM.Attempts == 0 {
		c.LLM.Attempts = consts.DefaultAttempts
	}
	if c.Executor.Concurrency == 0 {
		c.Executor.Concurrency = consts.DefaultConcurrency
	}
	if c.Backups.Dir == "" {
		c.Backups.Dir = consts.DefaultBackupDir
	}
	if c.Backups.Keep == 0 {
		c.Backups.Keep = consts.DefaultBackupKeep
	}
}
