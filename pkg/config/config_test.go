package config_test

import (
	_ "embed"
	"os"
	"strings"
	"testing"

	. "github.com/pseudomuto/starkeeper/pkg/config"
	"github.com/pseudomuto/starkeeper/pkg/consts"
	"github.com/stretchr/testify/require"
)

//go:embed testdata/starkeeper.yaml
var testConfigYAML string

func TestLoadConfig(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		config, err := LoadConfig(strings.NewReader(testConfigYAML))
		require.NoError(t, err)
		validateTestConfig(t, config)
	})

	t.Run("defaults", func(t *testing.T) {
		// Valid YAML with no starkeeper fields falls back to defaults
		config, err := LoadConfig(strings.NewReader("other_key: value"))
		require.NoError(t, err)
		require.NotNil(t, config)
		require.Equal(t, consts.DefaultForgeAPIURL, config.Forge.APIURL)
		require.Equal(t, consts.DefaultForgeGraphQLURL, config.Forge.GraphQLURL)
		require.Equal(t, consts.DefaultLLMProvider, config.LLM.Provider)
		require.Equal(t, consts.DefaultLLMModel, config.LLM.Model)
		require.Equal(t, consts.DefaultMaxCategories, config.LLM.MaxCategories)
		require.Equal(t, consts.DefaultBatchSize, config.LLM.BatchSize)
		require.Equal(t, consts.DefaultAttempts, config.LLM.Attempts)
		require.Equal(t, consts.DefaultConcurrency, config.Executor.Concurrency)
		require.Equal(t, consts.DefaultBackupDir, config.Backups.Dir)
		require.Equal(t, consts.DefaultBackupKeep, config.Backups.Keep)
	})

	t.Run("error", func(t *testing.T) {
		config, err := LoadConfig(strings.NewReader("invalid: yaml: ["))
		require.Error(t, err)
		require.Nil(t, config)
		require.Contains(t, err.Error(), "failed to unmarshal starkeeper config")

		config, err = LoadConfig(strings.NewReader(""))
		require.Error(t, err)
		require.Nil(t, config)
	})
}

func TestLoadConfigFile(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		tempFile, err := os.CreateTemp("", "starkeeper_test_*.yaml")
		require.NoError(t, err)
		defer os.Remove(tempFile.Name())

		_, err = tempFile.WriteString(testConfigYAML)
		require.NoError(t, err)
		require.NoError(t, tempFile.Close())

		config, err := LoadConfigFile(tempFile.Name())
		require.NoError(t, err)
		validateTestConfig(t, config)
	})

	t.Run("missing file", func(t *testing.T) {
		config, err := LoadConfigFile("does/not/exist.yaml")
		require.Error(t, err)
		require.Nil(t, config)
		require.Contains(t, err.Error(), "failed to open file")
	})
}

func TestDefault(t *testing.T) {
	config := Default()
	require.Equal(t, consts.DefaultForgeAPIURL, config.Forge.APIURL)
	require.Equal(t, consts.DefaultLLMProvider, config.LLM.Provider)
	require.Equal(t, consts.DefaultConcurrency, config.Executor.Concurrency)
}

func validateTestConfig(t *testing.T, config *Config) {
	t.Helper()

	require.NotNil(t, config)
	require.Equal(t, "https://forge.example.com/api", config.Forge.APIURL)
	require.Equal(t, "https://forge.example.com/graphql", config.Forge.GraphQLURL)
	require.Equal(t, "openai", config.LLM.Provider)
	require.Equal(t, "gpt-4o-mini", config.LLM.Model)
	require.Equal(t, 8, config.LLM.MaxCategories)
	require.Equal(t, 10, config.LLM.BatchSize)
	require.Equal(t, 2, config.LLM.Attempts)
	require.Equal(t, 5, config.Executor.Concurrency)
	require.Equal(t, "snapshots", config.Backups.Dir)
	require.Equal(t, 3, config.Backups.Keep)
}
