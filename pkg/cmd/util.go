package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/pseudomuto/starkeeper/pkg/backup"
	"github.com/pseudomuto/starkeeper/pkg/config"
	"github.com/pseudomuto/starkeeper/pkg/forge"
	"github.com/pseudomuto/starkeeper/pkg/format"
	"github.com/pseudomuto/starkeeper/pkg/llm"
	"github.com/pseudomuto/starkeeper/pkg/term"
	xterm "golang.org/x/term"
)

const (
	envToken         = "STARKEEPER_GITHUB_TOKEN"
	envTokenFallback = "GITHUB_TOKEN"
)

// accountState is everything the organize and restore flows need to know
// about the live account.
type accountState struct {
	login string
	stars []forge.Repo
	lists []forge.List
}

// resolveToken finds the forge token: STARKEEPER_GITHUB_TOKEN, then
// GITHUB_TOKEN, then an interactive hidden prompt.
func resolveToken(prompter *term.Prompter) (string, error) {
	if token := os.Getenv(envToken); token != "" {
		return token, nil
	}
	if token := os.Getenv(envTokenFallback); token != "" {
		return token, nil
	}

	token, err := prompter.ReadSecret("Forge API token")
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", errors.Errorf("no forge token provided (set %s)", envToken)
	}

	return token, nil
}

func forgeClient(cfg *config.Config, token string) *forge.Client {
	return forge.NewClient(forge.ClientOptions{
		APIURL:     cfg.Forge.APIURL,
		GraphQLURL: cfg.Forge.GraphQLURL,
		Token:      token,
	})
}

// llmClient builds the LLM client for the effective provider/model pair.
// Explicit flags win; otherwise the provider is inferred from the model
// name, falling back to the configured provider.
func llmClient(cfg *config.Config, provider, model string) (llm.Client, string, error) {
	if model == "" {
		model = cfg.LLM.Model
	}
	if provider == "" {
		provider = llm.DetectProvider(model)
	}
	if provider == "" {
		provider = cfg.LLM.Provider
	}

	keyEnv := llm.KeyEnv(provider)
	key := os.Getenv(keyEnv)
	if key == "" {
		return nil, "", errors.Errorf("%s is not set", keyEnv)
	}

	client, err := llm.New(provider, key)
	if err != nil {
		return nil, "", err
	}

	return client, model, nil
}

// backupStore returns the store for the configured backup directory,
// relative to the project root (the current directory after the global
// --dir flag is applied).
func backupStore(cfg *config.Config) *backup.Store {
	dir := cfg.Backups.Dir
	if currentProject != nil && !filepath.IsAbs(dir) {
		dir = filepath.Join(currentProject.Root(), dir)
	}

	return backup.NewStore(dir)
}

func newFormatter() *format.Formatter {
	return format.New(xterm.IsTerminal(int(os.Stdout.Fd())))
}

// fetchAccount loads the viewer login, starred repositories, and lists,
// keeping the spinner message current. A positive limit truncates the
// starred set (useful for trial runs against large accounts).
func fetchAccount(ctx context.Context, client *forge.Client, spin *term.Spinner, limit int) (*accountState, error) {
	spin.Start("Checking forge access")
	login, err := client.Viewer(ctx)
	if err != nil {
		spin.Stop()
		return nil, errors.Wrap(err, "failed to authenticate against the forge")
	}

	spin.Update("Fetching starred repositories")
	stars, err := client.ListStarred(ctx, forge.StarOptions{})
	if err != nil {
		spin.Stop()
		return nil, errors.Wrap(err, "failed to fetch starred repositories")
	}
	if limit > 0 && len(stars) > limit {
		stars = stars[:limit]
	}

	spin.Update("Fetching lists")
	lists, err := client.ListLists(ctx)
	spin.Stop()
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch lists")
	}

	return &accountState{login: login, stars: stars, lists: lists}, nil
}
