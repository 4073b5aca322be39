package project

import (
	_ "embed"
	"os"
	"path/filepath"
	"testing/fstest"

	"github.com/pkg/errors"
	"github.com/pseudomuto/starkeeper/pkg/config"
	"github.com/pseudomuto/starkeeper/pkg/consts"
	"gopkg.in/yaml.v3"
)

var (
	//go:embed embed/starkeeper.yaml
	defaultStarkeeper []byte

	image = fstest.MapFS{
		"backups":         {Mode: os.ModeDir | consts.ModeDir},
		consts.ConfigFile: {Data: defaultStarkeeper},
	}
)

type (
	// InitOptions customizes the generated configuration.
	InitOptions struct {
		// Provider overrides the default LLM provider in starkeeper.yaml
		Provider string

		// Model overrides the default LLM model in starkeeper.yaml
		Model string
	}

	// Project is a starkeeper workspace rooted at a directory containing
	// starkeeper.yaml.
	Project struct {
		root   string
		config *config.Config
	}
)

// New creates a Project for the given root directory. The directory must
// already exist.
func New(path string) *Project {
	return &Project{root: path}
}

// Root returns the project root directory.
func (p *Project) Root() string {
	return p.root
}

// Initialize sets up the workspace, creating only what is missing:
// starkeeper.yaml with defaults and the backup directory. When options
// override the provider or model, the generated config is rewritten
// (existing configs are never touched).
func (p *Project) Initialize(options InitOptions) error {
	if err := p.ensureDirectory(); err != nil {
		return err
	}

	created := make(map[string]bool)
	for path, entry := range image {
		fullPath := filepath.Join(p.root, path)

		if _, err := os.Stat(fullPath); err == nil {
			continue
		} else if !os.IsNotExist(err) {
			return errors.Wrapf(err, "failed to stat %s", fullPath)
		}

		if entry.Mode.IsDir() {
			if err := os.MkdirAll(fullPath, entry.Mode.Perm()); err != nil {
				return errors.Wrapf(err, "failed to create directory %s", fullPath)
			}
			continue
		}

		if err := os.WriteFile(fullPath, entry.Data, consts.ModeFile); err != nil {
			return errors.Wrapf(err, "failed to write file %s", fullPath)
		}
		created[path] = true
	}

	cfg, err := config.LoadConfigFile(filepath.Join(p.root, consts.ConfigFile))
	if err != nil {
		return errors.Wrapf(err, "failed to load %s", consts.ConfigFile)
	}

	// Option overrides only apply to a config this run created.
	if created[consts.ConfigFile] && (options.Provider != "" || options.Model != "") {
		if options.Provider != "" {
			cfg.LLM.Provider = options.Provider
		}
		if options.Model != "" {
			cfg.LLM.Model = options.Model
		}

		if err := p.writeConfig(cfg); err != nil {
			return err
		}
	}

	p.config = cfg
	return nil
}

// Config returns the project configuration, loading it on first use.
func (p *Project) Config() (*config.Config, error) {
	if p.config != nil {
		return p.config, nil
	}

	cfg, err := config.LoadConfigFile(filepath.Join(p.root, consts.ConfigFile))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", consts.ConfigFile)
	}

	p.config = cfg
	return cfg, nil
}

// BackupDir returns the absolute backup directory for the project.
func (p *Project) BackupDir() (string, error) {
	cfg, err := p.Config()
	if err != nil {
		return "", err
	}

	dir := cfg.Backups.Dir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(p.root, dir)
	}

	return dir, nil
}

func (p *Project) writeConfig(cfg *config.Config) error {
	path := filepath.Join(p.root, consts.ConfigFile)

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to open config file for writing: %s", path)
	}
	defer f.Close()

	encoder := yaml.NewEncoder(f)
	if err := encoder.Encode(cfg); err != nil {
		return errors.Wrap(err, "failed to write updated config")
	}

	return errors.Wrap(encoder.Close(), "failed to close yaml encoder")
}

func (p *Project) ensureDirectory() error {
	dir, err := os.Stat(p.root)
	if err != nil {
		return errors.Wrapf(err, "failed to stat dir: %s", p.root)
	}

	if !dir.IsDir() {
		return errors.Errorf("%s is not a directory", p.root)
	}

	return nil
}
