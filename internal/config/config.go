package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/oxidecomputer/bump-omicron/internal/defaults"
	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds the settings for a bump run
type Config struct {
	// OmicronDir is the sibling checkout, relative to the console checkout
	OmicronDir string `yaml:"omicron_dir"`

	// VersionFile is relative to OmicronDir
	VersionFile string `yaml:"version_file"`

	// ArtifactURL contains a {commit} placeholder
	ArtifactURL string `yaml:"artifact_url"`

	BaseBranch     string `yaml:"base_branch"`
	BranchPrefix   string `yaml:"branch_prefix"`
	Remote         string `yaml:"remote"`
	ConsoleRepo    string `yaml:"console_repo"`
	UploadWorkflow string `yaml:"upload_workflow"`
}

// envOverrides lists the settings that can be changed from the environment
type envOverrides struct {
	OmicronDir  string `env:"BUMP_OMICRON_DIR"`
	VersionFile string `env:"BUMP_OMICRON_VERSION_FILE"`
	ArtifactURL string `env:"BUMP_OMICRON_ARTIFACT_URL"`
	BaseBranch  string `env:"BUMP_OMICRON_BASE_BRANCH"`
}

// ConfigFileName is the default configuration file name
const ConfigFileName = ".bump-omicron.yml"

// ErrNoConfigFile is returned by FindConfigFile when no file exists
var ErrNoConfigFile = errors.New("no " + ConfigFileName + " found")

// Default returns the embedded default settings
func Default() (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(defaults.YAML(), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse embedded defaults: %w", err)
	}
	return &cfg, nil
}

// Load reads a configuration file from the given path on top of the defaults.
// Keys missing from the file keep their default values.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// LoadFromDirectory finds and loads the config file from the given directory.
// It searches up the directory tree; when no file exists the defaults are
// returned.
func LoadFromDirectory(dir string) (*Config, error) {
	configPath, err := FindConfigFile(dir)
	if errors.Is(err, ErrNoConfigFile) {
		return Default()
	}
	if err != nil {
		return nil, err
	}
	return Load(configPath)
}

// FindConfigFile searches for .bump-omicron.yml starting from dir and walking up
// the directory tree until found or filesystem root is reached.
func FindConfigFile(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	for {
		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return "", fmt.Errorf("%w in %s or any parent directory", ErrNoConfigFile, startDir)
		}
		dir = parent
	}
}

// ApplyEnv overrides settings from BUMP_OMICRON_* environment variables.
func (c *Config) ApplyEnv(ctx context.Context) error {
	var env envOverrides
	if err := envconfig.Process(ctx, &env); err != nil {
		return fmt.Errorf("failed to process environment: %w", err)
	}

	if env.OmicronDir != "" {
		c.OmicronDir = env.OmicronDir
	}
	if env.VersionFile != "" {
		c.VersionFile = env.VersionFile
	}
	if env.ArtifactURL != "" {
		c.ArtifactURL = env.ArtifactURL
	}
	if env.BaseBranch != "" {
		c.BaseBranch = env.BaseBranch
	}

	return nil
}

// Validate checks that required configuration fields are present
func (c *Config) Validate() error {
	required := []struct {
		key   string
		value string
	}{
		{"omicron_dir", c.OmicronDir},
		{"version_file", c.VersionFile},
		{"artifact_url", c.ArtifactURL},
		{"base_branch", c.BaseBranch},
		{"branch_prefix", c.BranchPrefix},
		{"remote", c.Remote},
		{"console_repo", c.ConsoleRepo},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%s is required", r.key)
		}
	}

	if !strings.Contains(c.ArtifactURL, "{commit}") {
		return fmt.Errorf("artifact_url must contain {commit}: %s", c.ArtifactURL)
	}

	if filepath.IsAbs(c.VersionFile) {
		return fmt.Errorf("version_file must be relative to omicron_dir: %s", c.VersionFile)
	}

	if !validRepo(c.ConsoleRepo) {
		return fmt.Errorf("invalid console_repo format: expected owner/repo, got %s", c.ConsoleRepo)
	}

	return nil
}

func validRepo(repo string) bool {
	parts := strings.Split(repo, "/")
	return len(parts) == 2 && parts[0] != "" && parts[1] != ""
}

// CompareURL returns the GitHub compare view between two console commits.
func (c *Config) CompareURL(from, to string) string {
	return fmt.Sprintf("https://github.com/%s/compare/%s...%s", c.ConsoleRepo, from, to)
}

// CommitURL returns the GitHub page for a console commit.
func (c *Config) CommitURL(sha string) string {
	return fmt.Sprintf("https://github.com/%s/commit/%s", c.ConsoleRepo, sha)
}
