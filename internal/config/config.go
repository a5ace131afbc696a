// Package config loads detect-releases settings using koanf.
// Priority: environment variables (DETECT_RELEASES_*) > config file > defaults.
// Command-line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "DETECT_RELEASES_"

// DefaultConfigFiles are probed in the project root when no explicit path is given
var DefaultConfigFiles = []string{".detect-releases.yml", ".detect-releases.yaml", ".detect-releases.json"}

// Configuration holds the tool settings
type Configuration struct {
	// Root is the project root. Empty means the enclosing git work tree.
	Root string `koanf:"root"`
	// DiffCommand is the command printing a PR diff; the PR number is appended.
	DiffCommand   []string `koanf:"diff_command"`
	PackagesDir   string   `koanf:"packages_dir"`
	ManifestFile  string   `koanf:"manifest_file"`
	ChangelogFile string   `koanf:"changelog_file"`
	Verbose       bool     `koanf:"verbose"`
}

// GetDefaults returns the default configuration values
func GetDefaults() map[string]any {
	return map[string]any{
		"root":           "",
		"diff_command":   []string{"gh", "pr", "diff"},
		"packages_dir":   "packages",
		"manifest_file":  "package.json",
		"changelog_file": "CHANGELOG.md",
		"verbose":        false,
	}
}

// Load reads configuration from defaults, the config file and the environment.
// configPath may be empty, in which case DefaultConfigFiles are looked up in searchDir.
func Load(configPath, searchDir string) (*Configuration, error) {
	k := koanf.New(".")

	for key, value := range GetDefaults() {
		k.Set(key, value)
	}

	if err := loadConfigFile(k, configPath, searchDir); err != nil {
		return nil, err
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment config: %w", err)
	}

	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadConfigFile loads an explicit config file, or the first default one found
func loadConfigFile(k *koanf.Koanf, configPath, searchDir string) error {
	if configPath != "" {
		return loadFile(k, configPath)
	}

	for _, name := range DefaultConfigFiles {
		path := filepath.Join(searchDir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return loadFile(k, path)
	}

	return nil
}

func loadFile(k *koanf.Koanf, path string) error {
	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return fmt.Errorf("unsupported config format %q", path)
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return fmt.Errorf("failed to load config %s: %w", path, err)
	}
	return nil
}

// envTransform converts environment variable names to config keys.
// Example: DETECT_RELEASES_PACKAGES_DIR -> packages_dir
// DETECT_RELEASES_DIFF_COMMAND is split on whitespace into a command line.
func envTransform(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, envPrefix))
}

// Validate checks that required settings are present
func (c *Configuration) Validate() error {
	c.DiffCommand = splitCommand(c.DiffCommand)

	var errs []error
	if len(c.DiffCommand) == 0 {
		errs = append(errs, errors.New("diff_command must not be empty"))
	}
	if c.PackagesDir == "" {
		errs = append(errs, errors.New("packages_dir must not be empty"))
	}
	if c.ManifestFile == "" {
		errs = append(errs, errors.New("manifest_file must not be empty"))
	}
	if c.ChangelogFile == "" {
		errs = append(errs, errors.New("changelog_file must not be empty"))
	}
	return errors.Join(errs...)
}

// splitCommand accepts a command given either as a list or as a single
// space-separated string (as environment variables provide it)
func splitCommand(parts []string) []string {
	if len(parts) != 1 {
		return parts
	}
	return strings.Fields(parts[0])
}

// SetDiffCommand overrides the diff command from a space-separated string
func (c *Configuration) SetDiffCommand(command string) {
	c.DiffCommand = strings.Fields(command)
}
