// Package config loads the repohealth configuration. A global config under
// the user config dir is merged with a local .repohealth.yaml; local values
// take precedence. The GitHub token is only ever read from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/spiffcs/repohealth/internal/score"
)

// Config represents the application configuration.
type Config struct {
	DataDir     string   `yaml:"data_dir,omitempty"`
	ExcludeBots []string `yaml:"exclude_bots,omitempty"`

	Weights *WeightOverrides        `yaml:"weights,omitempty"`
	Targets map[string]score.Target `yaml:"targets,omitempty"`
}

// WeightOverrides allows customizing the category weights. Unset fields keep
// their defaults; set fields must still sum to 1.0 with the rest.
type WeightOverrides struct {
	Execution *float64 `yaml:"execution,omitempty"`
	Community *float64 `yaml:"community,omitempty"`
	Backlog   *float64 `yaml:"backlog,omitempty"`
}

// DefaultExcludeBots returns the bot logins excluded from first-response
// detection by default. Matching is case-insensitive.
func DefaultExcludeBots() []string {
	return []string{"codecov[bot]"}
}

// GetExcludeBots returns the configured bot exclusion list, or the defaults.
func (c *Config) GetExcludeBots() []string {
	if len(c.ExcludeBots) > 0 {
		return c.ExcludeBots
	}
	return DefaultExcludeBots()
}

// GetWeights returns the category weights with user overrides applied.
func (c *Config) GetWeights() score.Weights {
	weights := score.DefaultWeights()
	if c.Weights == nil {
		return weights
	}
	if c.Weights.Execution != nil {
		weights.Execution = *c.Weights.Execution
	}
	if c.Weights.Community != nil {
		weights.Community = *c.Weights.Community
	}
	if c.Weights.Backlog != nil {
		weights.Backlog = *c.Weights.Backlog
	}
	return weights
}

// GetTargets returns the target bands with user overrides merged over the
// defaults by metric name.
func (c *Config) GetTargets() map[string]score.Target {
	targets := score.DefaultTargets()
	for name, t := range c.Targets {
		targets[name] = t
	}
	return targets
}

// GetDataDir returns the directory raw fetch output is stored in.
func (c *Config) GetDataDir() string {
	if c.DataDir != "" {
		return c.DataDir
	}
	return "data"
}

// GetGitHubToken returns the GitHub token from the GITHUB_TOKEN environment
// variable. Tokens never live in config files.
func (c *Config) GetGitHubToken() string {
	return os.Getenv("GITHUB_TOKEN")
}

// DefaultConfigDir returns the default config directory.
func DefaultConfigDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ".repohealth"
	}
	return filepath.Join(configDir, "repohealth")
}

// ConfigPath returns the path to the global config file.
func ConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// LocalConfigPath returns the path to the local config file in the current
// directory.
func LocalConfigPath() string {
	return ".repohealth.yaml"
}

// ConfigPaths describes the global and local config file locations.
type ConfigPaths struct {
	GlobalPath   string
	GlobalExists bool
	LocalPath    string
	LocalExists  bool
}

// GetConfigPaths returns the config file locations and whether each exists.
func GetConfigPaths() ConfigPaths {
	paths := ConfigPaths{
		GlobalPath: ConfigPath(),
		LocalPath:  LocalConfigPath(),
	}
	if _, err := os.Stat(paths.GlobalPath); err == nil {
		paths.GlobalExists = true
	}
	if _, err := os.Stat(paths.LocalPath); err == nil {
		paths.LocalExists = true
	}
	return paths
}

// DefaultConfig returns a config populated with every default value, suitable
// for rendering with 'config defaults'.
func DefaultConfig() *Config {
	weights := score.DefaultWeights()
	return &Config{
		DataDir:     "data",
		ExcludeBots: DefaultExcludeBots(),
		Weights: &WeightOverrides{
			Execution: &weights.Execution,
			Community: &weights.Community,
			Backlog:   &weights.Backlog,
		},
		Targets: score.DefaultTargets(),
	}
}

// ToYAML renders the config as YAML.
func (c *Config) ToYAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config to YAML: %w", err)
	}
	return string(data), nil
}

// Load loads the configuration from disk: global config first, local config
// merged on top.
func Load() (*Config, error) {
	cfg := &Config{}

	globalPath := ConfigPath()
	if _, err := os.Stat(globalPath); err == nil {
		data, err := os.ReadFile(globalPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read global config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse global config file: %w", err)
		}
	}

	localPath := LocalConfigPath()
	if _, err := os.Stat(localPath); err == nil {
		data, err := os.ReadFile(localPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read local config file: %w", err)
		}
		var localCfg Config
		if err := yaml.Unmarshal(data, &localCfg); err != nil {
			return nil, fmt.Errorf("failed to parse local config file: %w", err)
		}
		cfg = mergeConfig(cfg, &localCfg)
	}

	return cfg, nil
}

// mergeConfig merges local config on top of global config. Local values take
// precedence; unset local values preserve global values.
func mergeConfig(global, local *Config) *Config {
	result := &Config{}

	if local.DataDir != "" {
		result.DataDir = local.DataDir
	} else {
		result.DataDir = global.DataDir
	}

	if len(local.ExcludeBots) > 0 {
		result.ExcludeBots = local.ExcludeBots
	} else {
		result.ExcludeBots = global.ExcludeBots
	}

	result.Weights = mergeWeightOverrides(global.Weights, local.Weights)

	if len(global.Targets) > 0 || len(local.Targets) > 0 {
		result.Targets = make(map[string]score.Target)
		for name, t := range global.Targets {
			result.Targets[name] = t
		}
		for name, t := range local.Targets {
			result.Targets[name] = t
		}
	}

	return result
}

func mergeWeightOverrides(global, local *WeightOverrides) *WeightOverrides {
	if global == nil && local == nil {
		return nil
	}
	result := &WeightOverrides{}

	if global != nil {
		result.Execution = global.Execution
		result.Community = global.Community
		result.Backlog = global.Backlog
	}
	if local != nil {
		if local.Execution != nil {
			result.Execution = local.Execution
		}
		if local.Community != nil {
			result.Community = local.Community
		}
		if local.Backlog != nil {
			result.Backlog = local.Backlog
		}
	}

	if result.Execution == nil && result.Community == nil && result.Backlog == nil {
		return nil
	}
	return result
}

// Save saves the configuration to the global config path.
func (c *Config) Save() error {
	configDir := DefaultConfigDir()

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(), data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveTo writes raw config content to the given path, creating parent
// directories as needed.
func SaveTo(path, content string) error {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// MinimalConfig returns a starter config template with comments.
func MinimalConfig() string {
	return `# repohealth configuration file

# Directory raw fetch output is stored in
data_dir: data

# Bot accounts excluded from first-response detection (optional)
# exclude_bots:
#   - codecov[bot]
#   - dependabot[bot]

# Override category weights (optional, must sum to 1.0)
# weights:
#   execution: 0.4
#   community: 0.4
#   backlog: 0.2

# Override target bands per metric (optional)
# targets:
#   median_merge_days: {good: 1, bad: 30}
#   return_rate_pct: {good: 60, bad: 10}
`
}
