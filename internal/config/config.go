// Package config handles configuration loading and management for mastercoder.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ShayCichocki/mastercoder/pkg/models"
)

// ErrInvalidConfig is returned by Validate for out-of-range settings.
var ErrInvalidConfig = errors.New("invalid configuration")

// ErrUnknownKey is returned when setting a key that is not part of Config.
var ErrUnknownKey = errors.New("unknown configuration key")

// Limits enforced by Validate.
const (
	MinParallelAgents = 1
	MaxParallelAgents = 100
	MinTokenBudget    = 1000
	MaxTokenBudget    = 1_000_000
)

// ProjectConfigName is the project-level override file, searched upward
// from the working directory.
const ProjectConfigName = ".mastercoder.yaml"

// Config holds all configuration for mastercoder.
type Config struct {
	Anthropic   AnthropicConfig   `mapstructure:"anthropic"`
	MasterCoder MasterCoderConfig `mapstructure:"master_coder"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Workers     WorkersConfig     `mapstructure:"workers"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
	// Model is the Claude model name. Empty selects the client default.
	Model      string `mapstructure:"model"`
	UseBedrock bool   `mapstructure:"use_bedrock"`
	AWSRegion  string `mapstructure:"aws_region"`
	AWSProfile string `mapstructure:"aws_profile"`
}

// MasterCoderConfig holds planning and execution settings.
type MasterCoderConfig struct {
	DefaultMode       string        `mapstructure:"default_mode"`
	MaxParallelAgents int           `mapstructure:"max_parallel_agents"`
	TokenBudget       int           `mapstructure:"token_budget"`
	EnableLearning    bool          `mapstructure:"enable_learning"`
	WorkerTimeout     time.Duration `mapstructure:"worker_timeout"`
}

// StorageConfig holds persistence settings.
type StorageConfig struct {
	// DatabasePath is the SQLite file. Empty means the XDG data directory.
	DatabasePath string `mapstructure:"database_path"`
}

// LoggingConfig holds debug log settings.
type LoggingConfig struct {
	// DebugLog is the debug log file. Empty means .mastercoder/logs in the
	// working directory.
	DebugLog string `mapstructure:"debug_log"`
}

// WorkersConfig selects how specs are executed.
type WorkersConfig struct {
	// Scripts maps capability names to shell commands. Mapped capabilities
	// run locally instead of through Claude.
	Scripts map[string]string `mapstructure:"scripts"`
	// DryRun makes every worker succeed without doing anything.
	DryRun bool `mapstructure:"dry_run"`
}

// Mode returns the parsed default autonomy mode.
func (c *Config) Mode() (models.AutonomyMode, error) {
	return models.ParseAutonomyMode(c.MasterCoder.DefaultMode)
}

// WorkerScripts returns the script overrides keyed by capability.
func (c *Config) WorkerScripts() (map[models.Capability]string, error) {
	if len(c.Workers.Scripts) == 0 {
		return nil, nil
	}

	scripts := make(map[models.Capability]string, len(c.Workers.Scripts))
	for name, cmd := range c.Workers.Scripts {
		capability, err := models.ParseCapability(name)
		if err != nil {
			return nil, fmt.Errorf("workers.scripts: %w", err)
		}
		scripts[capability] = cmd
	}
	return scripts, nil
}

// Validate checks that every setting is in range.
func (c *Config) Validate() error {
	if _, err := c.Mode(); err != nil {
		return fmt.Errorf("%w: master_coder.default_mode: %v", ErrInvalidConfig, err)
	}

	n := c.MasterCoder.MaxParallelAgents
	if n < MinParallelAgents || n > MaxParallelAgents {
		return fmt.Errorf("%w: master_coder.max_parallel_agents must be between %d and %d, got %d",
			ErrInvalidConfig, MinParallelAgents, MaxParallelAgents, n)
	}

	b := c.MasterCoder.TokenBudget
	if b < MinTokenBudget || b > MaxTokenBudget {
		return fmt.Errorf("%w: master_coder.token_budget must be between %d and %d, got %d",
			ErrInvalidConfig, MinTokenBudget, MaxTokenBudget, b)
	}

	if c.MasterCoder.WorkerTimeout < 0 {
		return fmt.Errorf("%w: master_coder.worker_timeout must not be negative", ErrInvalidConfig)
	}

	if _, err := c.WorkerScripts(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return nil
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (ANTHROPIC_API_KEY, AWS_REGION, AWS_PROFILE, MASTERCODER_*)
// 2. Project config (.mastercoder.yaml in current directory or parent)
// 3. User config (~/.config/mastercoder/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}
	return unmarshal(v)
}

// LoadViper returns the merged viper instance behind Load, for raw key access.
func LoadViper() (*viper.Viper, error) {
	return newViper()
}

func newViper() (*viper.Viper, error) {
	v := viper.New()

	setDefaults(v)

	// Load user config from XDG path
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(getUserConfigDir())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	// Project config takes precedence over user config
	if projectConfig := findProjectConfig(); projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading project config %s: %w", projectConfig, err)
		}
		if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	bindEnv(v)

	return v, nil
}

// bindEnv maps MASTERCODER_MASTER_CODER_TOKEN_BUDGET style variables onto
// keys, plus the well-known Anthropic and AWS variables.
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("MASTERCODER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("anthropic.aws_region", "AWS_REGION")
	v.BindEnv("anthropic.aws_profile", "AWS_PROFILE")
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Expand ${VAR} references
	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)
	cfg.Storage.DatabasePath = expandEnv(cfg.Storage.DatabasePath)
	cfg.Logging.DebugLog = expandEnv(cfg.Logging.DebugLog)

	return cfg, nil
}

// LoadFromPath loads path over the built-in defaults. The layered search and
// environment overrides are skipped.
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	return unmarshal(v)
}

// Save writes cfg to the user config file.
func Save(cfg *Config) error {
	return SaveToPath(cfg, GetUserConfigPath())
}

// SaveToPath writes cfg as YAML to path, creating parent directories.
func SaveToPath(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("anthropic.api_key", cfg.Anthropic.APIKey)
	v.Set("anthropic.model", cfg.Anthropic.Model)
	v.Set("anthropic.use_bedrock", cfg.Anthropic.UseBedrock)
	v.Set("anthropic.aws_region", cfg.Anthropic.AWSRegion)
	v.Set("anthropic.aws_profile", cfg.Anthropic.AWSProfile)
	v.Set("master_coder.default_mode", cfg.MasterCoder.DefaultMode)
	v.Set("master_coder.max_parallel_agents", cfg.MasterCoder.MaxParallelAgents)
	v.Set("master_coder.token_budget", cfg.MasterCoder.TokenBudget)
	v.Set("master_coder.enable_learning", cfg.MasterCoder.EnableLearning)
	v.Set("master_coder.worker_timeout", cfg.MasterCoder.WorkerTimeout.String())
	v.Set("storage.database_path", cfg.Storage.DatabasePath)
	v.Set("logging.debug_log", cfg.Logging.DebugLog)
	v.Set("workers.dry_run", cfg.Workers.DryRun)
	if len(cfg.Workers.Scripts) > 0 {
		v.Set("workers.scripts", cfg.Workers.Scripts)
	}

	return v.WriteConfig()
}

// SetUserValue sets key to value in the user config file. The result is
// validated before it is written. Keys under workers.scripts name a
// capability; every other key must be one of Keys().
func SetUserValue(key, value string) error {
	return setValue(GetUserConfigPath(), key, value)
}

func setValue(path, key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	if !knownKey(key) {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	// An empty key clears it; ${VAR} references are checked when loaded.
	if key == "anthropic.api_key" && value != "" && !strings.HasPrefix(value, "$") {
		if err := ValidateAPIKey(value); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
	}

	v.Set(key, value)

	cfg, err := unmarshal(v)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Written from v so unexpanded ${VAR} references survive.
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return v.WriteConfigAs(path)
}

// Keys returns every settable configuration key in sorted order.
func Keys() []string {
	v := viper.New()
	setDefaults(v)
	keys := v.AllKeys()
	sort.Strings(keys)
	return keys
}

func knownKey(key string) bool {
	if name, ok := strings.CutPrefix(key, "workers.scripts."); ok {
		_, err := models.ParseCapability(name)
		return err == nil
	}
	for _, k := range Keys() {
		if k == key {
			return true
		}
	}
	return false
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("anthropic.api_key", d.Anthropic.APIKey)
	v.SetDefault("anthropic.model", d.Anthropic.Model)
	v.SetDefault("anthropic.use_bedrock", d.Anthropic.UseBedrock)
	v.SetDefault("anthropic.aws_region", d.Anthropic.AWSRegion)
	v.SetDefault("anthropic.aws_profile", d.Anthropic.AWSProfile)

	v.SetDefault("master_coder.default_mode", d.MasterCoder.DefaultMode)
	v.SetDefault("master_coder.max_parallel_agents", d.MasterCoder.MaxParallelAgents)
	v.SetDefault("master_coder.token_budget", d.MasterCoder.TokenBudget)
	v.SetDefault("master_coder.enable_learning", d.MasterCoder.EnableLearning)
	v.SetDefault("master_coder.worker_timeout", d.MasterCoder.WorkerTimeout.String())

	v.SetDefault("storage.database_path", d.Storage.DatabasePath)
	v.SetDefault("logging.debug_log", d.Logging.DebugLog)
	v.SetDefault("workers.dry_run", d.Workers.DryRun)
}

// getUserConfigDir returns the XDG config directory for mastercoder.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "mastercoder")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "mastercoder")
	}
	return filepath.Join(home, ".config", "mastercoder")
}

// findProjectConfig searches for .mastercoder.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ProjectConfigName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// expandEnv expands ${VAR} references in a string.
func expandEnv(s string) string {
	return os.ExpandEnv(s)
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		MasterCoder: MasterCoderConfig{
			DefaultMode:       string(models.AutonomyBalanced),
			MaxParallelAgents: 5,
			TokenBudget:       50000,
			EnableLearning:    true,
			WorkerTimeout:     5 * time.Minute,
		},
	}
}
