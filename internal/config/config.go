// Package config handles configuration loading and management for nexus.
// It supports XDG config paths, project-level overrides, and environment variables.
// A loaded *Config is passed explicitly to every component that needs it.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Provider names accepted in model.provider.
const (
	ProviderAnthropic = "anthropic"
	ProviderBedrock   = "bedrock"
	ProviderOpenAI    = "openai"
)

// Pipeline modes accepted in pipeline.mode.
const (
	ModeSequential = "sequential"
	ModeConcurrent = "concurrent"
)

// Config holds all configuration for nexus.
type Config struct {
	Model      ModelConfig      `mapstructure:"model"`
	Execution  ExecutionConfig  `mapstructure:"execution"`
	Validation ValidationConfig `mapstructure:"validation"`
	Pipeline   PipelineConfig   `mapstructure:"pipeline"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Storage    StorageConfig    `mapstructure:"storage"`
	// AgentsFile is an optional YAML file with custom agent definitions.
	AgentsFile string `mapstructure:"agents_file"`
}

// ModelConfig holds the model transport settings.
type ModelConfig struct {
	// Provider selects the transport: anthropic, bedrock or openai.
	Provider string `mapstructure:"provider"`
	// APIKey authenticates with the provider. ${VAR} references are expanded.
	APIKey string `mapstructure:"api_key"`
	// Endpoint is the base URL for OpenAI-compatible providers (e.g. Groq).
	Endpoint string `mapstructure:"endpoint"`
	// Name is the default model name.
	Name string `mapstructure:"name"`
	// Temperature is the default sampling temperature.
	Temperature float64 `mapstructure:"temperature"`
	// MaxTokens caps a single completion.
	MaxTokens int `mapstructure:"max_tokens"`
	// Timeout bounds a single transport call.
	Timeout time.Duration `mapstructure:"timeout"`
	// AWSRegion and AWSProfile configure Bedrock credentials.
	AWSRegion  string `mapstructure:"aws_region"`
	AWSProfile string `mapstructure:"aws_profile"`
}

// ExecutionConfig holds settings for running generated code.
type ExecutionConfig struct {
	// Interpreter is the program invoked as "<interpreter> <script>".
	Interpreter string `mapstructure:"interpreter"`
	// Timeout is the wall-clock limit for one run. The child is killed when exceeded.
	Timeout time.Duration `mapstructure:"timeout"`
	// WorkDir is where transient scripts are written. Empty means os.TempDir().
	WorkDir string `mapstructure:"work_dir"`
	// ExecuteValid runs generated code after it validates cleanly.
	ExecuteValid bool `mapstructure:"execute_valid"`
}

// ValidationConfig holds the style linter and formatter commands.
type ValidationConfig struct {
	// Linter is the command line used to lint a file; the path is appended.
	Linter []string `mapstructure:"linter"`
	// Formatters are stdin-to-stdout filters applied in order to generated code.
	Formatters [][]string `mapstructure:"formatters"`
	// CacheSize is the number of memoized validation reports.
	CacheSize int `mapstructure:"cache_size"`
	// Timeout bounds a single syntax compile, linter or formatter run.
	Timeout time.Duration `mapstructure:"timeout"`
}

// PipelineConfig holds orchestrator settings.
type PipelineConfig struct {
	// MaxWorkers is the concurrency limit of the concurrent pipeline.
	MaxWorkers int `mapstructure:"max_workers"`
	// Mode is the default pipeline mode: sequential or concurrent.
	Mode string `mapstructure:"mode"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Level   string `mapstructure:"level"`
	// File receives debug-level JSON logs when set.
	File string `mapstructure:"file"`
}

// StorageConfig holds artifact store settings.
type StorageConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Dir     string `mapstructure:"dir"`
	// DBPath is the sqlite index. Empty means <dir>/artifacts.db.
	DBPath string `mapstructure:"db_path"`
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (NEXUS_*, ANTHROPIC_API_KEY, GROQ_API_KEY, OPENAI_API_KEY)
// 2. Project config (.nexus.yaml in current directory or parent)
// 3. User config (~/.config/nexus/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	bindEnv(v)

	return unmarshal(v)
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Model.APIKey = expandEnv(cfg.Model.APIKey)
	cfg.Model.Endpoint = expandEnv(cfg.Model.Endpoint)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("NEXUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Provider-native key names, checked after NEXUS_MODEL_API_KEY.
	v.BindEnv("model.api_key", "NEXUS_MODEL_API_KEY", "ANTHROPIC_API_KEY", "GROQ_API_KEY", "OPENAI_API_KEY")
}

// Validate checks values that would otherwise fail late at run time.
func (c *Config) Validate() error {
	var errs []error

	switch c.Model.Provider {
	case ProviderAnthropic, ProviderBedrock, ProviderOpenAI:
	default:
		errs = append(errs, fmt.Errorf("model.provider: unknown provider %q", c.Model.Provider))
	}
	if c.Model.Provider == ProviderOpenAI && c.Model.Endpoint == "" {
		errs = append(errs, errors.New("model.endpoint: required for openai provider"))
	}
	if c.Model.Temperature < 0 || c.Model.Temperature > 2 {
		errs = append(errs, fmt.Errorf("model.temperature: %v out of range [0, 2]", c.Model.Temperature))
	}
	if c.Execution.Interpreter == "" {
		errs = append(errs, errors.New("execution.interpreter: required"))
	}
	if c.Execution.Timeout <= 0 {
		errs = append(errs, errors.New("execution.timeout: must be positive"))
	}
	if c.Pipeline.MaxWorkers < 1 {
		errs = append(errs, fmt.Errorf("pipeline.max_workers: %d must be at least 1", c.Pipeline.MaxWorkers))
	}
	switch c.Pipeline.Mode {
	case ModeSequential, ModeConcurrent:
	default:
		errs = append(errs, fmt.Errorf("pipeline.mode: unknown mode %q", c.Pipeline.Mode))
	}

	return errors.Join(errs...)
}

// Save writes the configuration to the user config file.
// The API key is only written when it was not sourced from the environment.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return SaveTo(cfg, filepath.Join(userConfigDir, "config.yaml"))
}

// SaveTo writes the configuration to path.
func SaveTo(cfg *Config, path string) error {
	v := viper.New()
	v.SetConfigFile(path)

	v.Set("model.provider", cfg.Model.Provider)
	if GetAPIKeySource(cfg) != KeySourceEnv {
		v.Set("model.api_key", cfg.Model.APIKey)
	}
	v.Set("model.endpoint", cfg.Model.Endpoint)
	v.Set("model.name", cfg.Model.Name)
	v.Set("model.temperature", cfg.Model.Temperature)
	v.Set("model.max_tokens", cfg.Model.MaxTokens)
	v.Set("model.timeout", cfg.Model.Timeout.String())
	v.Set("model.aws_region", cfg.Model.AWSRegion)
	v.Set("model.aws_profile", cfg.Model.AWSProfile)
	v.Set("execution.interpreter", cfg.Execution.Interpreter)
	v.Set("execution.timeout", cfg.Execution.Timeout.String())
	v.Set("execution.work_dir", cfg.Execution.WorkDir)
	v.Set("execution.execute_valid", cfg.Execution.ExecuteValid)
	v.Set("validation.linter", cfg.Validation.Linter)
	v.Set("validation.formatters", cfg.Validation.Formatters)
	v.Set("validation.cache_size", cfg.Validation.CacheSize)
	v.Set("validation.timeout", cfg.Validation.Timeout.String())
	v.Set("pipeline.max_workers", cfg.Pipeline.MaxWorkers)
	v.Set("pipeline.mode", cfg.Pipeline.Mode)
	v.Set("logging.enabled", cfg.Logging.Enabled)
	v.Set("logging.level", cfg.Logging.Level)
	v.Set("logging.file", cfg.Logging.File)
	v.Set("storage.enabled", cfg.Storage.Enabled)
	v.Set("storage.dir", cfg.Storage.Dir)
	v.Set("storage.db_path", cfg.Storage.DBPath)
	v.Set("agents_file", cfg.AgentsFile)

	return v.WriteConfigAs(path)
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

	v.SetDefault("model.provider", d.Model.Provider)
	v.SetDefault("model.api_key", "")
	v.SetDefault("model.endpoint", "")
	v.SetDefault("model.name", d.Model.Name)
	v.SetDefault("model.temperature", d.Model.Temperature)
	v.SetDefault("model.max_tokens", d.Model.MaxTokens)
	v.SetDefault("model.timeout", d.Model.Timeout.String())
	v.SetDefault("model.aws_region", "")
	v.SetDefault("model.aws_profile", "")

	v.SetDefault("execution.interpreter", d.Execution.Interpreter)
	v.SetDefault("execution.timeout", d.Execution.Timeout.String())
	v.SetDefault("execution.work_dir", "")
	v.SetDefault("execution.execute_valid", d.Execution.ExecuteValid)

	v.SetDefault("validation.linter", d.Validation.Linter)
	v.SetDefault("validation.formatters", d.Validation.Formatters)
	v.SetDefault("validation.cache_size", d.Validation.CacheSize)
	v.SetDefault("validation.timeout", d.Validation.Timeout.String())

	v.SetDefault("pipeline.max_workers", d.Pipeline.MaxWorkers)
	v.SetDefault("pipeline.mode", d.Pipeline.Mode)

	v.SetDefault("logging.enabled", d.Logging.Enabled)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file", "")

	v.SetDefault("storage.enabled", d.Storage.Enabled)
	v.SetDefault("storage.dir", d.Storage.Dir)
	v.SetDefault("storage.db_path", "")

	v.SetDefault("agents_file", "")
}

// getUserConfigDir returns the XDG config directory for nexus.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "nexus")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "nexus")
	}
	return filepath.Join(home, ".config", "nexus")
}

// findProjectConfig searches for .nexus.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".nexus.yaml")
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
		Model: ModelConfig{
			Provider:    ProviderAnthropic,
			Name:        "claude-sonnet-4-20250514",
			Temperature: 0.7,
			MaxTokens:   4096,
			Timeout:     2 * time.Minute,
		},
		Execution: ExecutionConfig{
			Interpreter:  "python3",
			Timeout:      30 * time.Second,
			ExecuteValid: true,
		},
		Validation: ValidationConfig{
			Linter: []string{"flake8"},
			Formatters: [][]string{
				{"black", "-q", "-"},
				{"isort", "-"},
			},
			CacheSize: 128,
			Timeout:   30 * time.Second,
		},
		Pipeline: PipelineConfig{
			MaxWorkers: 5,
			Mode:       ModeSequential,
		},
		Logging: LoggingConfig{
			Enabled: true,
			Level:   "info",
		},
		Storage: StorageConfig{
			Enabled: true,
			Dir:     "datafiles",
		},
	}
}

// ArtifactDBPath returns the sqlite index path for the artifact store.
func (c *Config) ArtifactDBPath() string {
	if c.Storage.DBPath != "" {
		return c.Storage.DBPath
	}
	return filepath.Join(c.Storage.Dir, "artifacts.db")
}
