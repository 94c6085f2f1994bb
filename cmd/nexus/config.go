package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/agentnexus/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify nexus configuration.

Without arguments, displays current configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), sets the configuration value.

Configuration is stored at ~/.config/nexus/config.yaml
Project-specific overrides can be placed in .nexus.yaml`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		out := cmd.OutOrStdout()
		switch len(args) {
		case 0:
			displayAllConfig(out, cfg)
			return nil
		case 1:
			value, err := getConfigValue(cfg, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(out, value)
			return nil
		default:
			if err := setConfigValue(cfg, args[0], args[1]); err != nil {
				return err
			}
			if err := config.Save(cfg); err != nil {
				return fmt.Errorf("saving config: %w", err)
			}
			fmt.Fprintf(out, "Set %s = %s\n", args[0], args[1])
			return nil
		}
	},
}

var configInitForce bool

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a config file with default values",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.GetUserConfigPath()
		if len(args) == 1 {
			path = args[0]
		}
		if fileExists(path) && !configInitForce {
			printStatus(cmd.OutOrStdout(), "⚠", path+" already exists (use --force to overwrite)", warnColor)
			return nil
		}

		cfg := config.Default()
		var err error
		if len(args) == 1 {
			err = config.SaveTo(cfg, path)
		} else {
			err = config.Save(cfg)
		}
		if err != nil {
			return fmt.Errorf("writing config: %w", err)
		}
		printStatus(cmd.OutOrStdout(), "✓", "Wrote "+path, okColor)
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "Overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
}

// configKey binds a dot-notation key to a config field.
type configKey struct {
	get func(*config.Config) string
	set func(*config.Config, string) error
}

func stringKey(field func(*config.Config) *string) configKey {
	return configKey{
		get: func(c *config.Config) string { return *field(c) },
		set: func(c *config.Config, v string) error { *field(c) = v; return nil },
	}
}

func intKey(field func(*config.Config) *int) configKey {
	return configKey{
		get: func(c *config.Config) string { return strconv.Itoa(*field(c)) },
		set: func(c *config.Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid integer: %w", err)
			}
			*field(c) = n
			return nil
		},
	}
}

func boolKey(field func(*config.Config) *bool) configKey {
	return configKey{
		get: func(c *config.Config) string { return strconv.FormatBool(*field(c)) },
		set: func(c *config.Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid boolean: %w", err)
			}
			*field(c) = b
			return nil
		},
	}
}

func durationKey(field func(*config.Config) *time.Duration) configKey {
	return configKey{
		get: func(c *config.Config) string { return field(c).String() },
		set: func(c *config.Config, v string) error {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid duration: %w", err)
			}
			*field(c) = d
			return nil
		},
	}
}

var configKeys = map[string]configKey{
	"model.provider": stringKey(func(c *config.Config) *string { return &c.Model.Provider }),
	"model.api_key": {
		get: func(c *config.Config) string {
			key, _ := config.GetAPIKey(c)
			return config.MaskAPIKey(key)
		},
		set: func(c *config.Config, v string) error { c.Model.APIKey = v; return nil },
	},
	"model.endpoint": stringKey(func(c *config.Config) *string { return &c.Model.Endpoint }),
	"model.name":     stringKey(func(c *config.Config) *string { return &c.Model.Name }),
	"model.temperature": {
		get: func(c *config.Config) string { return strconv.FormatFloat(c.Model.Temperature, 'g', -1, 64) },
		set: func(c *config.Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid number: %w", err)
			}
			c.Model.Temperature = f
			return nil
		},
	},
	"model.max_tokens":        intKey(func(c *config.Config) *int { return &c.Model.MaxTokens }),
	"model.timeout":           durationKey(func(c *config.Config) *time.Duration { return &c.Model.Timeout }),
	"model.aws_region":        stringKey(func(c *config.Config) *string { return &c.Model.AWSRegion }),
	"model.aws_profile":       stringKey(func(c *config.Config) *string { return &c.Model.AWSProfile }),
	"execution.interpreter":   stringKey(func(c *config.Config) *string { return &c.Execution.Interpreter }),
	"execution.timeout":       durationKey(func(c *config.Config) *time.Duration { return &c.Execution.Timeout }),
	"execution.work_dir":      stringKey(func(c *config.Config) *string { return &c.Execution.WorkDir }),
	"execution.execute_valid": boolKey(func(c *config.Config) *bool { return &c.Execution.ExecuteValid }),
	"validation.linter": {
		get: func(c *config.Config) string { return strings.Join(c.Validation.Linter, " ") },
		set: func(c *config.Config, v string) error { c.Validation.Linter = strings.Fields(v); return nil },
	},
	"validation.cache_size": intKey(func(c *config.Config) *int { return &c.Validation.CacheSize }),
	"validation.timeout":    durationKey(func(c *config.Config) *time.Duration { return &c.Validation.Timeout }),
	"pipeline.max_workers":  intKey(func(c *config.Config) *int { return &c.Pipeline.MaxWorkers }),
	"pipeline.mode":         stringKey(func(c *config.Config) *string { return &c.Pipeline.Mode }),
	"logging.enabled":       boolKey(func(c *config.Config) *bool { return &c.Logging.Enabled }),
	"logging.level":         stringKey(func(c *config.Config) *string { return &c.Logging.Level }),
	"logging.file":          stringKey(func(c *config.Config) *string { return &c.Logging.File }),
	"storage.enabled":       boolKey(func(c *config.Config) *bool { return &c.Storage.Enabled }),
	"storage.dir":           stringKey(func(c *config.Config) *string { return &c.Storage.Dir }),
	"storage.db_path":       stringKey(func(c *config.Config) *string { return &c.Storage.DBPath }),
	"agents_file":           stringKey(func(c *config.Config) *string { return &c.AgentsFile }),
}

// displayAllConfig prints all configuration values.
func displayAllConfig(w io.Writer, cfg *config.Config) {
	keys := make([]string, 0, len(configKeys))
	for k := range configKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s: %s\n", k, configKeys[k].get(cfg))
	}
	fmt.Fprintf(w, "\n%s %s\n", labelStyle.Render("API key source:"), config.GetAPIKeySource(cfg))
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.Config, key string) (string, error) {
	k, ok := configKeys[strings.ToLower(key)]
	if !ok {
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
	return k.get(cfg), nil
}

// setConfigValue sets a configuration value by dot-notation key and
// rejects the result if it no longer validates.
func setConfigValue(cfg *config.Config, key, value string) error {
	k, ok := configKeys[strings.ToLower(key)]
	if !ok {
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	if err := k.set(cfg, value); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return cfg.Validate()
}
