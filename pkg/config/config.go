// Package config provides configuration management for the allocview CLI.
package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"

	apperrors "github.com/allocview/pkg/errors"
)

// Config holds all configuration for the application.
type Config struct {
	Viewer    ViewerConfig    `mapstructure:"viewer"`
	Profiling ProfilingConfig `mapstructure:"profiling"`
	Project   ProjectConfig   `mapstructure:"project"`
	Log       LogConfig       `mapstructure:"log"`
}

// ViewerConfig holds interactive viewer configuration.
type ViewerConfig struct {
	// MaxPageSize bounds the number of tree lines shown at once.
	MaxPageSize int `mapstructure:"max_page_size"`
	// EditorCommand opens a source location; {file} and {line}
	// placeholders are substituted. Empty falls back to $EDITOR.
	EditorCommand string `mapstructure:"editor_command"`
}

// ProfilingConfig holds allocation sampling configuration.
type ProfilingConfig struct {
	// SampleRate is the fraction of allocations to capture, in (0, 1].
	SampleRate float64 `mapstructure:"sample_rate"`
	// Warmup runs the workload once before sampling.
	Warmup bool `mapstructure:"warmup"`
}

// ProjectConfig identifies the project sources.
type ProjectConfig struct {
	// Roots are the directories whose files count as in-project code.
	// Empty defaults to the working directory.
	Roots []string `mapstructure:"roots"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level"`
	// OutputPath receives session logs; empty discards them so log
	// lines never corrupt the interactive display.
	OutputPath string `mapstructure:"output_path"`
}

// Load reads configuration from the specified file path. An empty path
// searches the standard locations; a missing file is not an error and
// yields the defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("allocview")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home + "/.config/allocview")
		}
	}

	v.SetEnvPrefix("ALLOCVIEW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound && configPath != "" {
			return nil, apperrors.Wrap(apperrors.CodeConfigError, "cannot read config file", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeConfigError, "cannot parse config", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("viewer.max_page_size", 30)
	v.SetDefault("viewer.editor_command", "")
	v.SetDefault("profiling.sample_rate", 0.0001)
	v.SetDefault("profiling.warmup", false)
	v.SetDefault("project.roots", []string{})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.output_path", "")
}

// Validate checks configuration consistency.
func (c *Config) Validate() error {
	if c.Viewer.MaxPageSize <= 0 {
		return apperrors.Newf(apperrors.CodeConfigError,
			"viewer.max_page_size must be positive, got %d", c.Viewer.MaxPageSize)
	}
	if c.Profiling.SampleRate <= 0 || c.Profiling.SampleRate > 1 {
		return apperrors.Newf(apperrors.CodeConfigError,
			"profiling.sample_rate must be in (0, 1], got %g", c.Profiling.SampleRate)
	}
	return nil
}

// ProjectRoots returns the configured project roots, defaulting to the
// working directory.
func (c *Config) ProjectRoots() []string {
	if len(c.Project.Roots) > 0 {
		return c.Project.Roots
	}
	if wd, err := os.Getwd(); err == nil {
		return []string{wd}
	}
	return []string{"."}
}
