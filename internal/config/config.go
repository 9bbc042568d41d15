// Package config loads basketprune settings from defaults, an optional YAML
// file and BASKETPRUNE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Dir returns the basketprune config directory, respecting XDG_CONFIG_HOME.
// Defaults to ~/.config/basketprune if XDG_CONFIG_HOME is not set.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "basketprune"), nil
}

// Config is the complete application configuration.
type Config struct {
	Mining  MiningConfig  `mapstructure:"mining"`
	Storage StorageConfig `mapstructure:"storage"`
	Logging LoggingConfig `mapstructure:"logging"`
	Server  ServerConfig  `mapstructure:"server"`
}

// MiningConfig holds the default thresholds for mine, rules and serve.
type MiningConfig struct {
	MinSupport    float64 `mapstructure:"min_support" validate:"gt=0,lte=1"`
	MinConfidence float64 `mapstructure:"min_confidence" validate:"gt=0,lte=1"`
	MaxLen        int     `mapstructure:"max_len" validate:"gte=0"`
	Workers       int     `mapstructure:"workers" validate:"gte=0"`
}

// StorageConfig holds the dataset database location.
type StorageConfig struct {
	DBPath string `mapstructure:"db_path" validate:"required"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=trace debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=console json"`
}

// ServerConfig holds the web UI settings.
type ServerConfig struct {
	Addr      string `mapstructure:"addr" validate:"required,hostname_port"`
	RateLimit int    `mapstructure:"rate_limit" validate:"gte=0"` // requests per minute per client, 0 disables
	Dataset   string `mapstructure:"dataset"`                     // stored dataset served by default
}

// Load reads configuration from defaults, the file at path and the
// environment. An empty path reads {Dir()}/config.yaml when it exists.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("BASKETPRUNE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		dir, err := Dir()
		if err == nil {
			if candidate := filepath.Join(dir, "config.yaml"); fileExists(candidate) {
				path = candidate
			}
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Storage.DBPath = expandHome(cfg.Storage.DBPath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration with no file or environment applied.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Mining: MiningConfig{
			MinSupport:    0.3,
			MinConfidence: 0.7,
		},
		Storage: StorageConfig{
			DBPath: filepath.Join(home, ".basketprune", "basketprune.db"),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Server: ServerConfig{
			Addr:      "127.0.0.1:5000",
			RateLimit: 60,
		},
	}
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("mining.min_support", d.Mining.MinSupport)
	v.SetDefault("mining.min_confidence", d.Mining.MinConfidence)
	v.SetDefault("mining.max_len", d.Mining.MaxLen)
	v.SetDefault("mining.workers", d.Mining.Workers)

	v.SetDefault("storage.db_path", d.Storage.DBPath)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.rate_limit", d.Server.RateLimit)
	v.SetDefault("server.dataset", d.Server.Dataset)
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Report fields by their config key rather than the Go name.
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
	})
	return validate
}

// Validate checks that all configuration values are valid.
func (c *Config) Validate() error {
	err := getValidator().Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("invalid config: %w", err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		key := strings.TrimPrefix(fe.Namespace(), "Config.")
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s (got %v)", key, fe.Tag(), fe.Param(), fe.Value()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s (got %v)", key, fe.Tag(), fe.Value()))
		}
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
