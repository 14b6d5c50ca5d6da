// Package config loads and persists ctxpipe configuration and builds the
// transform chain it describes.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"ctxpipe/internal/pipeline"
)

// ErrUnknownStage indicates a pipeline stage type with no factory.
var ErrUnknownStage = errors.New("config: unknown pipeline stage type")

// Config is the root configuration.
type Config struct {
	Log      LogConfig     `mapstructure:"log" yaml:"log"`
	Server   ServerConfig  `mapstructure:"server" yaml:"server"`
	Storage  StorageConfig `mapstructure:"storage" yaml:"storage"`
	Pipeline []StageConfig `mapstructure:"pipeline" yaml:"pipeline"`
}

// LogConfig controls the advisory logger.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// ServerConfig configures the HTTP service.
type ServerConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`
}

// StorageConfig configures the report log. An empty path disables it.
type StorageConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// StageConfig describes one pipeline stage. Stages run in list order; the
// order in the config file is the order of application.
type StageConfig struct {
	Type string `mapstructure:"type" yaml:"type"`

	// history_limiter
	MaxMessages       int  `mapstructure:"max_messages" yaml:"max_messages,omitempty"`
	KeepLeadingSystem bool `mapstructure:"keep_leading_system" yaml:"keep_leading_system,omitempty"`

	// token_limiter; nil budget keys mean unbounded, zero is a real budget
	Model               string `mapstructure:"model" yaml:"model,omitempty"`
	MaxTokens           *int   `mapstructure:"max_tokens" yaml:"max_tokens,omitempty"`
	MaxTokensPerMessage *int   `mapstructure:"max_tokens_per_message" yaml:"max_tokens_per_message,omitempty"`
	MinTokens           int    `mapstructure:"min_tokens" yaml:"min_tokens,omitempty"`

	// redact
	Pattern     string `mapstructure:"pattern" yaml:"pattern,omitempty"`
	Replacement string `mapstructure:"replacement" yaml:"replacement,omitempty"`
}

// Load reads the config file at path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	applyDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Save writes cfg to path as YAML, creating parent directories.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}

// Build constructs the transform chain described by cfg.Pipeline. All
// misconfiguration — an unknown stage type, an unknown model, an invalid
// pattern — surfaces here, before any conversation is processed.
func Build(cfg *Config) ([]pipeline.Transform, error) {
	transforms := make([]pipeline.Transform, 0, len(cfg.Pipeline))
	for i, stage := range cfg.Pipeline {
		t, err := buildStage(stage)
		if err != nil {
			return nil, fmt.Errorf("pipeline stage %d (%q): %w", i, stage.Type, err)
		}
		transforms = append(transforms, t)
	}
	return transforms, nil
}

func buildStage(stage StageConfig) (pipeline.Transform, error) {
	switch stage.Type {
	case "history_limiter":
		if stage.MaxMessages < 0 {
			return nil, fmt.Errorf("max_messages must be >= 0, got %d", stage.MaxMessages)
		}
		return pipeline.NewHistoryLimiter(pipeline.HistoryLimiterConfig{
			MaxMessages:       stage.MaxMessages,
			KeepLeadingSystem: stage.KeepLeadingSystem,
		}), nil

	case "token_limiter":
		tcfg := pipeline.DefaultTokenLimiterConfig()
		tcfg.Model = stage.Model
		tcfg.MinTokens = stage.MinTokens
		if stage.MaxTokens != nil {
			tcfg.MaxTokens = *stage.MaxTokens
		}
		if stage.MaxTokensPerMessage != nil {
			tcfg.MaxTokensPerMessage = *stage.MaxTokensPerMessage
		}
		return pipeline.NewTokenLimiter(tcfg)

	case "redact":
		pattern := stage.Pattern
		if pattern == "" {
			pattern = pipeline.DefaultSecretPattern
		}
		replacement := stage.Replacement
		if replacement == "" {
			replacement = pipeline.DefaultReplacement
		}
		return pipeline.NewRedactor(pattern, replacement)
	}
	return nil, ErrUnknownStage
}
