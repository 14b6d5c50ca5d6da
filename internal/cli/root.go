// Package cli implements the ctxpipe command tree.
package cli

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"ctxpipe/internal/config"
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	var (
		cfgPath  string
		logLevel string
	)

	cmd := &cobra.Command{
		Use:   "ctxpipe",
		Short: "Chat history preprocessing pipeline",
		Long: `ctxpipe preprocesses a chat history before it is sent to a model:
it caps message counts, enforces exact token budgets, and scrubs secrets,
all on a copy — the canonical conversation is never modified.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgPath, "config", DefaultConfigPath(), "config file path")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")

	cmd.AddCommand(
		NewApplyCmd(&cfgPath, &logLevel),
		NewServeCmd(&cfgPath, &logLevel),
		NewInitCmd(&cfgPath),
		NewVersionCmd(),
	)
	return cmd
}

// DefaultConfigPath returns ~/.ctxpipe/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".ctxpipe", "config.yaml")
}

func newLogger(cfg *config.Config, override string) zerolog.Logger {
	level := cfg.Log.Level
	if override != "" {
		level = override
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(lvl).
		With().Timestamp().Logger()
}
