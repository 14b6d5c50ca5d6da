package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"ctxpipe/internal/config"
	"ctxpipe/internal/message"
	"ctxpipe/internal/pipeline"
	"ctxpipe/internal/storage"
)

// NewApplyCmd creates the apply command.
func NewApplyCmd(cfgPath, logLevel *string) *cobra.Command {
	var pretty bool

	cmd := &cobra.Command{
		Use:   "apply [history.json]",
		Short: "Run the configured pipeline over a history",
		Long: `Read a conversation history (a JSON array of messages in the wire
shape) from a file or stdin, apply the configured transform pipeline, and
write the transformed history to stdout. A one-line summary of what changed
is printed to stderr.`,
		Example: `  # Transform a history file
  ctxpipe apply history.json

  # Read from stdin, pretty-print the result
  cat history.json | ctxpipe apply --pretty`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			logger := newLogger(cfg, *logLevel)

			transforms, err := config.Build(cfg)
			if err != nil {
				return err
			}
			p := pipeline.New(transforms...).WithLogger(logger)

			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			var history []message.Message
			if err := json.Unmarshal(data, &history); err != nil {
				return fmt.Errorf("parse history: %w", err)
			}

			result, err := p.Apply(history)
			if err != nil {
				return err
			}

			if cfg.Storage.Path != "" {
				if err := recordRun(cfg.Storage.Path, result); err != nil {
					logger.Warn().Err(err).Msg("failed to record reports")
				}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			if pretty {
				enc.SetIndent("", "  ")
			}
			if err := enc.Encode(result.History); err != nil {
				return err
			}

			if s := result.Summary(); s != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), s)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent the output JSON")
	return cmd
}

func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 1 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return nil, fmt.Errorf("read history: %w", err)
		}
		return data, nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return data, nil
}

func recordRun(path string, result *pipeline.Result) error {
	db, err := storage.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()
	return storage.NewReportStore(db).Record(result)
}
