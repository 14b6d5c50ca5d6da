package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ctxpipe/internal/config"
)

// NewInitCmd creates the init command.
func NewInitCmd(cfgPath *string) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(*cfgPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", *cfgPath)
			}
			if err := config.Save(config.Default(), *cfgPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", *cfgPath)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config")
	return cmd
}
