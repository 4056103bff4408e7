package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/litemodel/cli/internal/version"
)

// newVersionCommand creates the version command.
func newVersionCommand() *cobra.Command {
	var require string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Print version information. With --require, fail unless the version satisfies the constraint.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Get()
			if require != "" {
				ok, err := info.Satisfies(require)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("litemodel %s does not satisfy %q", info.Version, require)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), info.FullString())
			return nil
		},
	}

	cmd.Flags().StringVar(&require, "require", "", `version constraint to check, e.g. ">= 0.1, < 1.0"`)
	return cmd
}
