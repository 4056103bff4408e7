package commands

import (
	"github.com/spf13/cobra"

	"github.com/satishbabariya/litemodel/cli/internal/ui"
)

// newQueryCommand creates the query command.
func newQueryCommand(opts *globalOptions) *cobra.Command {
	qopts := &queryOptions{}

	cmd := &cobra.Command{
		Use:   "query <table>",
		Short: "Run a filtered SELECT and print the rows",
		Example: `  litemodel query users --where 'age >= 18' --order name
  litemodel query events -w '(flags & 4) > 0' --desc -o id -n 10`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			c, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer c.Close()

			q, err := qopts.apply(c.Query(args[0]), qopts.where)
			if err != nil {
				return err
			}
			rows, err := fetch(ctx, q)
			if err != nil {
				return err
			}
			return ui.PrintRows(rows)
		},
	}

	qopts.bind(cmd, true)
	return cmd
}
