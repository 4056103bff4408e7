package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/litemodel/cli/internal/ui"
	"github.com/satishbabariya/litemodel/query"
	"github.com/satishbabariya/litemodel/query/sqlgen"
)

// newExplainCommand creates the explain command.
func newExplainCommand(opts *globalOptions) *cobra.Command {
	qopts := &queryOptions{}
	var raw bool

	cmd := &cobra.Command{
		Use:   "explain <table>",
		Short: "Show the SQL and parameters a query compiles to",
		Long:  "Compile a filtered SELECT for the configured provider without connecting to the database.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			gen := sqlgen.NewGenerator(sqlgen.DialectFor(cfg.Provider))
			q, err := qopts.apply(query.New(args[0], nil, query.WithGenerator(gen)), qopts.where)
			if err != nil {
				return err
			}
			stmt, err := q.Statement()
			if err != nil {
				return err
			}

			if raw {
				fmt.Fprintln(cmd.OutOrStdout(), stmt.SQL)
				fmt.Fprintf(cmd.OutOrStdout(), "%v\n", stmt.Args)
				return nil
			}
			return ui.PrintMarkdown(explainMarkdown(q, gen.Dialect(), stmt))
		},
	}

	qopts.bind(cmd, true)
	cmd.Flags().BoolVar(&raw, "raw", false, "print plain SQL and parameters")
	return cmd
}

// explainMarkdown documents a compiled statement.
func explainMarkdown(q *query.Query, d sqlgen.Dialect, stmt *sqlgen.Query) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", q.Table())
	fmt.Fprintf(&sb, "**Dialect:** %s\n\n", d)
	if cond := q.Condition(); cond != nil {
		fmt.Fprintf(&sb, "**Condition:** `%s`\n\n", cond)
	}
	fmt.Fprintf(&sb, "```sql\n%s\n```\n", stmt.SQL)

	if len(stmt.Args) > 0 {
		sb.WriteString("\n| # | Placeholder | Value | Go type |\n|---|---|---|---|\n")
		for i, arg := range stmt.Args {
			fmt.Fprintf(&sb, "| %d | `%s` | `%v` | %T |\n", i+1, d.Placeholder(i), arg, arg)
		}
	}
	return sb.String()
}
