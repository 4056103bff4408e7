// Package commands implements CLI commands.
package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/litemodel/cli/internal/version"
	"github.com/satishbabariya/litemodel/internal/debug"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	provider   string
	url        string
	debug      bool
}

// NewRootCommand creates the litemodel command tree.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "litemodel",
		Short: "Query SQL databases with typed filter expressions",
		Long: `litemodel compiles filter expressions such as

    age >= 18 and not (name contains "bot" or deleted_at is null)

into parameterized SQL for PostgreSQL, MySQL, SQLite and DuckDB.`,
		Version:       version.Get().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.debug {
				debug.Init(true)
			}
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "config file (default: search for .litemodel.yaml)")
	pf.StringVar(&opts.provider, "provider", "", "database provider: postgresql, mysql, sqlite or duckdb")
	pf.StringVar(&opts.url, "url", "", "database URL (overrides config and DATABASE_URL)")
	pf.BoolVar(&opts.debug, "debug", false, "log executed statements to stderr")

	cmd.AddCommand(newInitCommand(opts))
	cmd.AddCommand(newQueryCommand(opts))
	cmd.AddCommand(newExplainCommand(opts))
	cmd.AddCommand(newWatchCommand(opts))
	cmd.AddCommand(newVersionCommand())

	return cmd
}

// Execute is the main entry point for the CLI
func Execute() error {
	return NewRootCommand().ExecuteContext(context.Background())
}
