package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/satishbabariya/litemodel/cli/internal/config"
	"github.com/satishbabariya/litemodel/cli/internal/ui"
	"github.com/satishbabariya/litemodel/cli/internal/watch"
	"github.com/satishbabariya/litemodel/query"
)

// newWatchCommand creates the watch command.
func newWatchCommand(opts *globalOptions) *cobra.Command {
	qopts := &queryOptions{}

	cmd := &cobra.Command{
		Use:   "watch <filter-file> <table>",
		Short: "Re-run a query whenever its filter file changes",
		Long: `Read a filter expression from a file, run it against the table, and run it
again every time the file is saved. Stop with Ctrl+C.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, table := args[0], args[1]
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			c, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer c.Close()

			run := runFilterFile(ctx, file, c.Query(table), qopts)
			w, err := watch.NewWatcher(file, run, watch.WithErrorHandler(func(err error) {
				ui.PrintError("%v", err)
			}))
			if err != nil {
				return err
			}
			defer w.Stop()

			if err := w.Start(); err != nil {
				return err
			}
			ui.PrintHeader("litemodel watch", fmt.Sprintf("%s on %s (Ctrl+C to stop)", file, table))

			<-ctx.Done()
			return nil
		},
	}

	qopts.bind(cmd, false)
	return cmd
}

// runFilterFile returns a callback that reads the filter in file and prints
// the rows it selects from base.
func runFilterFile(ctx context.Context, file string, base *query.Query, qopts *queryOptions) func() error {
	return func() error {
		data, err := afero.ReadFile(config.AppFs, file)
		if err != nil {
			return err
		}
		q, err := qopts.apply(base, string(data))
		if err != nil {
			return err
		}
		rows, err := fetch(ctx, q)
		if err != nil {
			return err
		}

		label := "all rows"
		if cond := q.Condition(); cond != nil {
			label = cond.String()
		}
		ui.Colors()["primary"].Printf("\n[%s] ", time.Now().Format("15:04:05"))
		ui.Colors()["secondary"].Println(label)
		return ui.PrintRows(rows)
	}
}
