package commands

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/litemodel/cli/internal/config"
	"github.com/satishbabariya/litemodel/query"
	"github.com/satishbabariya/litemodel/query/filter"
	"github.com/satishbabariya/litemodel/runtime/client"
)

// load reads the config file and applies flag overrides.
func (o *globalOptions) load() (*config.Config, error) {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.provider != "" {
		cfg.Provider = o.provider
	}
	if o.url != "" {
		cfg.DatabaseURL = o.url
	}
	return cfg, nil
}

// open connects to the configured database.
func (o *globalOptions) open(ctx context.Context) (*client.Client, error) {
	cfg, err := o.load()
	if err != nil {
		return nil, err
	}
	return client.Open(ctx, cfg.ClientConfig())
}

// queryOptions are the flags that shape a SELECT.
type queryOptions struct {
	where string
	order []string
	desc  bool
	limit int
}

func (q *queryOptions) bind(cmd *cobra.Command, withWhere bool) {
	f := cmd.Flags()
	if withWhere {
		f.StringVarP(&q.where, "where", "w", "", `filter expression, e.g. 'age >= 18 and name contains "an"'`)
	}
	f.StringSliceVarP(&q.order, "order", "o", nil, "columns to sort by")
	f.BoolVar(&q.desc, "desc", false, "sort descending")
	f.IntVarP(&q.limit, "limit", "n", 100, "maximum rows (0 for no limit)")
}

// apply parses the filter and configures base.
func (q *queryOptions) apply(base *query.Query, where string) (*query.Query, error) {
	out := base.OrderBy(q.order, !q.desc).Limit(q.limit)
	if strings.TrimSpace(where) == "" {
		return out, nil
	}
	cond, err := filter.Parse(where)
	if err != nil {
		return nil, err
	}
	return out.Where(cond), nil
}

// fetch runs q, treating a single-row miss as an empty result.
func fetch(ctx context.Context, q *query.Query) ([]query.Row, error) {
	rows, err := q.Find(ctx)
	if query.IsNotFound(err) {
		return nil, nil
	}
	return rows, err
}
