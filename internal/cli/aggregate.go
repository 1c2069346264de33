package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/memorm/internal/plan"
)

// AggregateOptions holds flags for the aggregate command.
type AggregateOptions struct {
	Fixtures   string
	Collection string
	Flags      plan.Flags
	Func       string
	Column     string
}

// NewAggregateCommand creates the aggregate command.
func NewAggregateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AggregateOptions{Flags: plan.Flags{Limit: -1, Offset: -1}}

	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Aggregate a column over matching records",
		Long: `Load fixtures, filter one collection and reduce a column.

Functions: average (avg), count, exist, interval, max, min, range, sum.
count and exist take no column. Aggregating an empty result prints null.`,
		Example: `  memorm aggregate --fixtures users.yaml -c users --func sum --column age
  memorm aggregate --fixtures users.yaml -c users --where active=true --func count`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAggregate(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Fixtures, "fixtures", "", "fixture file (.yaml, .cue or .db)")
	cmd.Flags().StringVar(&opts.Func, "func", "", "aggregate function (required)")
	cmd.Flags().StringVar(&opts.Column, "column", "", "column to aggregate")
	addConditionFlags(cmd, &opts.Collection, &opts.Flags)

	return cmd
}

func runAggregate(rootOpts *RootOptions, opts *AggregateOptions, cmd *cobra.Command) error {
	agg := &plan.Aggregate{Func: opts.Func, Column: opts.Column}
	p, err := plan.FromFlags(opts.Collection, opts.Flags, agg)
	if err != nil {
		return newFormatter(rootOpts, cmd).Fail(ExitCommandError, ErrCodePlan, err.Error(), nil)
	}

	s, err := openSession(rootOpts, cmd, opts.Fixtures)
	if err != nil {
		return err
	}
	return s.run(p)
}
