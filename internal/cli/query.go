package cli

import (
	"errors"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/memorm/internal/plan"
	"github.com/roach88/memorm/internal/query"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	Fixtures   string
	Collection string
	Flags      plan.Flags
	EmitPlan   bool
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query a collection loaded from fixtures",
		Long: `Load fixtures and print the records of one collection that match the
given conditions.

Conditions are column=value expressions:
  age=30            equality
  name=[alice,bob]  membership
  age=18..30        inclusive range (either bound may be omitted)
  age=18...30       range excluding the upper bound
  name='a'..'m'     string bounds are quoted
  host="a..b"       quoted values always match for equality

Steps are applied in a fixed order: every --where, every --or, every
--exclude, then --select, --order, --desc, --offset and --limit.`,
		Example: `  memorm query --fixtures users.yaml -c users --where age=18..30 --order name
  memorm query --fixtures users.yaml -c users --where name=alice --or name=bob --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Fixtures, "fixtures", "", "fixture file (.yaml, .cue or .db)")
	cmd.Flags().BoolVar(&opts.EmitPlan, "emit-plan", false, "print the query as a YAML plan instead of running it")
	addConditionFlags(cmd, &opts.Collection, &opts.Flags)
	cmd.Flags().StringSliceVar(&opts.Flags.Select, "select", nil, "columns to keep")
	cmd.Flags().StringSliceVar(&opts.Flags.Order, "order", nil, "columns to sort ascending")
	cmd.Flags().StringSliceVar(&opts.Flags.Desc, "desc", nil, "columns to sort with reverse_order")
	cmd.Flags().IntVar(&opts.Flags.Limit, "limit", -1, "maximum number of records")
	cmd.Flags().IntVar(&opts.Flags.Offset, "offset", -1, "number of records to skip")

	return cmd
}

// addConditionFlags registers the flags shared by query and aggregate.
func addConditionFlags(cmd *cobra.Command, collection *string, f *plan.Flags) {
	cmd.Flags().StringVarP(collection, "collection", "c", "", "collection to query (required)")
	cmd.Flags().StringArrayVar(&f.Where, "where", nil, "where condition column=value (repeatable)")
	cmd.Flags().StringArrayVar(&f.Or, "or", nil, "or condition column=value (repeatable)")
	cmd.Flags().StringArrayVar(&f.Exclude, "exclude", nil, "exclude condition column=value (repeatable)")
}

func runQuery(rootOpts *RootOptions, opts *QueryOptions, cmd *cobra.Command) error {
	p, err := plan.FromFlags(opts.Collection, opts.Flags, nil)
	if err != nil {
		formatter := newFormatter(rootOpts, cmd)
		return formatter.Fail(ExitCommandError, ErrCodePlan, err.Error(), nil)
	}

	if opts.EmitPlan {
		return emitPlan(newFormatter(rootOpts, cmd), p)
	}

	s, err := openSession(rootOpts, cmd, opts.Fixtures)
	if err != nil {
		return err
	}
	return s.run(p)
}

// emitPlan prints p as YAML, or as the plan's JSON response data.
func emitPlan(formatter *OutputFormatter, p *plan.Plan) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeGeneric, err.Error(), nil)
	}
	if formatter.Format == "json" {
		return formatter.Success(map[string]string{"plan": string(data)})
	}
	_, err = formatter.Writer.Write(data)
	return err
}

// run resolves p against the session's adapter and reports the result.
func (s *session) run(p *plan.Plan) error {
	if err := s.requireCollection(p.Collection); err != nil {
		return err
	}

	res, err := p.Run(s.adapter)
	if err != nil {
		return s.queryFailed(err)
	}
	s.logger.Debug("query resolved", "collection", p.Collection, "query", res.Query)

	if res.Aggregate != nil {
		out, err := newAggregateResult(p.Collection, res)
		if err != nil {
			return s.formatter.Fail(ExitFailure, ErrCodeGeneric, err.Error(), nil)
		}
		return s.formatter.Success(out)
	}

	return s.formatter.Success(QueryResult{
		Collection: p.Collection,
		Query:      res.Query,
		Count:      len(res.Records),
		Records:    res.Records,
	})
}

func (s *session) queryFailed(err error) error {
	var qe *query.QueryError
	if errors.As(err, &qe) {
		details := map[string]string{"code": string(qe.Code)}
		if qe.Column != "" {
			details["column"] = qe.Column
		}
		return s.formatter.Fail(ExitFailure, ErrCodeQuery, err.Error(), details)
	}
	return s.formatter.Fail(ExitFailure, ErrCodeGeneric, err.Error(), nil)
}
