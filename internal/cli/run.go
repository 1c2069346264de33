package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/memorm/internal/plan"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	Fixtures string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run <plan.yaml>",
		Short: "Run a YAML query plan against fixtures",
		Long: `Load fixtures and resolve a query plan.

A plan names a collection, an ordered list of steps and an optional
aggregate:

  collection: users
  steps:
    - where: {age: {between: [18, 30]}}
    - or: {name: [alice, bob]}
    - order: name
    - limit: 10
  aggregate: {func: sum, column: age}

Steps run in the order written, so a plan can interleave where and or
calls in ways the query flags cannot.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(rootOpts, opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Fixtures, "fixtures", "", "fixture file (.yaml, .cue or .db)")

	return cmd
}

func runPlan(rootOpts *RootOptions, opts *RunOptions, planPath string, cmd *cobra.Command) error {
	p, err := plan.Load(planPath)
	if err != nil {
		return newFormatter(rootOpts, cmd).Fail(ExitCommandError, ErrCodePlan, err.Error(), nil)
	}

	s, err := openSession(rootOpts, cmd, opts.Fixtures)
	if err != nil {
		return err
	}
	s.logger.Debug("plan loaded", "path", planPath, "steps", len(p.Steps))
	return s.run(p)
}
