package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/memorm/internal/entity"
	"github.com/roach88/memorm/internal/memory"
	"github.com/roach88/memorm/internal/store"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	Fixtures string
	Out      string
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write loaded fixtures to a SQLite database",
		Long: `Load fixtures into the adapter and write every collection to a SQLite
table of the same name, with the identities the adapter assigned.

Existing tables of the same name are replaced. The database can be used
as a fixture file itself.`,
		Example:       `  memorm export --fixtures users.yaml --out users.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Fixtures, "fixtures", "", "fixture file (.yaml, .cue or .db)")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "SQLite database to write (required)")

	return cmd
}

func runExport(rootOpts *RootOptions, opts *ExportOptions, cmd *cobra.Command) error {
	if opts.Out == "" {
		return newFormatter(rootOpts, cmd).Fail(ExitCommandError, ErrCodeWriteFailed, "--out is required", nil)
	}

	s, err := openSession(rootOpts, cmd, opts.Fixtures)
	if err != nil {
		return err
	}

	st, err := store.Open(opts.Out)
	if err != nil {
		return s.formatter.Fail(ExitFailure, ErrCodeWriteFailed, err.Error(), nil)
	}
	defer st.Close()

	result := ExportResult{Out: opts.Out}
	for i, c := range s.set.Collections {
		recs, err := memory.All(s.adapter, c.Name, entity.RecordMapper{})
		if err != nil {
			return s.formatter.Fail(ExitFailure, ErrCodeGeneric, err.Error(), nil)
		}
		table := store.Table{Name: c.Name, Identity: s.adapter.Identity(c.Name)}
		if err := st.WriteTable(cmd.Context(), table, i, recs); err != nil {
			return s.formatter.Fail(ExitFailure, ErrCodeWriteFailed, err.Error(),
				map[string]string{"collection": c.Name})
		}
		s.logger.Debug("collection exported", "collection", c.Name, "records", len(recs))
		result.Collections++
		result.Records += len(recs)
	}

	return s.formatter.Success(result)
}
