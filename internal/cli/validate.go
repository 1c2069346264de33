package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/memorm/internal/record"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var fixtures string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check that a fixture file loads",
		Long: `Load a fixture file into a fresh adapter and summarise its collections.

Reports the first malformed collection or record with its position when
the format provides one.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, fixtures, cmd)
		},
	}

	cmd.Flags().StringVar(&fixtures, "fixtures", "", "fixture file (.yaml, .cue or .db)")

	return cmd
}

func runValidate(rootOpts *RootOptions, fixtures string, cmd *cobra.Command) error {
	s, err := openSession(rootOpts, cmd, fixtures)
	if err != nil {
		return err
	}

	result := ValidateResult{
		Fixture:     s.set.Path,
		Valid:       true,
		Collections: make([]CollectionSummary, 0, len(s.set.Collections)),
	}
	for _, c := range s.set.Collections {
		n := s.adapter.Len(c.Name)
		identity := c.Identity
		if identity == "" {
			identity = record.DefaultIdentity
		}
		result.Collections = append(result.Collections, CollectionSummary{
			Name:     c.Name,
			Identity: identity,
			Records:  n,
		})
		result.Total += n
	}

	return s.formatter.Success(result)
}
