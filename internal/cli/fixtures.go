package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/memorm/internal/fixture"
	"github.com/roach88/memorm/internal/memory"
)

// session is the state shared by commands that work on loaded fixtures.
type session struct {
	formatter *OutputFormatter
	logger    *slog.Logger
	set       *fixture.Set
	adapter   *memory.Adapter
}

// newLogger builds the command logger: text on stderr at Warn, or Debug when
// verbose. Every line carries the invocation's trace id.
func newLogger(opts *RootOptions, cmd *cobra.Command, traceID string) *slog.Logger {
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	return slog.New(handler).With("trace_id", traceID)
}

// openSession loads the fixture file into a fresh adapter. On failure it
// has already reported the error through the formatter.
func openSession(opts *RootOptions, cmd *cobra.Command, fixturesPath string) (*session, error) {
	formatter := newFormatter(opts, cmd)
	logger := newLogger(opts, cmd, formatter.TraceID)

	if fixturesPath == "" {
		return nil, formatter.Fail(ExitCommandError, ErrCodeFixture, "--fixtures is required", nil)
	}

	logger.Debug("loading fixtures", "path", fixturesPath)
	set, err := fixture.Load(fixturesPath)
	if err != nil {
		return nil, formatter.Fail(ExitCommandError, ErrCodeFixture, err.Error(), nil)
	}

	adapter, err := set.NewAdapter(memory.WithLogger(logger))
	if err != nil {
		return nil, formatter.Fail(ExitCommandError, ErrCodeFixture, err.Error(), nil)
	}
	logger.Debug("fixtures loaded", "collections", len(set.Collections), "records", set.Len())

	return &session{
		formatter: formatter,
		logger:    logger,
		set:       set,
		adapter:   adapter,
	}, nil
}

// requireCollection reports an error if the fixtures do not define name.
func (s *session) requireCollection(name string) error {
	if _, ok := s.set.Collection(name); ok {
		return nil
	}
	names := make([]string, 0, len(s.set.Collections))
	for _, c := range s.set.Collections {
		names = append(names, c.Name)
	}
	return s.formatter.Fail(ExitCommandError, ErrCodeUnknownTable,
		fmt.Sprintf("collection %q not found in %s", name, s.set.Path),
		map[string]any{"collections": names})
}
