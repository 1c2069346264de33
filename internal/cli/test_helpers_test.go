package cli

import (
	"bytes"
	"testing"

	"github.com/roach88/memorm/internal/testutil"
)

const (
	usersFixture = "testdata/users.yaml"
	testTraceID  = "test-trace"
)

// executeCommand runs the root command with args and returns what it wrote
// to stdout and stderr.
func executeCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	opts := &RootOptions{TraceIDs: testutil.NewFixedTraceGenerator(testTraceID)}
	cmd := newRootCommand(opts)

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}
