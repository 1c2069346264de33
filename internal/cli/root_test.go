package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "memorm", cmd.Use)
	assert.Contains(t, cmd.Long, "fixture")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"query", "aggregate", "run", "validate", "export"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestQueryCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	queryCmd, _, err := cmd.Find([]string{"query"})
	require.NoError(t, err)

	collectionFlag := queryCmd.Flags().Lookup("collection")
	require.NotNil(t, collectionFlag)
	assert.Equal(t, "c", collectionFlag.Shorthand)

	for _, name := range []string{"limit", "offset"} {
		flag := queryCmd.Flags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Equal(t, "-1", flag.DefValue, "%s is unset by default", name)
	}

	for _, name := range []string{"fixtures", "where", "or", "exclude", "select", "order", "desc", "emit-plan"} {
		assert.NotNil(t, queryCmd.Flags().Lookup(name), name)
	}
}

func TestAggregateCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	aggCmd, _, err := cmd.Find([]string{"aggregate"})
	require.NoError(t, err)

	for _, name := range []string{"fixtures", "collection", "where", "or", "exclude", "func", "column"} {
		assert.NotNil(t, aggCmd.Flags().Lookup(name), name)
	}
	assert.Nil(t, aggCmd.Flags().Lookup("limit"))
}

func TestExportCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	exportCmd, _, err := cmd.Find([]string{"export"})
	require.NoError(t, err)

	outFlag := exportCmd.Flags().Lookup("out")
	require.NotNil(t, outFlag)
	assert.Equal(t, "o", outFlag.Shorthand)
	assert.Equal(t, "", outFlag.DefValue)
}

func TestRootCommand_InvalidFormat(t *testing.T) {
	_, _, err := executeCommand(t, "--format", "xml", "validate", "--fixtures", usersFixture)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "xml"`)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}
