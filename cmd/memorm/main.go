// Command memorm loads fixture collections into the in-memory adapter and
// queries them from the command line.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/memorm/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err == nil {
		return
	}

	// ExitErrors have already been reported by the command's formatter.
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		err = cli.WrapExitError(cli.ExitCommandError, "usage", err)
	}
	os.Exit(cli.GetExitCode(err))
}
